package resume

import (
	"regexp"
	"sort"
	"strings"
)

// Analysis is the general (job independent) CV review.
type Analysis struct {
	OverallScore     int                      `json:"overall_score"`
	Strengths        []string                 `json:"strengths"`
	Improvements     []string                 `json:"improvements"`
	KeywordsFound    []string                 `json:"keywords_found"`
	KeywordsMissing  []string                 `json:"keywords_missing"`
	SectionsAnalysis map[string]SectionReview `json:"sections_analysis"`
	ModelName        string                   `json:"model_name,omitempty"`
}

type SectionReview struct {
	Present bool   `json:"present"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Placeholder is served when no analysis exists yet.
func Placeholder() Analysis {
	return Analysis{
		Strengths:        []string{},
		Improvements:     []string{},
		KeywordsFound:    []string{},
		KeywordsMissing:  []string{},
		SectionsAnalysis: map[string]SectionReview{},
	}
}

var sectionPatterns = map[string]*regexp.Regexp{
	"contact":    regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`),
	"education":  regexp.MustCompile(`(?im)^\s*(education|academic|qualifications)\b`),
	"experience": regexp.MustCompile(`(?im)^\s*(experience|work experience|employment|internships?)\b`),
	"skills":     regexp.MustCompile(`(?im)^\s*(skills|technical skills|competencies)\b`),
	"projects":   regexp.MustCompile(`(?im)^\s*(projects|portfolio)\b`),
}

var sectionWeights = map[string]int{
	"contact":    10,
	"education":  20,
	"experience": 25,
	"skills":     20,
	"projects":   10,
}

var sectionAdvice = map[string]string{
	"contact":    "Add an email address so recruiters can reach you.",
	"education":  "Add an Education section with institution, programme and graduation year.",
	"experience": "Add internships, part-time work or volunteering under an Experience heading.",
	"skills":     "List your tools and languages under a Skills heading.",
	"projects":   "Describe two or three projects with your role and outcome.",
}

// Heuristic reviews a CV without a language model. found are dictionary
// skills detected in the text; wanted are skills the student claims on
// their profile that the CV does not mention.
func Heuristic(text string, found, wanted []string) Analysis {
	a := Placeholder()
	a.ModelName = "heuristic"

	score := 0
	names := make([]string, 0, len(sectionPatterns))
	for n := range sectionPatterns {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		present := sectionPatterns[name].MatchString(text)
		rev := SectionReview{Present: present}
		if present {
			rev.Score = 100
			rev.Comment = "Section found."
			score += sectionWeights[name]
			a.Strengths = append(a.Strengths, "Includes a "+name+" section")
		} else {
			rev.Comment = sectionAdvice[name]
			a.Improvements = append(a.Improvements, sectionAdvice[name])
		}
		a.SectionsAnalysis[name] = rev
	}

	words := len(strings.Fields(text))
	switch {
	case words >= 250 && words <= 900:
		score += 5
	case words < 150:
		a.Improvements = append(a.Improvements, "The CV is very short; expand on responsibilities and results.")
	case words > 1200:
		a.Improvements = append(a.Improvements, "The CV is long; aim for one or two pages.")
	}

	switch {
	case len(found) >= 8:
		score += 10
		a.Strengths = append(a.Strengths, "Broad set of relevant skills")
	case len(found) >= 4:
		score += 6
	case len(found) > 0:
		score += 3
	}

	a.KeywordsFound = append(a.KeywordsFound, found...)
	a.KeywordsMissing = append(a.KeywordsMissing, wanted...)
	if score > 100 {
		score = 100
	}
	a.OverallScore = score
	return a
}
