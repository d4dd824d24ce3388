package matching

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/user"
)

const ReportVersion = "4.0"

// Assessment is the model's judgement of one resume against one job. The
// skills dimension always comes from Calculate.
type Assessment struct {
	ExperienceScore      float64  `json:"experience_score"`
	CultureFitScore      float64  `json:"culture_fit_score"`
	GrowthPotentialScore float64  `json:"growth_potential_score"`
	Bonus                *float64 `json:"bonus,omitempty"`
	Summary              string   `json:"summary"`
	Strengths            []string `json:"strengths"`
	Gaps                 []string `json:"gaps"`
	Recommendations      []string `json:"recommendations"`
	EmployerSummary      string   `json:"employer_summary"`
	InterviewFocus       []string `json:"interview_focus"`
}

type Shared struct {
	Scores           Scores         `json:"scores"`
	Weights          Weights        `json:"weights"`
	PreferencesBonus float64        `json:"preferences_bonus"`
	MatchedSkills    []MatchedSkill `json:"matched_skills"`
	MissingSkills    []MissingSkill `json:"missing_skills"`
	MandatoryMissing bool           `json:"mandatory_missing"`
	Summary          string         `json:"summary"`
}

type StudentView struct {
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

type EmployerView struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
	InterviewFocus []string `json:"interview_focus"`
}

// Report is the stored (resume, job) analysis.
type Report struct {
	ResumeID     uuid.UUID    `json:"resume_id"`
	JobID        uuid.UUID    `json:"job_id"`
	OverallScore int          `json:"overall_score"`
	Shared       Shared       `json:"shared"`
	StudentView  StudentView  `json:"student_view"`
	EmployerView EmployerView `json:"employer_view"`
	Version      string       `json:"version"`
	ModelName    string       `json:"model_name"`
	IsStale      bool         `json:"is_stale"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// BuildReport combines the skill engine result with a model assessment.
func BuildReport(skills Result, a Assessment, w Weights, prefBonus float64, model string) Report {
	bonus := prefBonus
	if a.Bonus != nil {
		bonus = *a.Bonus
	}
	scores := Scores{
		Skills:          float64(skills.MatchScore),
		Experience:      a.ExperienceScore,
		CultureFit:      a.CultureFitScore,
		GrowthPotential: a.GrowthPotentialScore,
	}
	return Report{
		OverallScore: Overall(scores, w, bonus),
		Shared: Shared{
			Scores:           scores,
			Weights:          w,
			PreferencesBonus: bonus,
			MatchedSkills:    skills.MatchedSkills,
			MissingSkills:    skills.MissingSkills,
			MandatoryMissing: skills.MandatoryMissing,
			Summary:          a.Summary,
		},
		StudentView: StudentView{
			Strengths:       orEmpty(a.Strengths),
			Gaps:            orEmpty(a.Gaps),
			Recommendations: orEmpty(a.Recommendations),
		},
		EmployerView: EmployerView{
			Summary:        a.EmployerSummary,
			Strengths:      orEmpty(a.Strengths),
			Concerns:       orEmpty(a.Gaps),
			InterviewFocus: orEmpty(a.InterviewFocus),
		},
		Version:   ReportVersion,
		ModelName: model,
	}
}

// EmployerOnly strips the student-facing section.
func (r Report) EmployerOnly() Report {
	r.StudentView = StudentView{}
	return r
}

// PreferenceBonus awards up to 5 points for a job that fits the student's
// stated preferences: 1.25 per matching industry, location, work type and role.
func PreferenceBonus(p user.CareerPreferences, j job.Job) float64 {
	bonus := 0.0
	if anyContains(p.Industries, j.CompanyIndustry) {
		bonus += 1.25
	}
	if anyContains(p.Locations, j.Location) {
		bonus += 1.25
	}
	for _, wt := range p.WorkTypes {
		if t, ok := job.ParseType(wt); ok && t == j.Type {
			bonus += 1.25
			break
		}
		if r, ok := job.ParseRemoteOption(wt); ok && r == j.RemoteOption {
			bonus += 1.25
			break
		}
	}
	if anyContains(p.PreferredRoles, j.Title) {
		bonus += 1.25
	}
	return bonus
}

// anyContains reports whether haystack contains any needle, ignoring case.
func anyContains(needles []string, haystack string) bool {
	h := strings.ToLower(strings.TrimSpace(haystack))
	if h == "" {
		return false
	}
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(h, n) {
			return true
		}
	}
	return false
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
