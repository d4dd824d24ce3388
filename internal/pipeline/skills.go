package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"careerhub/internal/repository"
)

// ExtractedSkill is a dictionary skill found in free text.
type ExtractedSkill struct {
	Skill       repository.SkillRef
	Count       int
	Importance  int
	IsMandatory bool
}

var mandatoryMarkers = []string{"must", "required", "require", "mandatory", "need to", "needs", "minimum", "min."}

// ExtractSkills finds dictionary skills mentioned in text, most frequent first.
func ExtractSkills(text string, dict []repository.SkillRef) []ExtractedSkill {
	text = strings.TrimSpace(text)
	if text == "" || len(dict) == 0 {
		return nil
	}
	lower := strings.ToLower(text)

	hits := make([]ExtractedSkill, 0)
	seen := map[uuid.UUID]struct{}{}
	for _, s := range dict {
		name := strings.TrimSpace(s.Name)
		if name == "" || s.ID == uuid.Nil {
			continue
		}
		if _, ok := seen[s.ID]; ok {
			continue
		}
		c := countSkillMention(lower, name)
		if c <= 0 {
			continue
		}
		seen[s.ID] = struct{}{}
		lvl := importanceFromCount(c)
		hits = append(hits, ExtractedSkill{
			Skill:       s,
			Count:       c,
			Importance:  lvl,
			IsMandatory: isMandatoryByContext(lower, name, lvl),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Count == hits[j].Count {
			return hits[i].Skill.Name < hits[j].Skill.Name
		}
		return hits[i].Count > hits[j].Count
	})
	return hits
}

func Links(skills []ExtractedSkill) []repository.SkillLink {
	out := make([]repository.SkillLink, 0, len(skills))
	for _, s := range skills {
		out = append(out, repository.SkillLink{SkillID: s.Skill.ID, IsMandatory: s.IsMandatory})
	}
	return out
}

func Names(skills []ExtractedSkill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Skill.Name)
	}
	return out
}

func countSkillMention(textLower, skillName string) int {
	skillLower := strings.ToLower(strings.TrimSpace(skillName))
	if skillLower == "" {
		return 0
	}
	re := regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(skillLower) + `([^a-z0-9]|$)`)
	return len(re.FindAllStringIndex(textLower, -1))
}

func importanceFromCount(count int) int {
	switch {
	case count >= 4:
		return 5
	case count == 3:
		return 4
	case count == 2:
		return 3
	default:
		return 2
	}
}

// isMandatoryByContext treats frequently mentioned skills, or skills with a
// requirement marker within 80 characters, as mandatory.
func isMandatoryByContext(textLower, skillName string, level int) bool {
	if level >= 4 {
		return true
	}
	skillLower := strings.ToLower(strings.TrimSpace(skillName))
	idx := strings.Index(textLower, skillLower)
	if skillLower == "" || idx < 0 {
		return false
	}

	start := idx - 80
	if start < 0 {
		start = 0
	}
	end := idx + len(skillLower) + 80
	if end > len(textLower) {
		end = len(textLower)
	}
	window := textLower[start:end]
	for _, m := range mandatoryMarkers {
		if strings.Contains(window, m) {
			return true
		}
	}
	return false
}
