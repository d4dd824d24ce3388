package matching

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// StudentSkill is a skill the student declared or that was detected on
// their resume.
type StudentSkill struct {
	SkillID   uuid.UUID
	SkillName string
}

type JobSkill struct {
	SkillID     uuid.UUID
	SkillName   string
	IsMandatory bool
}

type MatchedSkill struct {
	SkillID           uuid.UUID `json:"skill_id"`
	SkillName         string    `json:"skill_name"`
	ScoreContribution int       `json:"score_contribution"`
}

type MissingSkill struct {
	SkillID     uuid.UUID `json:"skill_id"`
	SkillName   string    `json:"skill_name"`
	IsMandatory bool      `json:"is_mandatory"`
}

type Result struct {
	MatchScore       int            `json:"match_score"`
	MandatoryMissing bool           `json:"mandatory_missing"`
	MatchedSkills    []MatchedSkill `json:"matched_skills"`
	MissingSkills    []MissingSkill `json:"missing_skills"`
}

// Readiness describes how close the student is to the job's experience
// expectation, in [0,1]. Internships and recent graduates score high.
type Readiness float64

// Calculate scores skill overlap: mandatory skills share 60 points, optional
// 30 and readiness 10. When a job lists only one kind of skill, that kind
// carries the full 90. Skills match by id, falling back to case-insensitive
// name so free-text profile skills still count.
func Calculate(student []StudentSkill, reqs []JobSkill, readiness Readiness) Result {
	byID := make(map[uuid.UUID]struct{}, len(student))
	byName := make(map[string]struct{}, len(student))
	for _, s := range student {
		if s.SkillID != uuid.Nil {
			byID[s.SkillID] = struct{}{}
		}
		if n := normName(s.SkillName); n != "" {
			byName[n] = struct{}{}
		}
	}
	has := func(r JobSkill) bool {
		if _, ok := byID[r.SkillID]; ok && r.SkillID != uuid.Nil {
			return true
		}
		_, ok := byName[normName(r.SkillName)]
		return ok
	}

	mandatory := make([]JobSkill, 0)
	optional := make([]JobSkill, 0)
	for _, r := range reqs {
		if r.SkillID == uuid.Nil && normName(r.SkillName) == "" {
			continue
		}
		if r.IsMandatory {
			mandatory = append(mandatory, r)
		} else {
			optional = append(optional, r)
		}
	}

	matched := make([]MatchedSkill, 0, len(reqs))
	missing := make([]MissingSkill, 0)
	mandatoryMissing := false

	score := func(list []JobSkill, share float64) float64 {
		if len(list) == 0 {
			return 0
		}
		per := share / float64(len(list))
		total := 0.0
		for _, r := range list {
			if !has(r) {
				if r.IsMandatory {
					mandatoryMissing = true
				}
				missing = append(missing, MissingSkill{SkillID: r.SkillID, SkillName: r.SkillName, IsMandatory: r.IsMandatory})
				continue
			}
			total += per
			matched = append(matched, MatchedSkill{SkillID: r.SkillID, SkillName: r.SkillName, ScoreContribution: int(math.Round(per))})
		}
		return total
	}

	total := 0.0
	if len(mandatory) == 0 && len(optional) == 0 {
		total = 0
	} else {
		mShare, oShare := 60.0, 30.0
		switch {
		case len(mandatory) == 0:
			mShare, oShare = 0, 90
		case len(optional) == 0:
			mShare, oShare = 90, 0
		}
		total += score(mandatory, mShare)
		total += score(optional, oShare)
		total += 10 * clamp01(float64(readiness))
	}

	s := int(math.Round(total))
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}

	return Result{
		MatchScore:       s,
		MandatoryMissing: mandatoryMissing,
		MatchedSkills:    matched,
		MissingSkills:    missing,
	}
}

// ReadinessFromGraduation maps graduation year distance to readiness:
// already graduated or graduating this year is 1, each further year
// removes a quarter.
func ReadinessFromGraduation(gradYear *int, currentYear int) Readiness {
	if gradYear == nil || *gradYear <= 0 {
		return 0.5
	}
	diff := *gradYear - currentYear
	if diff <= 0 {
		return 1
	}
	return Readiness(clamp01(1 - 0.25*float64(diff)))
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
