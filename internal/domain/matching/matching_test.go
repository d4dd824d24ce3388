package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/domain/job"
	"careerhub/internal/domain/user"
)

func TestCalculate_AllMatched(t *testing.T) {
	goID, sqlID := uuid.New(), uuid.New()
	res := Calculate(
		[]StudentSkill{{SkillID: goID, SkillName: "Go"}, {SkillID: sqlID, SkillName: "SQL"}},
		[]JobSkill{{SkillID: goID, SkillName: "Go", IsMandatory: true}, {SkillID: sqlID, SkillName: "SQL"}},
		1,
	)

	assert.Equal(t, 100, res.MatchScore)
	assert.False(t, res.MandatoryMissing)
	assert.Len(t, res.MatchedSkills, 2)
	assert.Empty(t, res.MissingSkills)
}

func TestCalculate_MissingMandatory(t *testing.T) {
	res := Calculate(
		[]StudentSkill{{SkillName: "python"}},
		[]JobSkill{
			{SkillID: uuid.New(), SkillName: "Go", IsMandatory: true},
			{SkillID: uuid.New(), SkillName: "Python", IsMandatory: true},
			{SkillID: uuid.New(), SkillName: "Docker"},
		},
		0.5,
	)

	// 30 for half the mandatory share, 0 optional, 5 readiness
	assert.Equal(t, 35, res.MatchScore)
	assert.True(t, res.MandatoryMissing)
	require.Len(t, res.MissingSkills, 2)
	assert.Equal(t, "Go", res.MissingSkills[0].SkillName)
}

func TestCalculate_OnlyOptionalListed(t *testing.T) {
	id := uuid.New()
	res := Calculate(
		[]StudentSkill{{SkillID: id}},
		[]JobSkill{{SkillID: id, SkillName: "Figma"}, {SkillID: uuid.New(), SkillName: "Sketch"}},
		0,
	)

	// optional skills carry the whole 90 when nothing is mandatory
	assert.Equal(t, 45, res.MatchScore)
	assert.False(t, res.MandatoryMissing)
}

func TestCalculate_SingleBucketWithoutSkills(t *testing.T) {
	tests := []struct {
		name string
		reqs []JobSkill
	}{
		{"optional only", []JobSkill{{SkillID: uuid.New(), SkillName: "Figma"}}},
		{"mandatory only", []JobSkill{{SkillID: uuid.New(), SkillName: "Go", IsMandatory: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Calculate(nil, tt.reqs, 0.5)
			assert.Equal(t, 5, res.MatchScore)
			assert.Empty(t, res.MatchedSkills)
		})
	}

	full := Calculate([]StudentSkill{{SkillName: "go"}}, []JobSkill{{SkillName: "Go", IsMandatory: true}}, 1)
	assert.Equal(t, 100, full.MatchScore)
}

func TestCalculate_NoRequirements(t *testing.T) {
	res := Calculate([]StudentSkill{{SkillName: "Go"}}, nil, 1)
	assert.Equal(t, 0, res.MatchScore)
}

func TestReadinessFromGraduation(t *testing.T) {
	y := func(v int) *int { return &v }
	assert.Equal(t, Readiness(1), ReadinessFromGraduation(y(2025), 2026))
	assert.Equal(t, Readiness(0.75), ReadinessFromGraduation(y(2027), 2026))
	assert.Equal(t, Readiness(0), ReadinessFromGraduation(y(2031), 2026))
	assert.Equal(t, Readiness(0.5), ReadinessFromGraduation(nil, 2026))
}

func TestPartialWeights_Resolve(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	w, err := PartialWeights{Skills: f(2), Experience: f(1), CultureFit: f(1), GrowthPotential: f(0)}.Resolve()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w.Skills, 1e-9)
	assert.InDelta(t, 0.25, w.Experience, 1e-9)
	assert.InDelta(t, 0, w.GrowthPotential, 1e-9)

	w, err = PartialWeights{}.Resolve()
	require.NoError(t, err)
	assert.InDelta(t, 0.4/0.95, w.Skills, 1e-9)

	_, err = PartialWeights{Skills: f(-1)}.Resolve()
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = PartialWeights{Skills: f(0), Experience: f(0), CultureFit: f(0), GrowthPotential: f(0)}.Resolve()
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestOverall(t *testing.T) {
	s := Scores{Skills: 80, Experience: 60, CultureFit: 70, GrowthPotential: 90}
	// 36 + 15 + 10.5 + 9 = 70.5, plus a 3.2 bonus
	assert.Equal(t, 74, Overall(s, DefaultWeights, 3.2))
	assert.Equal(t, 100, Overall(Scores{Skills: 100, Experience: 100, CultureFit: 100, GrowthPotential: 100}, DefaultWeights, 5))
	assert.Equal(t, 0, Overall(Scores{}, DefaultWeights, -4))
}

func TestVectorScore(t *testing.T) {
	assert.Equal(t, 83.5, VectorScore(0.83456))
	assert.Equal(t, 0.0, VectorScore(-0.2))
	assert.Equal(t, 100.0, VectorScore(1.3))
}

func TestBuildReport(t *testing.T) {
	skills := Result{MatchScore: 80, MatchedSkills: []MatchedSkill{{SkillName: "Go"}}}
	a := Assessment{ExperienceScore: 60, CultureFitScore: 60, GrowthPotentialScore: 90, Summary: "solid"}

	r := BuildReport(skills, a, DefaultWeights, 2, "heuristic")

	// 80*.45 + 60*.25 + 60*.15 + 90*.10 + 2 = 71
	assert.Equal(t, 71, r.OverallScore)
	assert.Equal(t, ReportVersion, r.Version)
	assert.Equal(t, "solid", r.Shared.Summary)
	assert.Empty(t, r.StudentView.Gaps)
	assert.NotNil(t, r.StudentView.Gaps)

	bonus := 0.0
	a.Bonus = &bonus
	assert.Equal(t, 69, BuildReport(skills, a, DefaultWeights, 2, "m").OverallScore)
}

func TestPreferenceBonus(t *testing.T) {
	prefs := user.CareerPreferences{
		Industries:     []string{"fintech"},
		Locations:      []string{"kuala lumpur"},
		WorkTypes:      []string{"remote"},
		PreferredRoles: []string{"backend"},
	}
	j := job.Job{Title: "Backend Engineer", CompanyIndustry: "Fintech", Location: "Kuala Lumpur", Type: job.TypeFullTime, RemoteOption: job.Remote}

	assert.InDelta(t, 5.0, PreferenceBonus(prefs, j), 0.0001)
	assert.Zero(t, PreferenceBonus(user.CareerPreferences{}, j))
}
