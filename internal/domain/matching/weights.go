package matching

import (
	"errors"
	"math"
)

var ErrInvalidWeights = errors.New("weights must be non-negative with a positive sum")

// Weights are the per-dimension multipliers of an analysis report.
type Weights struct {
	Skills          float64 `json:"skills"`
	Experience      float64 `json:"experience"`
	CultureFit      float64 `json:"culture_fit"`
	GrowthPotential float64 `json:"growth_potential"`
}

// DefaultWeights apply when a job has no employer weights.
var DefaultWeights = Weights{Skills: 0.45, Experience: 0.25, CultureFit: 0.15, GrowthPotential: 0.10}

// employerFallback fills keys an employer left out.
var employerFallback = Weights{Skills: 0.4, Experience: 0.3, CultureFit: 0.15, GrowthPotential: 0.1}

// PartialWeights is what an employer submits; nil means "not provided".
type PartialWeights struct {
	Skills          *float64 `json:"skills"`
	Experience      *float64 `json:"experience"`
	CultureFit      *float64 `json:"culture_fit"`
	GrowthPotential *float64 `json:"growth_potential"`
}

// Resolve fills missing keys from the employer fallback and normalises.
func (p PartialWeights) Resolve() (Weights, error) {
	pick := func(v *float64, def float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}
	w := Weights{
		Skills:          pick(p.Skills, employerFallback.Skills),
		Experience:      pick(p.Experience, employerFallback.Experience),
		CultureFit:      pick(p.CultureFit, employerFallback.CultureFit),
		GrowthPotential: pick(p.GrowthPotential, employerFallback.GrowthPotential),
	}
	return w.Normalize()
}

// Normalize scales weights so they sum to 1.
func (w Weights) Normalize() (Weights, error) {
	vals := []float64{w.Skills, w.Experience, w.CultureFit, w.GrowthPotential}
	sum := 0.0
	for _, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Weights{}, ErrInvalidWeights
		}
		sum += v
	}
	if sum <= 0 {
		return Weights{}, ErrInvalidWeights
	}
	return Weights{
		Skills:          w.Skills / sum,
		Experience:      w.Experience / sum,
		CultureFit:      w.CultureFit / sum,
		GrowthPotential: w.GrowthPotential / sum,
	}, nil
}

// Scores are 0..100 per dimension as produced by the analysis model.
type Scores struct {
	Skills          float64 `json:"skills"`
	Experience      float64 `json:"experience"`
	CultureFit      float64 `json:"culture_fit"`
	GrowthPotential float64 `json:"growth_potential"`
}

// Overall combines dimension scores with weights plus a 0..5 preferences
// bonus, clamped to 0..100.
func Overall(s Scores, w Weights, preferencesBonus float64) int {
	if preferencesBonus < 0 {
		preferencesBonus = 0
	}
	if preferencesBonus > 5 {
		preferencesBonus = 5
	}
	total := s.Skills*w.Skills + s.Experience*w.Experience + s.CultureFit*w.CultureFit + s.GrowthPotential*w.GrowthPotential + preferencesBonus
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return int(math.Round(total))
}

// VectorScore turns cosine similarity into a 0..100 score with one decimal.
func VectorScore(similarity float64) float64 {
	if similarity < 0 || math.IsNaN(similarity) {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return math.Round(similarity*1000) / 10
}
