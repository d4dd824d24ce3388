package search

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is the searchable projection of a job.
type Document struct {
	ID          uuid.UUID
	Title       string
	Description string
	CompanyName string
	Skills      []string
	CreatedAt   time.Time
}

// Relevance scores keyword hits: title 3, skill 2, description 1, company 1.
// Capped at 10.
func Relevance(doc Document, variants []string) float64 {
	if len(variants) == 0 {
		return 0
	}
	title := strings.ToLower(doc.Title)
	desc := strings.ToLower(doc.Description)
	company := strings.ToLower(doc.CompanyName)
	skills := make([]string, len(doc.Skills))
	for i, s := range doc.Skills {
		skills[i] = strings.ToLower(s)
	}

	score := 0.0
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.Contains(title, v) {
			score += 3
		}
		for _, s := range skills {
			if s == v {
				score += 2
				break
			}
		}
		if strings.Contains(desc, v) {
			score++
		}
		if strings.Contains(company, v) {
			score++
		}
		if score >= 10 {
			return 10
		}
	}
	return score
}

// Freshness buckets age into 5 (a day) down to 0 (over a month).
func Freshness(created, now time.Time) float64 {
	if created.IsZero() {
		return 0
	}
	age := now.Sub(created)
	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 3*24*time.Hour:
		return 4
	case age <= 7*24*time.Hour:
		return 3
	case age <= 14*24*time.Hour:
		return 2
	case age <= 30*24*time.Hour:
		return 1
	}
	return 0
}

func Score(doc Document, variants []string, now time.Time) float64 {
	return Relevance(doc, variants)*2 + Freshness(doc.CreatedAt, now)*1.5
}

// Rank returns the documents' indexes ordered by descending score. Ties keep
// their input order.
func Rank(docs []Document, variants []string, now time.Time) []int {
	idx := make([]int, len(docs))
	scores := make([]float64, len(docs))
	for i := range docs {
		idx[i] = i
		scores[i] = Score(docs[i], variants, now)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	return idx
}
