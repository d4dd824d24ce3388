package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "c++ developer", NormalizeQuery("  C++   Developer!! "))
	assert.Equal(t, "node.js backend", NormalizeQuery("Node.js / Backend."))
	assert.Equal(t, "full stack", NormalizeQuery("full-stack"))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestExpandQuery(t *testing.T) {
	got := ExpandQuery("frontend developer")
	assert.Equal(t, "frontend developer", got[0])
	assert.Contains(t, got, "front end developer")
	assert.Contains(t, got, "react developer")

	got = ExpandQuery("golang")
	assert.Equal(t, []string{"golang", "go"}, got)

	assert.Empty(t, ExpandQuery(""))
	assert.LessOrEqual(t, len(ExpandQuery("software engineer intern")), maxVariants)
}

func TestProcessQuery(t *testing.T) {
	qc := ProcessQuery("K8S")
	assert.Equal(t, "k8s", qc.Normalized)
	assert.Equal(t, []string{"k8s", "kubernetes"}, qc.Variants)
}

func TestRelevanceAndRank(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	docs := []Document{
		{Title: "Accountant", Description: "Excel", CreatedAt: now.Add(-time.Hour)},
		{Title: "Go Engineer", Skills: []string{"Go"}, CreatedAt: now.Add(-40 * 24 * time.Hour)},
		{Title: "Platform Engineer", Description: "we use go", CreatedAt: now.Add(-2 * 24 * time.Hour)},
	}

	assert.Equal(t, 0.0, Relevance(docs[0], []string{"go"}))
	assert.Equal(t, 5.0, Relevance(docs[1], []string{"go"}))
	assert.Equal(t, 1.0, Relevance(docs[2], []string{"go"}))

	// scores: 7.5, 10, 8
	assert.Equal(t, []int{1, 2, 0}, Rank(docs, []string{"go"}, now))
}

func TestFreshness(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 5.0, Freshness(now.Add(-time.Hour), now))
	assert.Equal(t, 3.0, Freshness(now.Add(-5*24*time.Hour), now))
	assert.Equal(t, 0.0, Freshness(now.Add(-60*24*time.Hour), now))
	assert.Equal(t, 0.0, Freshness(time.Time{}, now))
}
