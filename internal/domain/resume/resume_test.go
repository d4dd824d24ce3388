package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectType(t *testing.T) {
	ct, err := DetectType("application/pdf", "cv.bin")
	require.NoError(t, err)
	assert.Equal(t, TypePDF, ct)

	ct, err = DetectType("application/octet-stream", "My CV.DOCX")
	require.NoError(t, err)
	assert.Equal(t, TypeDOCX, ct)

	ct, err = DetectType("text/plain; charset=utf-8", "cv")
	require.NoError(t, err)
	assert.Equal(t, TypeText, ct)

	_, err = DetectType("image/png", "photo.png")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Equal(t, ".docx", Extension(TypeDOCX))
}

func TestParseStatusInFlight(t *testing.T) {
	assert.True(t, StatusPending.InFlight())
	assert.True(t, StatusProcessing.InFlight())
	assert.False(t, StatusParsed.InFlight())
	assert.False(t, StatusFailed.InFlight())
}

func TestHeuristic(t *testing.T) {
	text := strings.Join([]string{
		"Aisyah Rahman",
		"aisyah@example.com",
		"Education",
		"BSc Computer Science, Universiti Malaya, 2026",
		"Experience",
		"Backend intern at Acme",
		"Skills",
		"Go, SQL, Docker",
	}, "\n")

	a := Heuristic(text, []string{"Go", "SQL", "Docker"}, []string{"Kubernetes"})

	// contact 10 + education 20 + experience 25 + skills 20 + 3 for skills found
	assert.Equal(t, 78, a.OverallScore)
	assert.True(t, a.SectionsAnalysis["education"].Present)
	assert.False(t, a.SectionsAnalysis["projects"].Present)
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, a.KeywordsFound)
	assert.Equal(t, []string{"Kubernetes"}, a.KeywordsMissing)
	assert.Contains(t, a.Improvements, sectionAdvice["projects"])
	assert.Equal(t, "heuristic", a.ModelName)
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	assert.Equal(t, 0, p.OverallScore)
	assert.NotNil(t, p.Strengths)
	assert.NotNil(t, p.SectionsAnalysis)
}
