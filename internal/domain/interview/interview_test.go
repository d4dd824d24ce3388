package interview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestInterviewFlow(t *testing.T) {
	bank := FallbackQuestions("Data Analyst")
	iv := &Interview{Status: StatusPending}

	_, err := iv.Answer("too early", t0)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, iv.Start(bank[0], t0))
	require.NoError(t, iv.Start(bank[1], t0), "start is idempotent")
	assert.Len(t, iv.Questions, 1)
	assert.Equal(t, 0, iv.OpenQuestion())

	assert.ErrorIs(t, iv.AddQuestion(bank[1]), ErrNoOpenQuestion)

	_, err = iv.Answer("   ", t0)
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	for i := 0; i < MaxQuestions; i++ {
		if i > 0 {
			require.NoError(t, iv.AddQuestion(bank[i]))
		}
		done, err := iv.Answer("answer", t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, i == MaxQuestions-1, done)
	}

	assert.Equal(t, StatusCompleted, iv.Status)
	require.NotNil(t, iv.CompletedAt)
	assert.Equal(t, -1, iv.OpenQuestion())

	_, err = iv.Answer("late", t0)
	assert.True(t, errors.Is(err, ErrAlreadyDone))
	assert.ErrorIs(t, iv.Start(bank[0], t0), ErrAlreadyDone)
}

func TestAddQuestion_Limit(t *testing.T) {
	iv := &Interview{Status: StatusInProgress, Questions: make([]Question, MaxQuestions), Answers: make([]Answer, MaxQuestions-1)}
	assert.ErrorIs(t, iv.AddQuestion(Question{Text: "x"}), ErrAlreadyDone)
}

func TestTranscript(t *testing.T) {
	iv := &Interview{
		Questions: []Question{{Text: "Why us?", Type: Behavioral}, {Text: "Explain joins", Type: Technical}},
		Answers:   []Answer{{QuestionIndex: 0, Text: "Growth"}},
	}
	assert.Equal(t, "Q1 (behavioral): Why us?\nA1: Growth\nQ2 (technical): Explain joins\n", iv.Transcript())
}

func TestFallbackQuestions(t *testing.T) {
	qs := FallbackQuestions("")
	require.Len(t, qs, MaxQuestions)
	assert.Contains(t, qs[0].Text, "this role")
}
