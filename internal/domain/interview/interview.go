package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxQuestions is the number of answered questions that completes an
// interview.
const MaxQuestions = 3

var (
	ErrNotFound       = errors.New("interview not found")
	ErrNotStarted     = errors.New("interview not in progress")
	ErrAlreadyDone    = errors.New("interview already completed")
	ErrEmptyAnswer    = errors.New("answer must not be empty")
	ErrNoOpenQuestion = errors.New("no open question")
	ErrNotCompleted   = errors.New("interview not completed")
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

type QuestionType string

const (
	Technical   QuestionType = "technical"
	Behavioral  QuestionType = "behavioral"
	Situational QuestionType = "situational"
)

type Question struct {
	Text string       `json:"question_text"`
	Type QuestionType `json:"type"`
}

type Answer struct {
	QuestionIndex int       `json:"question_index"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
}

type Interview struct {
	ID              uuid.UUID  `json:"id"`
	ApplicationID   uuid.UUID  `json:"application_id"`
	Status          Status     `json:"status"`
	Questions       []Question `json:"questions"`
	Answers         []Answer   `json:"answers"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	ReportGenerated bool       `json:"report_generated"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Start moves a pending interview to in-progress with its first question.
// Starting an in-progress interview is a no-op.
func (iv *Interview) Start(first Question, now time.Time) error {
	switch iv.Status {
	case StatusInProgress:
		return nil
	case StatusCompleted:
		return ErrAlreadyDone
	}
	iv.Status = StatusInProgress
	iv.StartedAt = &now
	if len(iv.Questions) == 0 {
		iv.Questions = []Question{first}
	}
	return nil
}

// OpenQuestion is the index of the question awaiting an answer, or -1.
func (iv *Interview) OpenQuestion() int {
	if len(iv.Answers) < len(iv.Questions) {
		return len(iv.Answers)
	}
	return -1
}

// Answer records text for the open question. It reports whether the
// interview is now complete.
func (iv *Interview) Answer(text string, now time.Time) (bool, error) {
	if iv.Status == StatusCompleted {
		return false, ErrAlreadyDone
	}
	if iv.Status != StatusInProgress {
		return false, ErrNotStarted
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false, ErrEmptyAnswer
	}
	idx := iv.OpenQuestion()
	if idx < 0 {
		return false, ErrNoOpenQuestion
	}
	iv.Answers = append(iv.Answers, Answer{QuestionIndex: idx, Text: text, Timestamp: now})

	if len(iv.Answers) >= MaxQuestions {
		iv.Status = StatusCompleted
		iv.CompletedAt = &now
		return true, nil
	}
	return false, nil
}

// AddQuestion appends a follow-up. It refuses to exceed MaxQuestions or to
// stack a question on an unanswered one.
func (iv *Interview) AddQuestion(q Question) error {
	if iv.Status != StatusInProgress {
		return ErrNotStarted
	}
	if len(iv.Questions) >= MaxQuestions {
		return fmt.Errorf("%w: question limit reached", ErrAlreadyDone)
	}
	if iv.OpenQuestion() >= 0 {
		return fmt.Errorf("%w: question %d is unanswered", ErrNoOpenQuestion, iv.OpenQuestion())
	}
	iv.Questions = append(iv.Questions, q)
	return nil
}

// Transcript pairs questions with answers for prompts and reports.
func (iv *Interview) Transcript() string {
	var b strings.Builder
	for i, q := range iv.Questions {
		fmt.Fprintf(&b, "Q%d (%s): %s\n", i+1, q.Type, q.Text)
		for _, a := range iv.Answers {
			if a.QuestionIndex == i {
				fmt.Fprintf(&b, "A%d: %s\n", i+1, a.Text)
			}
		}
	}
	return b.String()
}

// Report is the generated assessment of a completed interview.
type Report struct {
	Summary             string   `json:"summary"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	FitScore            int      `json:"fit_score"`
	CultureFitScore     int      `json:"culture_fit_score"`
	CommunicationScore  int      `json:"communication_score"`
	TechnicalDepthScore int      `json:"technical_depth_score"`
	SuggestedNextStep   string   `json:"suggested_next_step"`
	Rationale           string   `json:"rationale"`
	FollowUpQuestions   []string `json:"follow_up_questions"`
	Version             string   `json:"version"`
}

// FallbackQuestions is the bank used when no model is available.
func FallbackQuestions(jobTitle string) []Question {
	role := strings.TrimSpace(jobTitle)
	if role == "" {
		role = "this role"
	}
	return []Question{
		{Text: fmt.Sprintf("Tell us about a project that prepared you for %s. What was your part in it?", role), Type: Behavioral},
		{Text: fmt.Sprintf("Which technical skill matters most for %s, and how have you applied it?", role), Type: Technical},
		{Text: "A deadline moves up by a week and a teammate is unavailable. How do you handle it?", Type: Situational},
	}
}
