package job

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDraftApply_CreateDefaults(t *testing.T) {
	j, err := Draft{
		Title:        strp("  Backend Intern "),
		Requirements: []string{"Go", " ", "SQL"},
	}.Apply(Job{}, now, false)

	require.NoError(t, err)
	assert.Equal(t, "Backend Intern", j.Title)
	assert.Equal(t, TypeFullTime, j.Type)
	assert.Equal(t, OnSite, j.RemoteOption)
	assert.Equal(t, "MYR", j.Currency)
	assert.True(t, j.IsActive)
	assert.Equal(t, []string{"Go", "SQL"}, j.Requirements)
}

func TestDraftApply_Errors(t *testing.T) {
	_, err := Draft{
		Type:                strp("gig"),
		SalaryMin:           intp(5000),
		SalaryMax:           intp(3000),
		ApplicationDeadline: strp("2026-03-09"),
	}.Apply(Job{}, now, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "title")
	assert.Contains(t, fe, "job_type")
	assert.Contains(t, fe, "salary_min")
	assert.Contains(t, fe, "application_deadline")
}

func TestDraftApply_PartialKeepsBase(t *testing.T) {
	base := Job{Title: "Data Analyst", Type: TypeInternship, RemoteOption: Remote, Currency: "USD", IsActive: true, SalaryMin: intp(100)}

	j, err := Draft{SalaryMax: intp(50)}.Apply(base, now, true)
	require.Error(t, err)
	assert.Equal(t, base, j)

	j, err = Draft{Type: strp("part-time"), SalaryMax: intp(500)}.Apply(base, now, true)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", j.Title)
	assert.Equal(t, TypePartTime, j.Type)
	assert.Equal(t, 500, *j.SalaryMax)
	assert.True(t, j.IsActive)
}

func TestDraftApply_DeadlineToday(t *testing.T) {
	j, err := Draft{Title: strp("x"), ApplicationDeadline: strp("2026-03-10")}.Apply(Job{}, now, false)
	require.NoError(t, err)
	require.NotNil(t, j.ApplicationDeadline)
	assert.True(t, j.AcceptsApplications(now))
	assert.False(t, j.AcceptsApplications(now.Add(24*time.Hour)))
}

func TestDraftMerge(t *testing.T) {
	d := Draft{Title: strp("A"), Location: strp("KL")}
	d = d.Merge(Draft{Title: strp("B"), Skills: []string{"Go"}})

	assert.Equal(t, "B", *d.Title)
	assert.Equal(t, "KL", *d.Location)
	assert.Equal(t, []string{"Go"}, d.Skills)
}

func TestContentChanged(t *testing.T) {
	a := Job{Title: "A", Requirements: []string{"x"}}
	b := a
	assert.False(t, ContentChanged(a, b))
	b.Requirements = []string{"y"}
	assert.True(t, ContentChanged(a, b))
	b = a
	b.SalaryMax = intp(1)
	assert.False(t, ContentChanged(a, b))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusApplied, StatusInterviewed))
	assert.True(t, CanTransition(StatusInterviewed, StatusOffered))
	assert.False(t, CanTransition(StatusInterviewed, StatusApplied))
	assert.False(t, CanTransition(StatusOffered, StatusRejected))
	assert.False(t, CanTransition(StatusRejected, StatusOffered))
	assert.True(t, StatusRejected.Terminal())

	s, ok := ParseApplicationStatus("interviewed")
	assert.True(t, ok)
	assert.Equal(t, StatusInterviewed, s)
}
