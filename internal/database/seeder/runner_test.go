package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerhub/internal/database"
)

type stubDB struct{ database.DB }


type recordSeeder struct {
	name string
	err  error
	log  *[]string
}

func (s recordSeeder) Name() string { return s.name }

func (s recordSeeder) Run(context.Context, database.DB) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func TestRunner_RunsInOrderAndStopsOnError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	r := Runner{Seeders: []Seeder{
		recordSeeder{name: "skills", log: &log},
		nil,
		recordSeeder{name: "jobs", err: boom, log: &log},
		recordSeeder{name: "career_fairs", log: &log},
	}}

	err := r.Run(context.Background(), stubDB{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed jobs")
	assert.Equal(t, []string{"skills", "jobs"}, log)
}

func TestRunner_NilDB(t *testing.T) {
	err := Runner{Seeders: Defaults()}.Run(context.Background(), nil)
	assert.EqualError(t, err, "nil db")
}

func TestDefaults_Order(t *testing.T) {
	var names []string
	for _, s := range Defaults() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"skills", "universities", "companies", "jobs", "career_fairs"}, names)
}

func TestDemoJobsReferenceSeededRows(t *testing.T) {
	skills := map[string]bool{}
	for _, s := range defaultSkills {
		skills[s.Name] = true
	}
	companies := map[string]bool{}
	for _, c := range defaultCompanies {
		companies[c.Name] = true
	}
	for _, j := range defaultJobs {
		assert.True(t, companies[j.Company], j.Title)
		for _, name := range append(append([]string{}, j.Mandatory...), j.Optional...) {
			assert.True(t, skills[name], "%s: unknown skill %s", j.Title, name)
		}
	}
}
