package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "careerhub")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "a-secret")
	t.Setenv("JWT_REFRESH_SECRET", "r-secret")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"migrate", "seed", "embed-jobs", "extract-skills", "reparse-resumes", "clear-cache", "import-job",
	}, names)
}

func TestReparse_RejectsUnknownStatus(t *testing.T) {
	setEnv(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"reparse-resumes", "--status", "archived"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "archived"`)
}

func TestImportJob_RequiresURL(t *testing.T) {
	setEnv(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import-job"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

func TestConfigRequiredBeforeCommands(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	root := newRootCmd()
	root.SetArgs([]string{"seed"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_NAME")
}

func TestMigrationRunner_FallsBackToEmbedded(t *testing.T) {
	e := &env{}
	e.cfg.App.MigrationsDir = t.TempDir() + "/missing"
	r := migrationRunner(e)
	assert.NotNil(t, r.FS)

	migs, err := r.Load()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, int64(1), migs[0].Version)

	e.cfg.App.MigrationsDir = t.TempDir()
	r = migrationRunner(e)
	assert.Nil(t, r.FS)
	assert.Equal(t, e.cfg.App.MigrationsDir, r.Dir)
}
