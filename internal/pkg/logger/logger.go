package logger

import (
	"io"
	"os"
	"strings"

	"careerhub/internal/config"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production gets JSON output.
func New(cfg config.Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(strings.TrimSpace(cfg.App.LogLevel))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

// Discard returns a logger that writes nothing, for tests and CLIs that
// only want errors surfaced through return values.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
