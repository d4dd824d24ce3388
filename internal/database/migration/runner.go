package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const advisoryLockKey int64 = 746295114

// Runner applies V<n>__name.sql files in version order. Files come from FS
// when set, otherwise from Dir on disk.
type Runner struct {
	FS     fs.FS
	Dir    string
	Logger *logrus.Logger
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// Status is one row of `careerctl migrate --status`.
type Status struct {
	Migration
	Applied   bool
	AppliedAt *time.Time
}

type appliedMigration struct {
	Version   int64
	Checksum  string
	AppliedAt time.Time
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// session is a *sql.DB or a *sql.Conn pinned to one backend.
type session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Run applies pending migrations. The advisory lock is session scoped, so
// locking, applying and unlocking all happen on one dedicated connection.
func (r Runner) Run(ctx context.Context, db *sql.DB) (int, error) {
	if db == nil {
		return 0, errors.New("nil db")
	}

	migs, err := r.Load()
	if err != nil {
		return 0, err
	}
	if len(migs) == 0 {
		return 0, nil
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockKey); err != nil {
		return 0, err
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, advisoryLockKey); err != nil {
			r.log().WithError(err).Warn("migration lock not released")
		}
	}()

	if err := ensureSchemaMigrations(ctx, conn); err != nil {
		return 0, err
	}
	applied, err := getApplied(ctx, conn)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range migs {
		if a, ok := applied[m.Version]; ok {
			if a.Checksum != m.Checksum {
				return n, fmt.Errorf("%w: version=%d name=%s", ErrChecksumMismatch, m.Version, m.Name)
			}
			continue
		}

		start := time.Now()
		if err := applyOne(ctx, conn, m); err != nil {
			return n, err
		}
		n++
		r.log().WithFields(logrus.Fields{
			"component": "migration",
			"version":   m.Version,
			"file":      m.Filename,
			"took":      time.Since(start).String(),
		}).Info("migration applied")
	}

	return n, nil
}

// Statuses reports every known migration and whether it has been applied.
func (r Runner) Statuses(ctx context.Context, db *sql.DB) ([]Status, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	migs, err := r.Load()
	if err != nil {
		return nil, err
	}
	if err := ensureSchemaMigrations(ctx, db); err != nil {
		return nil, err
	}
	applied, err := getApplied(ctx, db)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(migs))
	for _, m := range migs {
		st := Status{Migration: m}
		if a, ok := applied[m.Version]; ok {
			st.Applied = true
			at := a.AppliedAt
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// Load reads and orders migrations without touching the database.
func (r Runner) Load() ([]Migration, error) {
	fsys := r.FS
	if fsys == nil {
		dir := strings.TrimSpace(r.Dir)
		if dir == "" {
			dir = "migrations"
		}
		if _, err := os.Stat(dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		fsys = os.DirFS(dir)
	}
	return loadMigrations(fsys)
}

func (r Runner) log() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}

func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		m := fileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", name)
		}

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		sqlText := strings.TrimSpace(string(b))
		if sqlText == "" {
			return nil, fmt.Errorf("empty migration file: %s", name)
		}

		h := sha256.Sum256([]byte(sqlText))
		migs = append(migs, Migration{
			Version:  v,
			Name:     m[2],
			Filename: name,
			SQL:      sqlText,
			Checksum: hex.EncodeToString(h[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}

	return migs, nil
}

func ensureSchemaMigrations(ctx context.Context, db session) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

func getApplied(ctx context.Context, db session) (map[int64]appliedMigration, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]appliedMigration{}
	for rows.Next() {
		var a appliedMigration
		if err := rows.Scan(&a.Version, &a.Checksum, &a.AppliedAt); err != nil {
			return nil, err
		}
		out[a.Version] = a
	}
	return out, rows.Err()
}

func applyOne(ctx context.Context, db session, m Migration) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration failed: version=%d file=%s: %w", m.Version, m.Filename, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}
