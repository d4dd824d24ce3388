package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"careerhub/internal/database"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrCompanyNameTaken is the duplicate raised by the case-insensitive
	// company name index.
	ErrCompanyNameTaken = fmt.Errorf("%w: company name", ErrDuplicate)
	// ErrStale means a conditional update matched no row because the
	// record changed since it was read.
	ErrStale = errors.New("record changed concurrently")
)

// Page is a LIMIT/OFFSET window. Zero values fall back to 20 rows.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized(max int) Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SkillRef is a dictionary skill.
type SkillRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
}

func nullableText(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func vector(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

// where accumulates AND-ed predicates and their positional args.
type where struct {
	clauses []string
	args    []any
}

// add appends a clause where every "?" is replaced by the next placeholder.
func (w *where) add(clause string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		clause = strings.Replace(clause, "?", "$"+strconv.Itoa(len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

// arg registers a value and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func likePattern(s string) string {
	s = strings.TrimSpace(s)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func mapWriteErr(err error) error {
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
