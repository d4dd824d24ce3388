package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"careerhub/internal/domain/careerfair"
	"careerhub/internal/domain/job"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnavailable         = errors.New("service unavailable")
	ErrUnsupportedMedia    = errors.New("unsupported media type")
	ErrTooLarge            = errors.New("payload too large")
	ErrInternal            = errors.New("internal error")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrProcessing means the requested data depends on a resume that is
	// still being parsed.
	ErrProcessing = errors.New("resume is still being processed")
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// fromDomain translates domain validation errors.
func fromDomain(err error) error {
	var fe job.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Fields: map[string]string(fe)}
	}
	var ie *careerfair.InvalidError
	if errors.As(err, &ie) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(ie.Reasons, "; "))
	}
	return err
}

func internal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
