package domain

import (
	"errors"
	"fmt"
)

// Core failure taxonomy. Handlers and services compare with errors.Is; the
// store adapters wrap driver errors into these sentinels so callers never see
// raw driver failures.
var (
	// ErrNotFound covers absent records and, deliberately, owner-level
	// permission denials: callers must not be able to distinguish the two.
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied is an owner-level view/download restriction. It is
	// translated to ErrNotFound before leaving the record layer.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDataIntegrity marks a cross-store mismatch. Non-retryable.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrInvalidResumeData means the resume is missing vectors or required fields.
	ErrInvalidResumeData = errors.New("invalid resume data")

	// ErrStoreUnavailable is transient; safe to retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrModelUnavailable means the embedding provider failed to load.
	ErrModelUnavailable = errors.New("embedding model unavailable")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e[0].Error())
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}
