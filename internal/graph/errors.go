package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports invariant violations keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
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
	return "validation failed: " + strings.Join(parts, "; ")
}

// Prefixed returns a copy whose field names are nested under prefix,
// e.g. "education[1].start_date".
func (e *ValidationError) Prefixed(prefix string) *ValidationError {
	out := make(map[string]string, len(e.Fields))
	for k, v := range e.Fields {
		out[prefix+"."+k] = v
	}
	return &ValidationError{Fields: out}
}

// ConflictError reports a uniqueness clash that is not a plain field error,
// such as a second match for an already matched (resume, job) pair.
type ConflictError struct {
	Resource string
	Fields   map[string]any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %v", e.Resource, e.Fields)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func duplicateSkillName() *ValidationError {
	return NewValidationError("name", "skill with this name already exists")
}

func duplicateMatch(resumeID, jobID int64) *ConflictError {
	return &ConflictError{
		Resource: "resume job match",
		Fields:   map[string]any{"resume": resumeID, "job": jobID},
	}
}
