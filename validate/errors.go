package validate

import "errors"

var (
	// ErrSchemaViolation marks a record whose shape failed the
	// structural schema check.
	ErrSchemaViolation = errors.New("record violates schema")

	// ErrConsistencyMismatch marks a record that disagrees with the
	// independent re-parse of its source text.
	ErrConsistencyMismatch = errors.New("record inconsistent with re-parse")
)
