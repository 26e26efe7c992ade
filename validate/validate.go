package validate

import (
	"errors"
	"fmt"

	"github.com/austral-data/cosecha/types"
)

// Validator combines the structural schema check and the independent
// re-parse diff.
type Validator struct {
	schema *Schema
}

// New builds a validator with the embedded schema compiled once.
func New() (*Validator, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return &Validator{schema: schema}, nil
}

// Validate produces the verdict for one record against its source text.
// A rejected record also returns a non-nil error wrapping
// ErrSchemaViolation, ErrConsistencyMismatch, or both; the verdict
// carries the individual field errors either way.
func (v *Validator) Validate(record types.Liquidation, text string) (types.ValidationVerdict, error) {
	schemaErrs := v.schema.Check(record)
	consistErrs := Consistency(record, text)

	var schemaErr, consistErr error
	if len(schemaErrs) > 0 {
		schemaErr = fmt.Errorf("%w: %d field errors", ErrSchemaViolation, len(schemaErrs))
	}
	if len(consistErrs) > 0 {
		consistErr = fmt.Errorf("%w: %d field errors", ErrConsistencyMismatch, len(consistErrs))
	}
	return types.NewVerdict(append(schemaErrs, consistErrs...)), errors.Join(schemaErr, consistErr)
}
