package types

// FieldError is one validation discrepancy.
type FieldError struct {
	Section  string `json:"section"`
	Field    string `json:"field"`
	Error    string `json:"error"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

// ValidationVerdict is the result of validating one built record against
// the structural schema and an independent re-parse of its source.
type ValidationVerdict struct {
	IsValid     bool         `json:"is_valid"`
	TotalErrors int          `json:"total_errors"`
	Errors      []FieldError `json:"errors"`
}

// NewVerdict builds a verdict from the collected errors.
func NewVerdict(errs []FieldError) ValidationVerdict {
	if errs == nil {
		errs = []FieldError{}
	}
	return ValidationVerdict{
		IsValid:     len(errs) == 0,
		TotalErrors: len(errs),
		Errors:      errs,
	}
}
