package types

import "strings"

// ColumnAccountNumber is the detail-grid header naming the account column.
// The account number is the business key used to re-locate a row after the
// grid repaints.
const ColumnAccountNumber = "Nro. Cuenta"

// DocumentIdentity stably names one summary-row link across re-renders.
// DateKey comes from the source data (the link's action attribute), never
// from screen position: positions shift as the grid re-sorts or repaints.
type DocumentIdentity struct {
	// DateKey is the reception date embedded in the link action.
	// Unique per enumeration pass.
	DateKey string `json:"date_key" msgpack:"date_key"`
	// ExpectedCount is the account count shown on the link.
	ExpectedCount int `json:"expected_count" msgpack:"expected_count"`
}

// RowRecord is one line-item row of the nested detail grid: a mapping of
// column header to cell text, keyed by headers read once per table.
type RowRecord map[string]string

// AccountNumber returns the row's business key, or "" when absent.
func (r RowRecord) AccountNumber() string {
	return strings.TrimSpace(r[ColumnAccountNumber])
}

// Clone returns a shallow copy of the row.
func (r RowRecord) Clone() RowRecord {
	out := make(RowRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
