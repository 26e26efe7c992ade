// Package types defines core domain types for the Cosecha harvest pipeline.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
	"regexp"
)

// periodPattern matches a harvest period like "2025-09".
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// JobMeta identifies one harvest job. A job owns its output directory
// exclusively: no two jobs write under the same job ID.
type JobMeta struct {
	// JobID uniquely names the job and its output directory.
	JobID string
	// Period is the billing period under harvest, formatted "YYYY-MM".
	Period string
	// Provider optionally narrows the harvest to one provider.
	Provider string
	// Attempt is the job attempt number, starting at 1.
	Attempt int
}

// Validate checks job metadata per the storage handoff contract.
func (j *JobMeta) Validate() error {
	if j == nil {
		return errors.New("job metadata is nil")
	}
	if j.JobID == "" {
		return errors.New("job_id must not be empty")
	}
	if !periodPattern.MatchString(j.Period) {
		return fmt.Errorf("period %q must match YYYY-MM", j.Period)
	}
	if j.Attempt < 1 {
		return fmt.Errorf("attempt must be >= 1, got %d", j.Attempt)
	}
	return nil
}
