// Package adapter defines the notification boundary for finished jobs.
//
// Adapters publish job completion events to downstream systems. The CLI
// owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/austral-data/cosecha/types"
)

// Outcome values carried by a JobCompletedEvent.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeEmpty  = "empty"
)

// JobCompletedEvent is the payload published when a harvest job finishes.
type JobCompletedEvent struct {
	EventType string `json:"event_type"` // always "job_completed"
	JobID     string `json:"job_id"`
	Period    string `json:"period"`
	Provider  string `json:"provider,omitempty"`
	Attempt   int    `json:"attempt"`
	// Outcome is passed, failed, or empty.
	Outcome     string `json:"outcome"`
	StoragePath string `json:"storage_path"`
	Timestamp   string `json:"timestamp"` // ISO 8601

	TotalExpected   int     `json:"total_expected"`
	TotalDownloaded int     `json:"total_downloaded"`
	SuccessRate     float64 `json:"success_rate"`
	RetrySuccesses  int     `json:"retry_successes"`
	DurationMs      int64   `json:"duration_ms"`
}

// NewJobCompletedEvent assembles the event for a finished job. A nil
// report means the portal had no data for the period.
func NewJobCompletedEvent(job *types.JobMeta, report *types.HarvestReport, storagePath string, duration time.Duration) *JobCompletedEvent {
	event := &JobCompletedEvent{
		EventType:   "job_completed",
		JobID:       job.JobID,
		Period:      job.Period,
		Provider:    job.Provider,
		Attempt:     job.Attempt,
		Outcome:     OutcomeEmpty,
		StoragePath: storagePath,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DurationMs:  duration.Milliseconds(),
	}
	if report != nil {
		event.Outcome = OutcomeFailed
		if report.Passed {
			event.Outcome = OutcomePassed
		}
		event.TotalExpected = report.TotalExpected
		event.TotalDownloaded = report.TotalDownloaded
		event.SuccessRate = report.SuccessRate
		event.RetrySuccesses = report.RetrySuccesses
	}
	return event
}

// Adapter publishes job completion events to a downstream system.
// Implementations must be safe for single-use per job.
type Adapter interface {
	// Publish sends a job completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *JobCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
