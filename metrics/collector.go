// Package metrics provides per-job metrics collection.
//
// The Collector accumulates counters during a single harvest or
// extraction job. It is a leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of the job counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after
// creation.
type Snapshot struct {
	// Discovery
	IdentitiesEnumerated int64 `json:"identities_enumerated"`
	RowsSeen             int64 `json:"rows_seen"`
	RowErrors            int64 `json:"row_errors"`
	IdentityErrors       int64 `json:"identity_errors"`

	// Downloads
	DownloadsAttempted int64 `json:"downloads_attempted"`
	DownloadsSucceeded int64 `json:"downloads_succeeded"`
	DownloadsFailed    int64 `json:"downloads_failed"`
	DownloadsRetried   int64 `json:"downloads_retried"`
	BytesDownloaded    int64 `json:"bytes_downloaded"`

	// Extraction
	RecordsAccepted int64 `json:"records_accepted"`
	RecordsRejected int64 `json:"records_rejected"`

	// Dimensions (informational, set at construction)
	JobID  string `json:"job_id"`
	Period string `json:"period"`
}

// Collector accumulates counters during a single job.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	identitiesEnumerated int64
	rowsSeen             int64
	rowErrors            int64
	identityErrors       int64

	downloadsAttempted int64
	downloadsSucceeded int64
	downloadsFailed    int64
	downloadsRetried   int64
	bytesDownloaded    int64

	recordsAccepted int64
	recordsRejected int64

	jobID  string
	period string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(jobID, period string) *Collector {
	return &Collector{jobID: jobID, period: period}
}

// IncIdentityEnumerated records one enumerated document identity.
func (c *Collector) IncIdentityEnumerated() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.identitiesEnumerated++
	c.mu.Unlock()
}

// IncRowSeen records one detail row read.
func (c *Collector) IncRowSeen() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rowsSeen++
	c.mu.Unlock()
}

// IncRowError records one detail row that could not be read.
func (c *Collector) IncRowError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rowErrors++
	c.mu.Unlock()
}

// IncIdentityError records one identity that could not be opened.
func (c *Collector) IncIdentityError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.identityErrors++
	c.mu.Unlock()
}

// IncDownloadAttempted records one download attempt.
func (c *Collector) IncDownloadAttempted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.downloadsAttempted++
	c.mu.Unlock()
}

// AddDownloadSucceeded records a completed download and its size.
func (c *Collector) AddDownloadSucceeded(sizeBytes int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.downloadsSucceeded++
	c.bytesDownloaded += sizeBytes
	c.mu.Unlock()
}

// IncDownloadFailed records a download that exhausted its attempts.
func (c *Collector) IncDownloadFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.downloadsFailed++
	c.mu.Unlock()
}

// IncDownloadRetried records a download recovered by reconciliation.
func (c *Collector) IncDownloadRetried() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.downloadsRetried++
	c.mu.Unlock()
}

// IncRecordAccepted records one validated record.
func (c *Collector) IncRecordAccepted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsAccepted++
	c.mu.Unlock()
}

// IncRecordRejected records one rejected record.
func (c *Collector) IncRecordRejected() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsRejected++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all counters.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		IdentitiesEnumerated: c.identitiesEnumerated,
		RowsSeen:             c.rowsSeen,
		RowErrors:            c.rowErrors,
		IdentityErrors:       c.identityErrors,

		DownloadsAttempted: c.downloadsAttempted,
		DownloadsSucceeded: c.downloadsSucceeded,
		DownloadsFailed:    c.downloadsFailed,
		DownloadsRetried:   c.downloadsRetried,
		BytesDownloaded:    c.bytesDownloaded,

		RecordsAccepted: c.recordsAccepted,
		RecordsRejected: c.recordsRejected,

		JobID:  c.jobID,
		Period: c.period,
	}
}
