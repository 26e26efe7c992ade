package types

// MinDocumentBytes is the integrity threshold for a downloaded document.
// Files below this size are treated as corrupt, deleted, and re-attempted.
const MinDocumentBytes = 1000

// DownloadStatus is the terminal state of one download attempt sequence.
type DownloadStatus string

const (
	// DownloadSuccess means the file is on disk and passed the integrity check.
	DownloadSuccess DownloadStatus = "SUCCESS"
	// DownloadFailed means all attempts in the bulk pass were exhausted.
	DownloadFailed DownloadStatus = "FAILED"
	// DownloadRetriedSuccess means reconciliation recovered the file.
	DownloadRetriedSuccess DownloadStatus = "RETRIED_SUCCESS"
	// DownloadCorrupt means the persisted file failed the integrity check.
	DownloadCorrupt DownloadStatus = "CORRUPT"
	// DownloadFailedFinal means reconciliation also exhausted its attempts.
	DownloadFailedFinal DownloadStatus = "FAILED_FINAL"
	// DownloadSkipped means the row carried no document reference.
	// Recorded for audit; not counted as a failure.
	DownloadSkipped DownloadStatus = "SKIPPED"
)

// Downloaded reports whether the outcome ended with a valid file on disk.
func (s DownloadStatus) Downloaded() bool {
	return s == DownloadSuccess || s == DownloadRetriedSuccess
}

// DownloadOutcome records the result of downloading one row's document.
// Invariant: a SUCCESS outcome always has SizeBytes >= MinDocumentBytes;
// an undersized file is never kept.
type DownloadOutcome struct {
	Identity      DocumentIdentity `json:"identity" msgpack:"identity"`
	AccountNumber string           `json:"account_number" msgpack:"account_number"`
	// Token is the opaque download token extracted from the row action.
	Token        string         `json:"token,omitempty" msgpack:"token,omitempty"`
	AttemptCount int            `json:"attempt_count" msgpack:"attempt_count"`
	FilePath     string         `json:"file_path,omitempty" msgpack:"file_path,omitempty"`
	SizeBytes    int64          `json:"size_bytes" msgpack:"size_bytes"`
	Status       DownloadStatus `json:"status" msgpack:"status"`
	// Error carries the last row-level error message, if any.
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
	// Row is the full detail-grid row the document came from.
	Row RowRecord `json:"row,omitempty" msgpack:"row,omitempty"`
}
