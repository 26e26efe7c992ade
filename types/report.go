package types

// PassThresholdPercent is the minimum success rate for a harvest pass.
const PassThresholdPercent = 95.0

// FailedRecord identifies one row whose download failed definitively.
type FailedRecord struct {
	AccountNumber string `json:"nro_cuenta"`
	Error         string `json:"error"`
}

// HarvestReport aggregates all download outcomes of one discovery pass.
// Created once per pass, immutable after finalization, persisted alongside
// the downloaded files under <job_id>/results/.
type HarvestReport struct {
	JobID           string         `json:"job_id"`
	Period          string         `json:"period"`
	TotalExpected   int            `json:"total_expected"`
	TotalDownloaded int            `json:"total_downloaded"`
	// SuccessRate is a percentage in [0, 100], rounded to two decimals.
	SuccessRate    float64        `json:"success_rate"`
	FailedRecords  []FailedRecord `json:"failed_records"`
	CorruptedFiles []string       `json:"corrupted_files"`
	RetrySuccesses int            `json:"retry_successes"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	// Passed gates extraction: SuccessRate >= 95 and no corrupted files.
	Passed bool `json:"passed"`
}
