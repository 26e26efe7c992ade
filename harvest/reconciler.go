package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/austral-data/cosecha/browser"
	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/metrics"
	"github.com/austral-data/cosecha/types"
)

// Reconciler defaults.
const (
	defaultMaxAttempts       = 3
	defaultReconcileAttempts = 2
	defaultDownloadTimeout   = 30 * time.Second
)

// ReportName is the finalized report's filename under <job>/results/.
const ReportName = "report.json"

// ReconcilerConfig wires a Reconciler.
type ReconcilerConfig struct {
	Surface browser.Surface
	Logger  *log.Logger
	Metrics *metrics.Collector
	Journal *Journal
	Job     *types.JobMeta

	// Dir is the directory downloaded documents are persisted into.
	Dir string

	// MaxAttempts bounds the bulk download loop; zero means 3.
	MaxAttempts int
	// ReconcileAttempts bounds the reconciliation retries; zero means 2.
	ReconcileAttempts int
	// DownloadTimeout bounds one download wait; zero means 30s.
	DownloadTimeout time.Duration
	// RetryDelay is slept between attempts. Zero is valid (tests).
	RetryDelay time.Duration
}

// Reconciler layers retry, integrity checking, and cross-validation on
// top of Discovery, accumulating one DownloadOutcome per token-bearing
// row and finalizing them into the harvest report.
type Reconciler struct {
	surface browser.Surface
	logger  *log.Logger
	metrics *metrics.Collector
	journal *Journal
	job     *types.JobMeta
	dir     string

	maxAttempts       int
	reconcileAttempts int
	downloadTimeout   time.Duration
	retryDelay        time.Duration

	outcomes  []types.DownloadOutcome
	finalized *types.HarvestReport
}

// NewReconciler creates a Reconciler writing into cfg.Dir.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.ReconcileAttempts <= 0 {
		cfg.ReconcileAttempts = defaultReconcileAttempts
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = defaultDownloadTimeout
	}
	return &Reconciler{
		surface:           cfg.Surface,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		journal:           cfg.Journal,
		job:               cfg.Job,
		dir:               cfg.Dir,
		maxAttempts:       cfg.MaxAttempts,
		reconcileAttempts: cfg.ReconcileAttempts,
		downloadTimeout:   cfg.DownloadTimeout,
		retryDelay:        cfg.RetryDelay,
	}
}

// Outcomes returns the outcomes recorded so far.
func (r *Reconciler) Outcomes() []types.DownloadOutcome {
	return r.outcomes
}

// DownloadRow downloads one row's document with bounded retries. A row
// without a document reference is recorded as SKIPPED. An existing
// valid file short-circuits the download: a re-run never fetches twice.
func (r *Reconciler) DownloadRow(ctx context.Context, id types.DocumentIdentity, doc RowDocument) error {
	account := doc.Row.AccountNumber()

	if doc.Token == "" {
		r.record(types.DownloadOutcome{
			Identity:      id,
			AccountNumber: account,
			Status:        types.DownloadSkipped,
			Row:           doc.Row,
		})
		return nil
	}

	filename := documentFilename(account, id.ExpectedCount, doc.Token, 0)
	path := filepath.Join(r.dir, filename)

	if size, ok := validOnDisk(path); ok {
		r.logger.Debug("document already on disk", map[string]any{"file": filename, "size": size})
		r.record(types.DownloadOutcome{
			Identity:      id,
			AccountNumber: account,
			Token:         doc.Token,
			FilePath:      path,
			SizeBytes:     size,
			Status:        types.DownloadSuccess,
			Row:           doc.Row,
		})
		return nil
	}

	size := int64(0)
	attempts, err := retry(ctx, r.maxAttempts, r.retryDelay, func(a Attempt) error {
		r.metrics.IncDownloadAttempted()
		n, ferr := r.fetch(ctx, doc.Link, path)
		if ferr != nil {
			r.logger.Warn("download attempt failed", map[string]any{
				"account": account,
				"attempt": a.Number,
				"error":   ferr.Error(),
			})
			return ferr
		}
		size = n
		return nil
	})

	outcome := types.DownloadOutcome{
		Identity:      id,
		AccountNumber: account,
		Token:         doc.Token,
		AttemptCount:  attempts,
		Row:           doc.Row,
	}
	if err != nil {
		outcome.Status = types.DownloadFailed
		outcome.Error = err.Error()
		r.metrics.IncDownloadFailed()
	} else {
		outcome.Status = types.DownloadSuccess
		outcome.FilePath = path
		outcome.SizeBytes = size
		r.metrics.AddDownloadSucceeded(size)
	}
	r.record(outcome)
	return err
}

// fetch performs one download into path and enforces the integrity
// threshold. An undersized file is deleted, never kept.
func (r *Reconciler) fetch(ctx context.Context, link browser.Element, path string) (int64, error) {
	if link == nil {
		return 0, fmt.Errorf("%w: document link", ErrElementNotFound)
	}
	data, _, err := r.surface.AwaitDownload(ctx, r.downloadTimeout, func() error {
		return link.Click(ctx)
	})
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	if int64(len(data)) < types.MinDocumentBytes {
		os.Remove(path)
		return 0, fmt.Errorf("%w: %d bytes", ErrDownloadIntegrity, len(data))
	}
	return int64(len(data)), nil
}

// Reconcile compares token-bearing rows against successful downloads
// and re-attempts each failure by re-locating its row by account number
// in the current rendering. The main pass has moved on; only the
// business key survives the re-render.
func (r *Reconciler) Reconcile(ctx context.Context, d *Discovery, headers []string) error {
	var failedIdx []int
	for i, o := range r.outcomes {
		if o.Status == types.DownloadFailed && o.Token != "" {
			failedIdx = append(failedIdx, i)
		}
	}
	if len(failedIdx) == 0 {
		return nil
	}

	r.logger.Info("reconciling failed downloads", map[string]any{"count": len(failedIdx)})

	rows, err := d.ReadRows(ctx, headers)
	if err != nil {
		return err
	}
	byAccount := make(map[string]RowDocument, len(rows))
	for _, doc := range rows {
		if acct := doc.Row.AccountNumber(); acct != "" {
			byAccount[acct] = doc
		}
	}

	for _, i := range failedIdx {
		outcome := &r.outcomes[i]
		doc, ok := byAccount[outcome.AccountNumber]
		if !ok || doc.Link == nil {
			outcome.Status = types.DownloadFailedFinal
			outcome.Error = "row not re-located by account number"
			r.append(*outcome)
			continue
		}

		size := int64(0)
		path := ""
		attempts, err := retry(ctx, r.reconcileAttempts, r.retryDelay, func(a Attempt) error {
			r.metrics.IncDownloadAttempted()
			path = filepath.Join(r.dir, documentFilename(
				outcome.AccountNumber, outcome.Identity.ExpectedCount, outcome.Token, a.Number))
			n, ferr := r.fetch(ctx, doc.Link, path)
			if ferr != nil {
				return ferr
			}
			size = n
			return nil
		})

		outcome.AttemptCount += attempts
		if err != nil {
			outcome.Status = types.DownloadFailedFinal
			outcome.Error = err.Error()
			r.metrics.IncDownloadFailed()
		} else {
			outcome.Status = types.DownloadRetriedSuccess
			outcome.FilePath = path
			outcome.SizeBytes = size
			outcome.Error = ""
			r.metrics.IncDownloadRetried()
			r.metrics.AddDownloadSucceeded(size)
		}
		r.append(*outcome)
	}
	return nil
}

// Finalize aggregates the outcomes into the harvest report. The report
// is computed once; further calls return the same value. The on-disk
// scan is independent of the in-memory outcomes so a file corrupted
// after its download still fails the pass.
func (r *Reconciler) Finalize() *types.HarvestReport {
	if r.finalized != nil {
		return r.finalized
	}

	report := &types.HarvestReport{
		JobID:          r.job.JobID,
		Period:         r.job.Period,
		FailedRecords:  []types.FailedRecord{},
		CorruptedFiles: []string{},
	}

	for _, o := range r.outcomes {
		if o.Token == "" {
			continue
		}
		report.TotalExpected++
		if o.Status.Downloaded() {
			report.TotalDownloaded++
		}
		if o.Status == types.DownloadRetriedSuccess {
			report.RetrySuccesses++
		}
		if o.Status == types.DownloadFailed || o.Status == types.DownloadFailedFinal {
			report.FailedRecords = append(report.FailedRecords, types.FailedRecord{
				AccountNumber: o.AccountNumber,
				Error:         o.Error,
			})
		}
	}

	entries, err := os.ReadDir(r.dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			report.TotalSizeBytes += info.Size()
			if info.Size() < types.MinDocumentBytes {
				report.CorruptedFiles = append(report.CorruptedFiles, entry.Name())
			}
		}
	}

	if report.TotalExpected > 0 {
		rate := float64(report.TotalDownloaded) / float64(report.TotalExpected) * 100
		report.SuccessRate = math.Round(rate*100) / 100
	}
	report.Passed = report.SuccessRate >= types.PassThresholdPercent && len(report.CorruptedFiles) == 0

	r.finalized = report
	return report
}

// SaveReport persists the finalized report as JSON at path.
func (r *Reconciler) SaveReport(path string) error {
	report := r.Finalize()
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// record appends a fresh outcome to memory and the journal.
func (r *Reconciler) record(outcome types.DownloadOutcome) {
	r.outcomes = append(r.outcomes, outcome)
	r.append(outcome)
}

// append writes an outcome frame to the journal, if one is attached.
func (r *Reconciler) append(outcome types.DownloadOutcome) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Append(outcome); err != nil {
		r.logger.Error("journal append failed", map[string]any{"error": err.Error()})
	}
}

// documentFilename derives the deterministic on-disk name of one
// document: account, expected count, and a token prefix, with a retry
// marker for reconciliation fetches.
func documentFilename(account string, count int, token string, retryN int) string {
	t := token
	if len(t) > 8 {
		t = t[:8]
	}
	if retryN > 0 {
		return fmt.Sprintf("%s_%d_%s_retry%d.pdf", account, count, t, retryN)
	}
	return fmt.Sprintf("%s_%d_%s.pdf", account, count, t)
}

// validOnDisk reports whether path holds a file above the integrity
// threshold.
func validOnDisk(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() < types.MinDocumentBytes {
		return 0, false
	}
	return info.Size(), true
}
