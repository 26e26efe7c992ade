package harvest

import (
	"context"

	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/types"
)

// Pipeline runs one full discovery-and-download pass: summary grid in
// stable descending order, every identity's detail table, downloads
// with retry, reconciliation, and the finalized report.
type Pipeline struct {
	discovery  *Discovery
	reconciler *Reconciler
	logger     *log.Logger
}

// NewPipeline wires a pipeline from its two halves.
func NewPipeline(d *Discovery, r *Reconciler, logger *log.Logger) *Pipeline {
	return &Pipeline{discovery: d, reconciler: r, logger: logger}
}

// Run executes the pass. It returns ErrEmptyResult when the portal has
// no data for the period. Row- and identity-level errors are recovered
// locally; only surface-level failures abort the pass.
func (p *Pipeline) Run(ctx context.Context) (*types.HarvestReport, error) {
	noData, err := p.discovery.CheckNoData(ctx)
	if err != nil {
		return nil, err
	}
	if noData {
		return nil, ErrEmptyResult
	}

	if err := p.discovery.SortDescending(ctx); err != nil {
		return nil, err
	}

	for {
		ids, sentinel, err := p.discovery.EnumerateIdentities(ctx)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 && !sentinel {
			break
		}

		for _, id := range ids {
			if err := p.processIdentity(ctx, id); err != nil {
				p.discovery.metrics.IncIdentityError()
				p.logger.Warn("identity failed, continuing", map[string]any{
					"date_key": id.DateKey,
					"error":    err.Error(),
				})
			}
		}

		if sentinel {
			break
		}
		more, err := p.discovery.NextSummaryPage(ctx)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	report := p.reconciler.Finalize()
	p.logger.Info("harvest pass finalized", map[string]any{
		"expected":     report.TotalExpected,
		"downloaded":   report.TotalDownloaded,
		"success_rate": report.SuccessRate,
		"passed":       report.Passed,
	})
	return report, nil
}

// processIdentity walks one identity's detail table across its pages,
// downloading every referenced document, then reconciles misses against
// the final rendering and returns to the summary grid.
func (p *Pipeline) processIdentity(ctx context.Context, id types.DocumentIdentity) error {
	if err := p.discovery.OpenIdentity(ctx, id); err != nil {
		return err
	}

	if err := p.discovery.ResetDetailPagination(ctx); err != nil {
		return err
	}

	headers, err := p.discovery.ReadHeaders(ctx)
	if err != nil {
		return err
	}

	for {
		rows, err := p.discovery.ReadRows(ctx, headers)
		if err != nil {
			return err
		}
		for _, doc := range rows {
			// Failures are recorded in the outcome; reconciliation
			// gets another go at them below.
			p.reconciler.DownloadRow(ctx, id, doc)
		}

		more, err := p.discovery.NextDetailPage(ctx)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	if err := p.reconciler.Reconcile(ctx, p.discovery, headers); err != nil {
		p.logger.Warn("reconciliation failed", map[string]any{
			"date_key": id.DateKey,
			"error":    err.Error(),
		})
	}

	return p.discovery.ReturnToSummary(ctx)
}
