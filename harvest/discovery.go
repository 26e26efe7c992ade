package harvest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/austral-data/cosecha/browser"
	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/metrics"
	"github.com/austral-data/cosecha/types"
)

// defaultWaitTimeout bounds the wait for the detail marker after a
// summary link click.
const defaultWaitTimeout = 10 * time.Second

var (
	dateKeyPattern = regexp.MustCompile(`DetalleCtas\('APago',\s*'([^']+)'`)
	tokenPattern   = regexp.MustCompile(`AbrirImagen_ReporteLiquidacion\('([^']+)'`)
)

// Config wires a Discovery.
type Config struct {
	Surface   browser.Surface
	Selectors Selectors
	Logger    *log.Logger
	Metrics   *metrics.Collector

	// WaitTimeout bounds marker waits; zero means the default.
	WaitTimeout time.Duration
}

// Discovery drives the summary and detail grids of one harvest pass.
// Entry precondition: the caller has already navigated to the results
// view with filters applied.
type Discovery struct {
	surface     browser.Surface
	sel         Selectors
	logger      *log.Logger
	metrics     *metrics.Collector
	waitTimeout time.Duration
}

// NewDiscovery creates a Discovery over an already-filtered results view.
func NewDiscovery(cfg Config) *Discovery {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	return &Discovery{
		surface:     cfg.Surface,
		sel:         cfg.Selectors,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		waitTimeout: cfg.WaitTimeout,
	}
}

// RowDocument is one detail row together with its download reference.
// Token is "" when the row carries no document. Link is only valid in
// the rendering the row was read from.
type RowDocument struct {
	Row   types.RowRecord
	Token string
	Link  browser.Element
}

// CheckNoData inspects the results panel for no-data phrases. The
// benign phrase is ignored: the portal shows it even when data exists.
func (d *Discovery) CheckNoData(ctx context.Context) (bool, error) {
	text, err := d.surface.PageText(ctx)
	if err != nil {
		return false, err
	}
	if strings.Contains(text, benignNoDataPhrase) {
		d.logger.Debug("ignoring benign no-data phrase", map[string]any{"phrase": benignNoDataPhrase})
	}
	for _, phrase := range terminalNoDataPhrases {
		if strings.Contains(text, phrase) {
			d.logger.Info("no data for period", map[string]any{"phrase": phrase})
			return true, nil
		}
	}
	return false, nil
}

// SortDescending clicks the ordering header twice for a stable
// descending order before any identity is enumerated.
func (d *Discovery) SortDescending(ctx context.Context) error {
	headers, err := d.surface.LocateAll(ctx, d.sel.SummaryHeaders)
	if err != nil {
		return err
	}
	for _, h := range headers {
		text, err := h.Text(ctx)
		if err != nil {
			continue
		}
		if text == d.sel.SortCaption {
			if err := h.Click(ctx); err != nil {
				return err
			}
			return h.Click(ctx)
		}
	}
	return fmt.Errorf("%w: sort header %q", ErrElementNotFound, d.sel.SortCaption)
}

// EnumerateIdentities reads the summary links of the current page into
// (date key, expected count) identities. Enumeration stops at the first
// zero-count link: the grid is sorted descending, so everything after
// it is empty too. The second return reports whether the sentinel was
// seen.
func (d *Discovery) EnumerateIdentities(ctx context.Context) ([]types.DocumentIdentity, bool, error) {
	links, err := d.surface.LocateAll(ctx, d.sel.SummaryLinks)
	if err != nil {
		return nil, false, err
	}

	var out []types.DocumentIdentity
	for _, link := range links {
		onclick, err := link.Attr(ctx, "onclick")
		if err != nil {
			return nil, false, err
		}
		m := dateKeyPattern.FindStringSubmatch(onclick)
		if m == nil {
			d.logger.Warn("summary link without date key", map[string]any{"onclick": onclick})
			continue
		}

		text, err := link.Text(ctx)
		if err != nil {
			return nil, false, err
		}
		count, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		if count == 0 {
			return out, true, nil
		}

		out = append(out, types.DocumentIdentity{DateKey: m[1], ExpectedCount: count})
		d.metrics.IncIdentityEnumerated()
	}
	return out, false, nil
}

// OpenIdentity re-locates the identity's link by date key in the
// current rendering, clicks it, and waits for the detail marker.
func (d *Discovery) OpenIdentity(ctx context.Context, id types.DocumentIdentity) error {
	selector := fmt.Sprintf(d.sel.SummaryLinkByDate, id.DateKey)
	link, err := d.surface.Locate(ctx, selector)
	if err != nil {
		return fmt.Errorf("%w: identity %s", ErrElementNotFound, id.DateKey)
	}
	if err := link.Click(ctx); err != nil {
		return err
	}
	if err := d.surface.WaitForText(ctx, d.sel.DetailMarker, d.waitTimeout); err != nil {
		return fmt.Errorf("%w: detail for %s: %v", ErrNavigationTimeout, id.DateKey, err)
	}
	return nil
}

// ResetDetailPagination forces the detail grid back to page 1. The grid
// remembers the page of the previously opened identity.
func (d *Discovery) ResetDetailPagination(ctx context.Context) error {
	btn, err := d.surface.Locate(ctx, d.sel.DetailPageOne)
	if err != nil {
		// Single-page grid: no pager buttons at all.
		return nil
	}
	return btn.Click(ctx)
}

// ReadHeaders reads the detail grid's column headers, once per table.
func (d *Discovery) ReadHeaders(ctx context.Context) ([]string, error) {
	cells, err := d.surface.LocateAll(ctx, d.sel.DetailHeaders)
	if err != nil {
		return nil, err
	}
	headers := make([]string, 0, len(cells))
	for _, cell := range cells {
		text, err := cell.Text(ctx)
		if err != nil {
			return nil, err
		}
		headers = append(headers, strings.Join(strings.Fields(text), " "))
	}
	return headers, nil
}

// ReadRows reads the data rows of the current detail page. A row that
// cannot be read is recorded and skipped; it never aborts the page.
func (d *Discovery) ReadRows(ctx context.Context, headers []string) ([]RowDocument, error) {
	rows, err := d.surface.LocateAll(ctx, d.sel.DetailRows)
	if err != nil {
		return nil, err
	}

	out := make([]RowDocument, 0, len(rows))
	for _, row := range rows {
		doc, err := d.readRow(ctx, row, headers)
		if err != nil {
			d.metrics.IncRowError()
			d.logger.Warn("skipping unreadable row", map[string]any{"error": err.Error()})
			continue
		}
		d.metrics.IncRowSeen()
		out = append(out, doc)
	}
	return out, nil
}

func (d *Discovery) readRow(ctx context.Context, row browser.Element, headers []string) (RowDocument, error) {
	cells, err := row.All(ctx, d.sel.RowCells)
	if err != nil {
		return RowDocument{}, err
	}

	record := make(types.RowRecord, len(headers))
	for i, cell := range cells {
		if i >= len(headers) {
			break
		}
		text, err := cell.Text(ctx)
		if err != nil {
			return RowDocument{}, err
		}
		record[headers[i]] = text
	}

	doc := RowDocument{Row: record}
	links, err := row.All(ctx, d.sel.RowDocumentLink)
	if err != nil {
		return RowDocument{}, err
	}
	if len(links) == 0 {
		return doc, nil
	}

	onclick, err := links[0].Attr(ctx, "onclick")
	if err != nil {
		return RowDocument{}, err
	}
	m := tokenPattern.FindStringSubmatch(onclick)
	if m == nil {
		return doc, nil
	}
	doc.Token = m[1]
	doc.Link = links[0]
	return doc, nil
}

// NextDetailPage advances the detail pagination. It reports false when
// the next control is absent (single page) or carries the disabled
// class (last page).
func (d *Discovery) NextDetailPage(ctx context.Context) (bool, error) {
	return d.advance(ctx, d.sel.DetailNext)
}

// NextSummaryPage advances the summary pagination.
func (d *Discovery) NextSummaryPage(ctx context.Context) (bool, error) {
	return d.advance(ctx, d.sel.SummaryNext)
}

func (d *Discovery) advance(ctx context.Context, selector string) (bool, error) {
	btn, err := d.surface.Locate(ctx, selector)
	if err != nil {
		return false, nil
	}
	class, err := btn.Attr(ctx, "class")
	if err != nil {
		return false, err
	}
	if strings.Contains(class, d.sel.DisabledClass) {
		return false, nil
	}
	if err := btn.Click(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ReturnToSummary leaves the detail table for the summary grid. A
// missing control is tolerated: some renderings return on their own.
func (d *Discovery) ReturnToSummary(ctx context.Context) error {
	btn, err := d.surface.Locate(ctx, d.sel.BackToSummary)
	if err != nil {
		d.logger.Warn("summary return control missing", map[string]any{})
		return nil
	}
	return btn.Click(ctx)
}
