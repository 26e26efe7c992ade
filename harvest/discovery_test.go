package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/austral-data/cosecha/browser"
	"github.com/austral-data/cosecha/log"
	"github.com/austral-data/cosecha/metrics"
	"github.com/austral-data/cosecha/types"
)

func testLogger() *log.Logger {
	job := &types.JobMeta{JobID: "job-test", Period: "2025-03", Attempt: 1}
	return log.NewLogger(job).WithOutput(io.Discard)
}

func testDiscovery(stub *browser.Stub) *Discovery {
	return NewDiscovery(Config{
		Surface:   stub,
		Selectors: DefaultSelectors(),
		Logger:    testLogger(),
		Metrics:   metrics.NewCollector("job-test", "2025-03"),
	})
}

// summaryLink scripts one "Cuentas A Pago" cell link: the shown count as
// text and the date key inside the click action.
func summaryLink(date, count string) *browser.StubElement {
	return &browser.StubElement{
		TextValue: count,
		Attrs: map[string]string{
			"onclick": fmt.Sprintf("javascript:DetalleCtas('APago', '%s', 'gridCuentaMedicaResumen');", date),
		},
	}
}

func TestEnumerateIdentities_StopsAtZeroCount(t *testing.T) {
	sel := DefaultSelectors()
	stub := browser.NewStub(&browser.Rendering{
		Elements: map[string][]*browser.StubElement{
			sel.SummaryLinks: {
				summaryLink("18/03/2025", "3"),
				summaryLink("17/03/2025", "1"),
				summaryLink("16/03/2025", "0"),
				// Descending order means anything after the first zero is
				// empty too; a stale non-zero there must not be visited.
				summaryLink("15/03/2025", "5"),
			},
		},
	})
	d := testDiscovery(stub)

	ids, sentinel, err := d.EnumerateIdentities(context.Background())
	if err != nil {
		t.Fatalf("EnumerateIdentities() error = %v", err)
	}
	if !sentinel {
		t.Error("sentinel = false, want true")
	}
	want := []types.DocumentIdentity{
		{DateKey: "18/03/2025", ExpectedCount: 3},
		{DateKey: "17/03/2025", ExpectedCount: 1},
	}
	if len(ids) != len(want) {
		t.Fatalf("len(ids) = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %+v, want %+v", i, ids[i], want[i])
		}
	}
}

func TestEnumerateIdentities_NoSentinel(t *testing.T) {
	sel := DefaultSelectors()
	stub := browser.NewStub(&browser.Rendering{
		Elements: map[string][]*browser.StubElement{
			sel.SummaryLinks: {
				summaryLink("18/03/2025", "2"),
				summaryLink("17/03/2025", "4"),
			},
		},
	})
	d := testDiscovery(stub)

	ids, sentinel, err := d.EnumerateIdentities(context.Background())
	if err != nil {
		t.Fatalf("EnumerateIdentities() error = %v", err)
	}
	if sentinel {
		t.Error("sentinel = true, want false")
	}
	if len(ids) != 2 {
		t.Errorf("len(ids) = %d, want 2", len(ids))
	}
}

func TestEnumerateIdentities_SkipsMalformedLinks(t *testing.T) {
	sel := DefaultSelectors()
	stub := browser.NewStub(&browser.Rendering{
		Elements: map[string][]*browser.StubElement{
			sel.SummaryLinks: {
				{TextValue: "2", Attrs: map[string]string{"onclick": "somethingElse();"}},
				{TextValue: "Ver detalle", Attrs: map[string]string{
					"onclick": "DetalleCtas('APago', '17/03/2025');"}},
				summaryLink("16/03/2025", "1"),
			},
		},
	})
	d := testDiscovery(stub)

	ids, _, err := d.EnumerateIdentities(context.Background())
	if err != nil {
		t.Fatalf("EnumerateIdentities() error = %v", err)
	}
	if len(ids) != 1 || ids[0].DateKey != "16/03/2025" {
		t.Errorf("ids = %+v, want only the well-formed 16/03/2025 link", ids)
	}
}

func TestCheckNoData(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"terminal phrase", "Resultados\nNo se encontraron resultados", true},
		{"another terminal phrase", "Sin datos disponibles", true},
		{"benign phrase ignored", "No existe Cuentas Médicas para el periodo consultado\nResumen", false},
		{"data present", "Resumen de Cuentas Médicas", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := browser.NewStub(&browser.Rendering{Text: tt.text})
			d := testDiscovery(stub)
			got, err := d.CheckNoData(context.Background())
			if err != nil {
				t.Fatalf("CheckNoData() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckNoData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortDescending_ClicksHeaderTwice(t *testing.T) {
	sel := DefaultSelectors()
	other := &browser.StubElement{TextValue: "Fecha"}
	target := &browser.StubElement{TextValue: "Cuentas A Pago"}
	stub := browser.NewStub(&browser.Rendering{
		Elements: map[string][]*browser.StubElement{
			sel.SummaryHeaders: {other, target},
		},
	})
	d := testDiscovery(stub)

	if err := d.SortDescending(context.Background()); err != nil {
		t.Fatalf("SortDescending() error = %v", err)
	}
	if target.Clicks != 2 {
		t.Errorf("sort header clicks = %d, want 2", target.Clicks)
	}
	if other.Clicks != 0 {
		t.Errorf("other header clicks = %d, want 0", other.Clicks)
	}
}

func TestSortDescending_MissingHeader(t *testing.T) {
	sel := DefaultSelectors()
	stub := browser.NewStub(&browser.Rendering{
		Elements: map[string][]*browser.StubElement{
			sel.SummaryHeaders: {{TextValue: "Fecha"}},
		},
	})
	d := testDiscovery(stub)

	err := d.SortDescending(context.Background())
	if !errors.Is(err, ErrElementNotFound) {
		t.Errorf("SortDescending() error = %v, want ErrElementNotFound", err)
	}
}

func TestReadRows_MapsCellsAndToken(t *testing.T) {
	sel := DefaultSelectors()
	link := &browser.StubElement{
		Attrs: map[string]string{"onclick": "AbrirImagen_ReporteLiquidacion('TOK12345XYZ');"},
	}
	withDoc := &browser.StubElement{Children: map[string][]*browser.StubElement{
		sel.RowCells:        {{TextValue: " 1001 "}, {TextValue: "18/03/2025"}},
		sel.RowDocumentLink: {link},
	}}
	withoutDoc := &browser.StubElement{Children: map[string][]*browser.StubElement{
		sel.RowCells: {{TextValue: "1002"}, {TextValue: "18/03/2025"}},
	}}
	stub := browser.NewStub(&browser.Rendering{
		Elements: map[string][]*browser.StubElement{
			sel.DetailRows: {withDoc, withoutDoc},
		},
	})
	d := testDiscovery(stub)

	rows, err := d.ReadRows(context.Background(), []string{"Nro. Cuenta", "Fecha"})
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if got := rows[0].Row.AccountNumber(); got != "1001" {
		t.Errorf("rows[0] account = %q, want %q", got, "1001")
	}
	if rows[0].Token != "TOK12345XYZ" {
		t.Errorf("rows[0].Token = %q, want %q", rows[0].Token, "TOK12345XYZ")
	}
	if rows[0].Link == nil {
		t.Error("rows[0].Link = nil, want the document link")
	}
	if rows[1].Token != "" || rows[1].Link != nil {
		t.Errorf("rows[1] should carry no document reference, got token %q", rows[1].Token)
	}
}

func TestNextDetailPage(t *testing.T) {
	sel := DefaultSelectors()

	t.Run("absent pager", func(t *testing.T) {
		stub := browser.NewStub(&browser.Rendering{Elements: map[string][]*browser.StubElement{}})
		d := testDiscovery(stub)
		more, err := d.NextDetailPage(context.Background())
		if err != nil || more {
			t.Errorf("NextDetailPage() = (%v, %v), want (false, nil)", more, err)
		}
	})

	t.Run("disabled pager", func(t *testing.T) {
		btn := &browser.StubElement{Attrs: map[string]string{"class": "dxp-button dxp-disabledButton"}}
		stub := browser.NewStub(&browser.Rendering{Elements: map[string][]*browser.StubElement{
			sel.DetailNext: {btn},
		}})
		d := testDiscovery(stub)
		more, err := d.NextDetailPage(context.Background())
		if err != nil || more {
			t.Errorf("NextDetailPage() = (%v, %v), want (false, nil)", more, err)
		}
		if btn.Clicks != 0 {
			t.Errorf("disabled pager clicks = %d, want 0", btn.Clicks)
		}
	})

	t.Run("active pager", func(t *testing.T) {
		btn := &browser.StubElement{Attrs: map[string]string{"class": "dxp-button"}}
		stub := browser.NewStub(&browser.Rendering{Elements: map[string][]*browser.StubElement{
			sel.DetailNext: {btn},
		}})
		d := testDiscovery(stub)
		more, err := d.NextDetailPage(context.Background())
		if err != nil || !more {
			t.Errorf("NextDetailPage() = (%v, %v), want (true, nil)", more, err)
		}
		if btn.Clicks != 1 {
			t.Errorf("pager clicks = %d, want 1", btn.Clicks)
		}
	})
}

func TestOpenIdentity_MarkerTimeout(t *testing.T) {
	sel := DefaultSelectors()
	id := types.DocumentIdentity{DateKey: "18/03/2025", ExpectedCount: 2}
	// The link click does not swap to a rendering with the marker.
	stub := browser.NewStub(&browser.Rendering{
		Text: "Resumen",
		Elements: map[string][]*browser.StubElement{
			fmt.Sprintf(sel.SummaryLinkByDate, id.DateKey): {summaryLink(id.DateKey, "2")},
		},
	})
	d := testDiscovery(stub)

	err := d.OpenIdentity(context.Background(), id)
	if !errors.Is(err, ErrNavigationTimeout) {
		t.Errorf("OpenIdentity() error = %v, want ErrNavigationTimeout", err)
	}
}

func TestOpenIdentity_MissingLink(t *testing.T) {
	stub := browser.NewStub(&browser.Rendering{Elements: map[string][]*browser.StubElement{}})
	d := testDiscovery(stub)

	err := d.OpenIdentity(context.Background(), types.DocumentIdentity{DateKey: "18/03/2025"})
	if !errors.Is(err, ErrElementNotFound) {
		t.Errorf("OpenIdentity() error = %v, want ErrElementNotFound", err)
	}
}
