package harvest

// Selectors binds the pipeline to the portal's DOM. The defaults were
// identified by manual exploration of the extranet; they live in one
// place so a portal redeploy only touches this file.
type Selectors struct {
	// SummaryHeaders are the header cells of the summary grid; the one
	// whose text equals SortCaption is the ordering column.
	SummaryHeaders string
	SortCaption    string

	// SummaryLinks are the per-date links of the "Cuentas A Pago"
	// column. SummaryLinkByDate re-locates one by its date key; the
	// %s placeholder receives the key.
	SummaryLinks      string
	SummaryLinkByDate string

	// SummaryNext advances the summary grid's pagination.
	SummaryNext string

	// DetailMarker is the text that signals the detail table rendered.
	DetailMarker string

	// DetailPageOne resets the detail pagination, which remembers the
	// page of the previously opened identity.
	DetailPageOne string

	DetailHeaders string
	DetailRows    string
	RowCells      string

	// RowDocumentLink is the per-row link that starts a document
	// download; its action attribute carries the token.
	RowDocumentLink string

	// DetailNext advances the detail pagination. DisabledClass marks
	// an exhausted pager button.
	DetailNext    string
	DisabledClass string

	// BackToSummary returns from the detail table to the summary grid.
	BackToSummary string
}

// DefaultSelectors returns the selector set of the production portal.
func DefaultSelectors() Selectors {
	return Selectors{
		SummaryHeaders: "#panelResumen_CallBackPanel_1_gridCuentaMedicaResumen_DXHeadersRow0 td",
		SortCaption:    "Cuentas A Pago",

		SummaryLinks:      `div[id*='panelAPago'] a[onclick*="DetalleCtas('APago'"]`,
		SummaryLinkByDate: `div[id*='panelAPago'] a[onclick*="'%s'"]`,

		SummaryNext: "#panelResumen_CallBackPanel_1_gridCuentaMedicaResumen_DXPagerBottom_PBN",

		DetailMarker:  "Fecha Recepción Isapre:",
		DetailPageOne: "a.dxp-num[onclick*='PN0']",

		DetailHeaders: "#panelCuentas_CallBackPanel_gridCuentaMedica_DXHeadersRow0 td",
		DetailRows:    "#panelCuentas_CallBackPanel_gridCuentaMedica_DXMainTable tr[id*='DXDataRow']",
		RowCells:      "td.dxgv",

		RowDocumentLink: "a[onclick*='AbrirImagen_ReporteLiquidacion']",

		DetailNext:    "#panelCuentas_CallBackPanel_gridCuentaMedica_DXPagerBottom_PBN",
		DisabledClass: "dxp-disabledButton",

		BackToSummary: "#panelCuentas_CallBackPanel_btnSearchImg",
	}
}

// No-data phrases of the results panel. The benign phrase appears even
// when data exists and is ignored; the terminal phrases end the pass
// with an empty result.
const benignNoDataPhrase = "No existe Cuentas Médicas para el periodo consultado"

var terminalNoDataPhrases = []string{
	"No se encontraron resultados",
	"Sin datos disponibles",
	"No hay información",
}
