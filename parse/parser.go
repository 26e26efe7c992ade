// Package parse turns the raw extracted text of one liquidation document
// into intermediate structured fields.
//
// Every field family is located by anchored, line-scoped pattern matching
// rather than absolute offsets: the layout is stable relative to its labels
// but not to character positions (names and provider strings vary in
// length). Values are returned as the source prints them; normalization is
// the caller's concern, so that an independent re-parse can be compared
// against a built record through the same normalizer.
package parse

import (
	"regexp"
	"strings"
)

// Parser scans one document's full text, split into lines.
type Parser struct {
	text  string
	lines []string
}

// New creates a parser over the full extracted text of one document.
func New(text string) *Parser {
	return &Parser{
		text:  text,
		lines: strings.Split(text, "\n"),
	}
}

// Dates holds the raw header dates in dd/mm/yyyy form.
type Dates struct {
	Emision      string
	FechaEntrega string
}

// Party is one of the two persons named in the header, as printed.
type Party struct {
	RUT    string
	Nombre string
}

// PlanFields holds the raw plan and provider block of the header.
type PlanFields struct {
	Codigo         string
	NSPM           string
	InicioHosp     string
	Estado         string
	TieneGES       bool
	TieneCAEC      bool
	EsLeyUrgencia  bool
	Prestador      string
	SucursalOrigen string
	TramitaPor     string
	Origen         string
}

var (
	emisionPattern    = regexp.MustCompile(`Emisión\s*:\s*(\d{2}/\d{2}/\d{4})`)
	entregaPattern    = regexp.MustCompile(`Fecha Entrega:\s*(\d{2}/\d{2}/\d{4})`)
	cotizantePattern  = regexp.MustCompile(`(?i)Cotizante\s*:\s*([\d,.]+-[\dkK])\s+(.+)`)
	pacientePattern   = regexp.MustCompile(`(?i)Paciente\s*:\s*([\d,.]+-[\dkK])\s+(.+)`)
	planPattern       = regexp.MustCompile(`Plan:\s*(\S+)`)
	spmPattern        = regexp.MustCompile(`N°\s*SPM\s*:\s*(\d+)`)
	inicioPattern     = regexp.MustCompile(`Inicio Hosp\.\s*:\s*(\d{2}/\d{2}/\d{4})`)
	estadoPattern     = regexp.MustCompile(`Estado:\s*(\w+)`)
	gesPattern        = regexp.MustCompile(`(?i)Tiene Gastos GES\s*:\s*(SI|NO)`)
	caecPattern       = regexp.MustCompile(`(?i)Tiene Gastos CAEC\s*:\s*(SI|NO)`)
	urgenciaPattern   = regexp.MustCompile(`(?i)Es Ley de Urgencia\s*:\s*(SI|NO)`)
	prestadorPattern  = regexp.MustCompile(`(?s)Prestador\s*:\s*(.+?)(?:Plan:|Suc\. Origen)`)
	sucursalPattern   = regexp.MustCompile(`Suc\. Origen\.\s*:\s*([^\n]+)`)
	tramitadoPattern  = regexp.MustCompile(`Tramitado Por:\s*(\w+)`)
	origenPattern     = regexp.MustCompile(`Origen\s*:\s*([^\n]+)`)
	prestacionesCount = regexp.MustCompile(`Número de Prestaciones:\s*(\d+)`)
)

// Dates extracts the emission and delivery dates from the header.
func (p *Parser) Dates() Dates {
	return Dates{
		Emision:      firstGroup(emisionPattern, p.text),
		FechaEntrega: firstGroup(entregaPattern, p.text),
	}
}

// Cotizante extracts the contributor's RUT and name. The name span is
// terminated by the "Fecha" label that follows it on the same line.
func (p *Parser) Cotizante() Party {
	return p.party(cotizantePattern, "Fecha")
}

// Paciente extracts the patient's RUT and name, terminated by the
// "Prestador" label.
func (p *Parser) Paciente() Party {
	return p.party(pacientePattern, "Prestador")
}

func (p *Parser) party(pattern *regexp.Regexp, terminator string) Party {
	for _, line := range p.lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[2]
		if idx := strings.Index(name, terminator); idx >= 0 {
			name = name[:idx]
		}
		return Party{RUT: strings.TrimSpace(m[1]), Nombre: strings.TrimSpace(name)}
	}
	return Party{}
}

// PlanInfo extracts the plan and provider block.
func (p *Parser) PlanInfo() PlanFields {
	f := PlanFields{
		Codigo:        firstGroup(planPattern, p.text),
		NSPM:          firstGroup(spmPattern, p.text),
		InicioHosp:    firstGroup(inicioPattern, p.text),
		Estado:        firstGroup(estadoPattern, p.text),
		TieneGES:      strings.EqualFold(firstGroup(gesPattern, p.text), "SI"),
		TieneCAEC:     strings.EqualFold(firstGroup(caecPattern, p.text), "SI"),
		EsLeyUrgencia: strings.EqualFold(firstGroup(urgenciaPattern, p.text), "SI"),
		TramitaPor:    firstGroup(tramitadoPattern, p.text),
	}

	f.Prestador = p.prestador()
	f.SucursalOrigen = strings.TrimSpace(firstGroup(sucursalPattern, p.text))

	if origen := firstGroup(origenPattern, p.text); origen != "" {
		if idx := strings.Index(origen, "Tramitado"); idx >= 0 {
			origen = origen[:idx]
		}
		f.Origen = strings.TrimSpace(origen)
	}

	return f
}

// prestador captures the provider name, which may span multiple lines up
// to the next labeled field ("Plan:" or "Suc. Origen").
func (p *Parser) prestador() string {
	start := strings.Index(p.text, "Prestador")
	if start < 0 {
		return ""
	}
	window := p.text[start:]
	if len(window) > 200 {
		window = window[:200]
	}
	m := prestadorPattern.FindStringSubmatch(window)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), " ")
}

// NumeroPrestaciones extracts the declared line-item count of the summary.
func (p *Parser) NumeroPrestaciones() int {
	return atoiSafe(firstGroup(prestacionesCount, p.text))
}

func firstGroup(pattern *regexp.Regexp, s string) string {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
