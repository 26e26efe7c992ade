package parse

import (
	"strings"

	"github.com/austral-data/cosecha/types"
)

// Summary boundary labels. Row parsing is scoped strictly between the
// "Resumen:" label and the breakdown heading so that the "Totales"
// keyword, which recurs in the breakdown table, is never misattributed.
const (
	labelResumen  = "Resumen:"
	labelDesglose = "Total Bonificado (1)"
)

// chequePlaceholder marks an absent cheque amount in a summary row.
const chequePlaceholder = "-------"

// desgloseWindow is the fixed lookahead, in lines, for breakdown rows
// after the "Total Bonificado (1)" heading.
const desgloseWindow = 10

// SummaryRows extracts the Bono, Reembolso, and Totales money rows.
func (p *Parser) SummaryRows() types.Filas {
	start, end := -1, len(p.lines)
	for i, line := range p.lines {
		if start < 0 && strings.Contains(line, labelResumen) {
			start = i
			continue
		}
		if start >= 0 && strings.TrimSpace(line) == labelDesglose {
			end = i
			break
		}
	}

	var filas types.Filas
	if start < 0 {
		return filas
	}

	for i := start; i < end; i++ {
		line := p.lines[i]
		switch {
		case strings.HasPrefix(line, "Bono"):
			filas.Bono = parseSummaryRow(line)
		case strings.HasPrefix(line, "Reembolso"):
			filas.Reembolso = parseSummaryRow(line)
		case strings.HasPrefix(line, "Totales"):
			filas.Totales = parseSummaryRow(line)
		}
	}
	return filas
}

// parseSummaryRow reads a label followed by five money amounts and an
// optional sixth cheque amount that may be a placeholder meaning absent.
func parseSummaryRow(line string) types.MoneyRow {
	amounts := lineAmounts(line)
	if len(amounts) < 5 {
		return types.MoneyRow{}
	}

	row := types.MoneyRow{
		Prestacion:     amounts[0],
		Bonificado:     amounts[1],
		CAEC:           amounts[2],
		Seguro:         amounts[3],
		CopagoAfiliado: amounts[4],
	}
	if !strings.Contains(line, chequePlaceholder) && len(amounts) >= 6 {
		cheque := amounts[5]
		row.Cheque = &cheque
	}
	return row
}

// Desglose extracts the four categorized gasto/bonificado pairs of the
// "Total Bonificado (1)" breakdown, located by row-prefix match within a
// fixed lookahead window after the heading.
func (p *Parser) Desglose() types.Desglose {
	start := -1
	for i, line := range p.lines {
		if strings.Contains(line, labelDesglose) {
			start = i
			break
		}
	}

	var d types.Desglose
	if start < 0 {
		return d
	}

	limit := min(start+desgloseWindow, len(p.lines))
	for i := start + 1; i < limit; i++ {
		line := p.lines[i]
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "Plan Complementario"):
			d.PlanComplementario = parseGastoBonificado(line)
		case strings.HasPrefix(trimmed, "GES-CAEC"):
			d.GESCAEC = parseGastoBonificado(line)
		case strings.HasPrefix(trimmed, "GES") && !strings.Contains(line, "CAEC"):
			d.GES = parseGastoBonificado(line)
		case strings.Contains(line, "Totales"):
			d.Totales = parseGastoBonificado(line)
		}
	}
	return d
}

func parseGastoBonificado(line string) types.GastoBonificado {
	amounts := lineAmounts(line)
	if len(amounts) < 2 {
		return types.GastoBonificado{}
	}
	return types.GastoBonificado{Gasto: amounts[0], Bonificado: amounts[1]}
}
