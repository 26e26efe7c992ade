package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/austral-data/cosecha/normalize"
	"github.com/austral-data/cosecha/types"
)

// Section boundary labels as printed in the source documents.
const (
	labelHoteleria        = "Detalle Hoteleria"
	labelHoteleriaEnd     = "SubTotal Hoteleria"
	labelExamenes         = "Detalle Exámenes"
	labelExamenesEnd      = "SubTotal Exámenes"
)

// detailLinePattern is the fixed-arity row pattern of a section table:
// quantity, code, item, description, coverage group, unit value, total
// value, reimbursement, plan percentage, caec, seguro, copago, two
// classification codes interleaved with two reference folios, and a
// trailing SI/NO flag. folio_gc may be a number or a dash placeholder.
var detailLinePattern = regexp.MustCompile(
	`^(\d+)\s+([\d.]+)\s+(\d+)\s+(.+?)\s+(\d+)\s+` +
		`\$\s*([\d,]+)\s+\$\s*([\d,]+)\s+\$\s*([\d,]+)\s+` +
		`([\d.]+)\s*%\s+` +
		`\$\s*([\d,]+)\s+\$\s*([\d,]+)\s+\$\s*([\d,]+)\s+` +
		`(\w+)\s+([\d-]+)\s+(\w+)\s+(\d+)\s+(SI|NO)$`)

// amountPattern finds currency tokens within a subtotal or summary line.
var amountPattern = regexp.MustCompile(`\$\s*([\d,]+)`)

// Sections extracts the line-item tables present in the document, in
// source order. A document carries one or both of the known sections.
func (p *Parser) Sections() []types.Section {
	var out []types.Section
	if s := p.section(types.SectionHoteleria, labelHoteleria, labelHoteleriaEnd); s != nil {
		out = append(out, *s)
	}
	if s := p.section(types.SectionExamenes, labelExamenes, labelExamenesEnd); s != nil {
		out = append(out, *s)
	}
	return out
}

// section extracts one table bounded by its start label and the
// "SubTotal <section>" end label. Lines between the labels that do not
// match the row pattern (column headers, wrapping artifacts) are skipped.
func (p *Parser) section(name, startLabel, endLabel string) *types.Section {
	start, end := -1, -1
	for i, line := range p.lines {
		if start < 0 && strings.Contains(line, startLabel) {
			start = i
			continue
		}
		if start >= 0 && strings.HasPrefix(strings.TrimSpace(line), endLabel) {
			end = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	if end < 0 {
		end = len(p.lines)
	}

	var items []types.LineItem
	for i := start + 1; i < end; i++ {
		if item, ok := parseDetailLine(strings.TrimSpace(p.lines[i])); ok {
			items = append(items, item)
		}
	}

	return &types.Section{
		Seccion:  name,
		Items:    items,
		Subtotal: p.subtotalAt(end),
	}
}

// subtotalAt reads the five money amounts of a subtotal row. The amounts
// sit on the label line itself or on the line that follows it.
func (p *Parser) subtotalAt(labelIdx int) types.Subtotal {
	if labelIdx < 0 || labelIdx >= len(p.lines) {
		return types.Subtotal{}
	}
	line := p.lines[labelIdx]
	if !strings.Contains(line, "$") && labelIdx+1 < len(p.lines) {
		line = p.lines[labelIdx+1]
	}
	amounts := lineAmounts(line)
	if len(amounts) < 5 {
		return types.Subtotal{}
	}
	return types.Subtotal{
		ValorTotal:   amounts[0],
		Bonificacion: amounts[1],
		CAEC:         amounts[2],
		Seguro:       amounts[3],
		Copago:       amounts[4],
	}
}

func parseDetailLine(line string) (types.LineItem, bool) {
	m := detailLinePattern.FindStringSubmatch(line)
	if m == nil {
		return types.LineItem{}, false
	}

	pct, err := strconv.ParseFloat(m[9], 64)
	if err != nil {
		return types.LineItem{}, false
	}

	return types.LineItem{
		Cantidad:       atoiSafe(m[1]),
		Codigo:         m[2],
		Item:           m[3],
		Descripcion:    strings.TrimSpace(m[4]),
		GrupoCobertura: atoiSafe(m[5]),
		ValorUnitario:  normalize.Amount(m[6]),
		ValorTotal:     normalize.Amount(m[7]),
		Bonificacion:   normalize.Amount(m[8]),
		PorcentajePlan: pct / 100.0,
		CAEC:           normalize.Amount(m[10]),
		Seguro:         normalize.Amount(m[11]),
		Copago:         normalize.Amount(m[12]),
		TC:             m[13],
		FolioGC:        m[14],
		TD:             m[15],
		FolioBR:        m[16],
		MinFonasa:      strings.EqualFold(m[17], "SI"),
	}, true
}

func lineAmounts(line string) []int64 {
	matches := amountPattern.FindAllStringSubmatch(line, -1)
	out := make([]int64, 0, len(matches))
	for _, m := range matches {
		out = append(out, normalize.Amount(m[1]))
	}
	return out
}
