package validate

import (
	"github.com/austral-data/cosecha/normalize"
	"github.com/austral-data/cosecha/parse"
	"github.com/austral-data/cosecha/types"
)

// Consistency re-parses the source text independently and diffs the
// built record against it field by field. Any mismatch is one error
// entry; a false consistency equation on the record is also an error.
func Consistency(record types.Liquidation, text string) []types.FieldError {
	p := parse.New(text)
	var errs []types.FieldError

	dates := p.Dates()
	errs = diff(errs, "document", "emision", normalize.Date(dates.Emision), record.Document.Emision)
	errs = diff(errs, "document", "fecha_entrega", normalize.Date(dates.FechaEntrega), record.Document.FechaEntrega)

	cot, pac := p.Cotizante(), p.Paciente()
	errs = diff(errs, "cotizante", "rut", normalize.RUT(cot.RUT), record.Cotizante.RUT)
	errs = diff(errs, "paciente", "rut", normalize.RUT(pac.RUT), record.Paciente.RUT)

	plan := p.PlanInfo()
	errs = diff(errs, "plan", "codigo", plan.Codigo, record.Plan.Codigo)
	errs = diff(errs, "plan", "n_spm", plan.NSPM, record.Plan.NSPM)

	errs = diffSections(errs, p.Sections(), record.Detalle)
	errs = diffFilas(errs, p.SummaryRows(), record.Resumen.Filas)
	errs = diffEquations(errs, record.Resumen.Consistencia.Ecuaciones)

	return errs
}

func diffSections(errs []types.FieldError, parsed, built []types.Section) []types.FieldError {
	if len(parsed) != len(built) {
		return append(errs, types.FieldError{
			Section:  "detalle",
			Field:    "secciones",
			Error:    "section count mismatch",
			Expected: len(parsed),
			Actual:   len(built),
		})
	}
	for i, sec := range parsed {
		got := built[i]
		if len(sec.Items) != len(got.Items) {
			errs = append(errs, types.FieldError{
				Section:  sec.Seccion,
				Field:    "items",
				Error:    "item count mismatch",
				Expected: len(sec.Items),
				Actual:   len(got.Items),
			})
		}
		errs = diff(errs, sec.Seccion, "subtotal.valor_total", sec.Subtotal.ValorTotal, got.Subtotal.ValorTotal)
		errs = diff(errs, sec.Seccion, "subtotal.bonificacion", sec.Subtotal.Bonificacion, got.Subtotal.Bonificacion)
		errs = diff(errs, sec.Seccion, "subtotal.caec", sec.Subtotal.CAEC, got.Subtotal.CAEC)
		errs = diff(errs, sec.Seccion, "subtotal.seguro", sec.Subtotal.Seguro, got.Subtotal.Seguro)
		errs = diff(errs, sec.Seccion, "subtotal.copago", sec.Subtotal.Copago, got.Subtotal.Copago)
	}
	return errs
}

func diffFilas(errs []types.FieldError, parsed, built types.Filas) []types.FieldError {
	errs = diffRow(errs, "filas.bono", parsed.Bono, built.Bono)
	errs = diffRow(errs, "filas.reembolso", parsed.Reembolso, built.Reembolso)
	errs = diffRow(errs, "filas.totales", parsed.Totales, built.Totales)
	return errs
}

func diffRow(errs []types.FieldError, field string, parsed, built types.MoneyRow) []types.FieldError {
	errs = diff(errs, "resumen", field+".prestacion", parsed.Prestacion, built.Prestacion)
	errs = diff(errs, "resumen", field+".bonificado", parsed.Bonificado, built.Bonificado)
	errs = diff(errs, "resumen", field+".caec", parsed.CAEC, built.CAEC)
	errs = diff(errs, "resumen", field+".seguro", parsed.Seguro, built.Seguro)
	errs = diff(errs, "resumen", field+".copago_afiliado", parsed.CopagoAfiliado, built.CopagoAfiliado)
	return errs
}

func diffEquations(errs []types.FieldError, eq types.Ecuaciones) []types.FieldError {
	if !eq.TotalesIgualBonoMasReembolso {
		errs = equationError(errs, "ecuaciones.totales_igual_bono_mas_reembolso")
	}
	if !eq.PrestacionIgualSumaComponentes {
		errs = equationError(errs, "ecuaciones.prestacion_igual_suma_componentes")
	}
	if !eq.CopagoTeoricoIgualPresentado {
		errs = equationError(errs, "ecuaciones.copago_teorico_igual_presentado")
	}
	return errs
}

func equationError(errs []types.FieldError, field string) []types.FieldError {
	return append(errs, types.FieldError{
		Section:  "resumen",
		Field:    field,
		Error:    "consistency equation does not hold",
		Expected: true,
		Actual:   false,
	})
}

func diff[T comparable](errs []types.FieldError, section, field string, expected, actual T) []types.FieldError {
	if expected == actual {
		return errs
	}
	return append(errs, types.FieldError{
		Section:  section,
		Field:    field,
		Error:    "re-parse mismatch",
		Expected: expected,
		Actual:   actual,
	})
}
