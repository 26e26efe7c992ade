// Package extract builds canonical liquidation records from the raw text
// of downloaded documents.
package extract

import (
	"github.com/austral-data/cosecha/normalize"
	"github.com/austral-data/cosecha/parse"
	"github.com/austral-data/cosecha/types"
)

// IsapreName is the issuing institution of every document the portal serves.
const IsapreName = "CruzBlanca"

// consistencyTolerance is the allowed rounding slack, in CLP minor
// units, for the consistency equations. The source rounds per line item,
// so column sums can drift by a few pesos.
const consistencyTolerance = 10

// Build assembles the canonical record from one document's extracted text.
func Build(text string) types.Liquidation {
	p := parse.New(text)

	dates := p.Dates()
	cot := p.Cotizante()
	pac := p.Paciente()
	plan := p.PlanInfo()
	filas := p.SummaryRows()

	var sucursal *string
	if plan.SucursalOrigen != "" {
		s := plan.SucursalOrigen
		sucursal = &s
	}

	return types.Liquidation{
		Document: types.Document{
			Tipo:          types.DocumentTipo,
			Emision:       normalize.Date(dates.Emision),
			FechaEntrega:  normalize.Date(dates.FechaEntrega),
			Isapre:        IsapreName,
			Estado:        plan.Estado,
			EsLeyUrgencia: plan.EsLeyUrgencia,
			Origen:        plan.Origen,
		},
		Cotizante: types.Person{RUT: normalize.RUT(cot.RUT), Nombre: cot.Nombre},
		Paciente:  types.Person{RUT: normalize.RUT(pac.RUT), Nombre: pac.Nombre},
		Plan: types.Plan{
			Codigo:                plan.Codigo,
			NSPM:                  plan.NSPM,
			InicioHospitalizacion: normalize.Date(plan.InicioHosp),
			TieneGastosGES:        plan.TieneGES,
			TieneGastosCAEC:       plan.TieneCAEC,
			TramitaPor:            plan.TramitaPor,
			Prestador:             plan.Prestador,
			SucursalOrigen:        sucursal,
		},
		Detalle: p.Sections(),
		Resumen: types.Resumen{
			NumeroPrestaciones: p.NumeroPrestaciones(),
			Moneda:             types.MonedaCLP,
			Filas:              filas,
			Porcentajes:        percentages(filas.Totales),
			DesgloseBonificado: p.Desglose(),
			Consistencia:       consistency(filas),
		},
	}
}

// percentages derives coverage fractions over the total prestación. A
// zero prestación yields zero fractions rather than a division error.
func percentages(totales types.MoneyRow) types.Porcentajes {
	if totales.Prestacion == 0 {
		return types.Porcentajes{}
	}
	base := float64(totales.Prestacion)
	return types.Porcentajes{
		BonificadoSobrePrestacion: float64(totales.Bonificado) / base,
		CAECSobrePrestacion:       float64(totales.CAEC) / base,
		SeguroSobrePrestacion:     float64(totales.Seguro) / base,
	}
}

// consistency evaluates the three accounting equations of the summary.
func consistency(filas types.Filas) types.Consistencia {
	t := filas.Totales

	totalesOK := absDiff(t.Prestacion, filas.Bono.Prestacion+filas.Reembolso.Prestacion) <= consistencyTolerance &&
		absDiff(t.Bonificado, filas.Bono.Bonificado+filas.Reembolso.Bonificado) <= consistencyTolerance &&
		absDiff(t.CAEC, filas.Bono.CAEC+filas.Reembolso.CAEC) <= consistencyTolerance

	componentSum := t.Bonificado + t.CAEC + t.Seguro + t.CopagoAfiliado
	componentsOK := absDiff(t.Prestacion, componentSum) <= consistencyTolerance

	copagoTeorico := t.Prestacion - t.Bonificado - t.CAEC - t.Seguro
	diferencia := absDiff(copagoTeorico, t.CopagoAfiliado)

	return types.Consistencia{
		Ecuaciones: types.Ecuaciones{
			TotalesIgualBonoMasReembolso:   totalesOK,
			PrestacionIgualSumaComponentes: componentsOK,
			CopagoTeoricoIgualPresentado:   diferencia <= consistencyTolerance,
		},
		CopagoTeorico:    copagoTeorico,
		DiferenciaCopago: diferencia,
	}
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
