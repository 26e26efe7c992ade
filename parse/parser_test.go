package parse

import (
	"testing"

	"github.com/austral-data/cosecha/types"
)

// liquidationText is a representative extracted document text covering
// both section tables, the summary rows, and the bonificado breakdown.
const liquidationText = `LIQUIDACION PROGRAMA MEDICO
Emisión : 21/10/2025 N° SPM : 123456
Cotizante : 11,119,228-6 PEDRO RENE ARANCIBIA CORTES Fecha Entrega: 18/03/2025
Paciente : 10,409,306-K MYRTA VIVIANA FUENZALIDA BORJA Prestador : CLINICA SAN CARLOS
DE APOQUINDO Plan: PE570-23 Suc. Origen. : SANTIAGO CENTRO
Inicio Hosp. : 15/03/2025 Estado: LIQUIDADA
Tiene Gastos GES : NO Tiene Gastos CAEC : SI Es Ley de Urgencia : NO
Origen : HOSPITALARIO Tramitado Por: PRESTADOR
Detalle Hoteleria
Cant. Código Item Descripción G.C. V.Unitario V.Total Bonificación % Plan CAEC Seguro Copago TC Folio GC TD Folio BR Min.Fonasa
15 02.01.001 0 DIA CAMA DE HOSPITALIZACION 551 $ 313,937 $ 4,709,055 $ 1,612,140 34.23 % $ 3,096,915 $ 0 $ 0 CA 84570 BO 88701561 NO
SubTotal Hoteleria
$ 4,709,055 $ 1,612,140 $ 3,096,915 $ 0 $ 0
Detalle Exámenes y Procedimientos
2 03.01.045 1 PERFIL BIOQUIMICO 230 $ 12,500 $ 25,000 $ 20,000 80.00 % $ 0 $ 0 $ 5,000 CA --- BO 88701562 SI
SubTotal Exámenes y Procedimientos $ 25,000 $ 20,000 $ 0 $ 0 $ 5,000
Resumen: Número de Prestaciones: 17
Prestación Bonificado CAEC Seguro Copago Afiliado Cheque
Bono $ 4,709,055 $ 1,612,140 $ 3,096,915 $ 0 $ 0 -------
Reembolso $ 25,000 $ 20,000 $ 0 $ 0 $ 5,000 $ 5,000
Totales $ 4,734,055 $ 1,632,140 $ 3,096,915 $ 0 $ 5,000 -------
Total Bonificado (1)
Gasto Bonificado
Plan Complementario $ 4,734,055 $ 1,632,140
GES $ 0 $ 0
GES-CAEC $ 0 $ 0
Totales $ 4,734,055 $ 1,632,140
`

func TestParser_Dates(t *testing.T) {
	p := New(liquidationText)

	d := p.Dates()
	if d.Emision != "21/10/2025" {
		t.Errorf("Emision = %q, want 21/10/2025", d.Emision)
	}
	if d.FechaEntrega != "18/03/2025" {
		t.Errorf("FechaEntrega = %q, want 18/03/2025", d.FechaEntrega)
	}
}

func TestParser_Parties(t *testing.T) {
	p := New(liquidationText)

	cot := p.Cotizante()
	if cot.RUT != "11,119,228-6" {
		t.Errorf("Cotizante.RUT = %q, want 11,119,228-6", cot.RUT)
	}
	if cot.Nombre != "PEDRO RENE ARANCIBIA CORTES" {
		t.Errorf("Cotizante.Nombre = %q, want PEDRO RENE ARANCIBIA CORTES", cot.Nombre)
	}

	pac := p.Paciente()
	if pac.RUT != "10,409,306-K" {
		t.Errorf("Paciente.RUT = %q, want 10,409,306-K", pac.RUT)
	}
	if pac.Nombre != "MYRTA VIVIANA FUENZALIDA BORJA" {
		t.Errorf("Paciente.Nombre = %q, want MYRTA VIVIANA FUENZALIDA BORJA", pac.Nombre)
	}
}

func TestParser_PlanInfo(t *testing.T) {
	p := New(liquidationText)

	f := p.PlanInfo()
	if f.Codigo != "PE570-23" {
		t.Errorf("Codigo = %q, want PE570-23", f.Codigo)
	}
	if f.NSPM != "123456" {
		t.Errorf("NSPM = %q, want 123456", f.NSPM)
	}
	if f.InicioHosp != "15/03/2025" {
		t.Errorf("InicioHosp = %q, want 15/03/2025", f.InicioHosp)
	}
	if f.Estado != "LIQUIDADA" {
		t.Errorf("Estado = %q, want LIQUIDADA", f.Estado)
	}
	if f.TieneGES {
		t.Error("TieneGES = true, want false")
	}
	if !f.TieneCAEC {
		t.Error("TieneCAEC = false, want true")
	}
	if f.EsLeyUrgencia {
		t.Error("EsLeyUrgencia = true, want false")
	}
	if f.Prestador != "CLINICA SAN CARLOS DE APOQUINDO" {
		t.Errorf("Prestador = %q, want CLINICA SAN CARLOS DE APOQUINDO", f.Prestador)
	}
	if f.SucursalOrigen != "SANTIAGO CENTRO" {
		t.Errorf("SucursalOrigen = %q, want SANTIAGO CENTRO", f.SucursalOrigen)
	}
	if f.TramitaPor != "PRESTADOR" {
		t.Errorf("TramitaPor = %q, want PRESTADOR", f.TramitaPor)
	}
	if f.Origen != "HOSPITALARIO" {
		t.Errorf("Origen = %q, want HOSPITALARIO", f.Origen)
	}
}

func TestParser_Sections(t *testing.T) {
	p := New(liquidationText)

	sections := p.Sections()
	if len(sections) != 2 {
		t.Fatalf("len(Sections()) = %d, want 2", len(sections))
	}

	hot := sections[0]
	if hot.Seccion != types.SectionHoteleria {
		t.Errorf("sections[0].Seccion = %q, want %q", hot.Seccion, types.SectionHoteleria)
	}
	if len(hot.Items) != 1 {
		t.Fatalf("hoteleria items = %d, want 1", len(hot.Items))
	}

	item := hot.Items[0]
	if item.Cantidad != 15 {
		t.Errorf("Cantidad = %d, want 15", item.Cantidad)
	}
	if item.Codigo != "02.01.001" {
		t.Errorf("Codigo = %q, want 02.01.001", item.Codigo)
	}
	if item.Descripcion != "DIA CAMA DE HOSPITALIZACION" {
		t.Errorf("Descripcion = %q, want DIA CAMA DE HOSPITALIZACION", item.Descripcion)
	}
	if item.GrupoCobertura != 551 {
		t.Errorf("GrupoCobertura = %d, want 551", item.GrupoCobertura)
	}
	if item.ValorUnitario != 313937 {
		t.Errorf("ValorUnitario = %d, want 313937", item.ValorUnitario)
	}
	if item.ValorTotal != 4709055 {
		t.Errorf("ValorTotal = %d, want 4709055", item.ValorTotal)
	}
	if item.Bonificacion != 1612140 {
		t.Errorf("Bonificacion = %d, want 1612140", item.Bonificacion)
	}
	if item.PorcentajePlan != 0.3423 {
		t.Errorf("PorcentajePlan = %v, want 0.3423", item.PorcentajePlan)
	}
	if item.CAEC != 3096915 {
		t.Errorf("CAEC = %d, want 3096915", item.CAEC)
	}
	if item.TC != "CA" || item.FolioGC != "84570" || item.TD != "BO" || item.FolioBR != "88701561" {
		t.Errorf("codes = %q %q %q %q, want CA 84570 BO 88701561",
			item.TC, item.FolioGC, item.TD, item.FolioBR)
	}
	if item.MinFonasa {
		t.Error("MinFonasa = true, want false")
	}

	// Subtotal amounts on the line after the label.
	if hot.Subtotal.ValorTotal != 4709055 || hot.Subtotal.CAEC != 3096915 {
		t.Errorf("hoteleria subtotal = %+v, want valor_total 4709055 caec 3096915", hot.Subtotal)
	}

	exa := sections[1]
	if exa.Seccion != types.SectionExamenes {
		t.Errorf("sections[1].Seccion = %q, want %q", exa.Seccion, types.SectionExamenes)
	}
	if len(exa.Items) != 1 {
		t.Fatalf("examenes items = %d, want 1", len(exa.Items))
	}
	if exa.Items[0].FolioGC != "---" {
		t.Errorf("FolioGC = %q, want ---", exa.Items[0].FolioGC)
	}
	if !exa.Items[0].MinFonasa {
		t.Error("MinFonasa = false, want true")
	}

	// Subtotal amounts on the label line itself.
	if exa.Subtotal.ValorTotal != 25000 || exa.Subtotal.Copago != 5000 {
		t.Errorf("examenes subtotal = %+v, want valor_total 25000 copago 5000", exa.Subtotal)
	}
}

func TestParser_SummaryRows(t *testing.T) {
	p := New(liquidationText)

	filas := p.SummaryRows()

	if filas.Bono.Prestacion != 4709055 || filas.Bono.Bonificado != 1612140 || filas.Bono.CAEC != 3096915 {
		t.Errorf("Bono = %+v, want 4709055/1612140/3096915", filas.Bono)
	}
	if filas.Bono.Cheque != nil {
		t.Errorf("Bono.Cheque = %v, want nil for placeholder", *filas.Bono.Cheque)
	}

	if filas.Reembolso.Prestacion != 25000 || filas.Reembolso.CopagoAfiliado != 5000 {
		t.Errorf("Reembolso = %+v, want prestacion 25000 copago 5000", filas.Reembolso)
	}
	if filas.Reembolso.Cheque == nil || *filas.Reembolso.Cheque != 5000 {
		t.Errorf("Reembolso.Cheque = %v, want 5000", filas.Reembolso.Cheque)
	}

	if filas.Totales.Prestacion != 4734055 || filas.Totales.Bonificado != 1632140 {
		t.Errorf("Totales = %+v, want prestacion 4734055 bonificado 1632140", filas.Totales)
	}
	if filas.Totales.CopagoAfiliado != 5000 {
		t.Errorf("Totales.CopagoAfiliado = %d, want 5000", filas.Totales.CopagoAfiliado)
	}
}

func TestParser_Desglose(t *testing.T) {
	p := New(liquidationText)

	d := p.Desglose()
	if d.PlanComplementario.Gasto != 4734055 || d.PlanComplementario.Bonificado != 1632140 {
		t.Errorf("PlanComplementario = %+v, want 4734055/1632140", d.PlanComplementario)
	}
	if d.GES.Gasto != 0 || d.GES.Bonificado != 0 {
		t.Errorf("GES = %+v, want zero", d.GES)
	}
	if d.GESCAEC.Gasto != 0 || d.GESCAEC.Bonificado != 0 {
		t.Errorf("GESCAEC = %+v, want zero", d.GESCAEC)
	}
	if d.Totales.Gasto != 4734055 || d.Totales.Bonificado != 1632140 {
		t.Errorf("Totales = %+v, want 4734055/1632140", d.Totales)
	}
}

func TestParser_NumeroPrestaciones(t *testing.T) {
	if got := New(liquidationText).NumeroPrestaciones(); got != 17 {
		t.Errorf("NumeroPrestaciones() = %d, want 17", got)
	}
}

func TestParser_MissingFields(t *testing.T) {
	p := New("texto sin estructura reconocible")

	if d := p.Dates(); d.Emision != "" || d.FechaEntrega != "" {
		t.Errorf("Dates() on empty doc = %+v, want zero", d)
	}
	if cot := p.Cotizante(); cot.RUT != "" {
		t.Errorf("Cotizante().RUT = %q, want empty", cot.RUT)
	}
	if got := p.Sections(); got != nil {
		t.Errorf("Sections() on empty doc = %v, want nil", got)
	}
	if filas := p.SummaryRows(); filas.Totales.Prestacion != 0 {
		t.Errorf("SummaryRows() on empty doc = %+v, want zero", filas)
	}
}
