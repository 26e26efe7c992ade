package validate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/austral-data/cosecha/extract"
	"github.com/austral-data/cosecha/validate"
)

const documentText = `LIQUIDACION PROGRAMA MEDICO
Emisión : 21/10/2025 N° SPM : 123456
Cotizante : 11,119,228-6 PEDRO RENE ARANCIBIA CORTES Fecha Entrega: 18/03/2025
Paciente : 10,409,306-K MYRTA VIVIANA FUENZALIDA BORJA Prestador : CLINICA SAN CARLOS
DE APOQUINDO Plan: PE570-23 Suc. Origen. : SANTIAGO CENTRO
Inicio Hosp. : 15/03/2025 Estado: LIQUIDADA
Tiene Gastos GES : NO Tiene Gastos CAEC : SI Es Ley de Urgencia : NO
Origen : HOSPITALARIO Tramitado Por: PRESTADOR
Detalle Hoteleria
15 02.01.001 0 DIA CAMA DE HOSPITALIZACION 551 $ 313,937 $ 4,709,055 $ 1,612,140 34.23 % $ 3,096,915 $ 0 $ 0 CA 84570 BO 88701561 NO
SubTotal Hoteleria
$ 4,709,055 $ 1,612,140 $ 3,096,915 $ 0 $ 0
Detalle Exámenes y Procedimientos
2 03.01.045 1 PERFIL BIOQUIMICO 230 $ 12,500 $ 25,000 $ 20,000 80.00 % $ 0 $ 0 $ 5,000 CA --- BO 88701562 SI
SubTotal Exámenes y Procedimientos $ 25,000 $ 20,000 $ 0 $ 0 $ 5,000
Resumen: Número de Prestaciones: 17
Bono $ 4,709,055 $ 1,612,140 $ 3,096,915 $ 0 $ 0 -------
Reembolso $ 25,000 $ 20,000 $ 0 $ 0 $ 5,000 $ 5,000
Totales $ 4,734,055 $ 1,632,140 $ 3,096,915 $ 0 $ 5,000 -------
Total Bonificado (1)
Plan Complementario $ 4,734,055 $ 1,632,140
GES $ 0 $ 0
GES-CAEC $ 0 $ 0
Totales $ 4,734,055 $ 1,632,140
`

func TestValidate_AcceptsWellFormedRecord(t *testing.T) {
	v, err := validate.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	record := extract.Build(documentText)
	verdict, vErr := v.Validate(record, documentText)
	if vErr != nil {
		t.Fatalf("Validate() error = %v, want nil", vErr)
	}
	if !verdict.IsValid {
		t.Fatalf("Validate() rejected a well-formed record: %+v", verdict.Errors)
	}
	if verdict.TotalErrors != 0 {
		t.Errorf("TotalErrors = %d, want 0", verdict.TotalErrors)
	}
}

func TestValidate_ClassifiesFailures(t *testing.T) {
	v, err := validate.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	record := extract.Build(documentText)
	record.Document.Tipo = "OTRO_TIPO"
	record.Resumen.Filas.Totales.Prestacion = 1

	verdict, vErr := v.Validate(record, documentText)
	if vErr == nil {
		t.Fatal("Validate() error = nil for tampered record")
	}
	if !errors.Is(vErr, validate.ErrSchemaViolation) {
		t.Errorf("error %v does not wrap ErrSchemaViolation", vErr)
	}
	if !errors.Is(vErr, validate.ErrConsistencyMismatch) {
		t.Errorf("error %v does not wrap ErrConsistencyMismatch", vErr)
	}
	if verdict.IsValid {
		t.Error("IsValid = true, want false")
	}
}

func TestSchema_RejectsBadShape(t *testing.T) {
	schema, err := validate.NewSchema()
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	record := extract.Build(documentText)
	record.Document.Tipo = "OTRO_TIPO"
	record.Cotizante.RUT = "no-es-rut"
	record.Resumen.Moneda = "USD"

	errs := schema.Check(record)
	if len(errs) < 3 {
		t.Fatalf("Check() errors = %d, want at least 3: %+v", len(errs), errs)
	}
}

func TestSchema_RejectsEmptyDetalle(t *testing.T) {
	schema, err := validate.NewSchema()
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	record := extract.Build(documentText)
	record.Detalle = nil

	if errs := schema.Check(record); len(errs) == 0 {
		t.Error("Check() accepted a record without sections")
	}
}

func TestConsistency_DetectsTamperedRecord(t *testing.T) {
	record := extract.Build(documentText)
	record.Resumen.Filas.Totales.Prestacion = 1

	errs := validate.Consistency(record, documentText)
	if len(errs) == 0 {
		t.Fatal("Consistency() missed a tampered summary row")
	}

	found := false
	for _, fe := range errs {
		if fe.Section == "resumen" && fe.Field == "filas.totales.prestacion" {
			found = true
			if fe.Expected != int64(4734055) || fe.Actual != int64(1) {
				t.Errorf("mismatch entry = %+v, want expected 4734055 actual 1", fe)
			}
		}
	}
	if !found {
		t.Errorf("no entry for filas.totales.prestacion in %+v", errs)
	}
}

func TestConsistency_FalseEquationIsError(t *testing.T) {
	record := extract.Build(documentText)
	record.Resumen.Consistencia.Ecuaciones.CopagoTeoricoIgualPresentado = false

	errs := validate.Consistency(record, documentText)
	found := false
	for _, fe := range errs {
		if strings.HasPrefix(fe.Field, "ecuaciones.") {
			found = true
		}
	}
	if !found {
		t.Errorf("no equation error in %+v", errs)
	}
}

func TestConsistency_SectionCountMismatch(t *testing.T) {
	record := extract.Build(documentText)
	record.Detalle = record.Detalle[:1]

	errs := validate.Consistency(record, documentText)
	found := false
	for _, fe := range errs {
		if fe.Section == "detalle" && fe.Field == "secciones" {
			found = true
		}
	}
	if !found {
		t.Errorf("no section count mismatch in %+v", errs)
	}
}

func TestConsistency_CleanRecordNoErrors(t *testing.T) {
	record := extract.Build(documentText)
	if errs := validate.Consistency(record, documentText); len(errs) != 0 {
		t.Errorf("Consistency() on untouched record = %+v, want none", errs)
	}
}
