package types

// DocumentTipo is the fixed document type discriminator of the record
// schema. Changing it is a breaking change for downstream consumers.
const DocumentTipo = "LIQUIDACION_PROGRAMA_MEDICO"

// MonedaCLP is the only currency the source portal emits.
const MonedaCLP = "CLP"

// Section names as they appear in the source documents.
const (
	SectionHoteleria = "Hoteleria"
	SectionExamenes  = "ExamenesYProcedimientos"
)

// Liquidation is the canonical record built from one liquidation document.
// Its JSON shape is a versioned wire contract consumed by the reporting and
// upload stages; required fields must not change.
//
// Monetary fields are non-negative CLP minor-unit integers; percentages are
// fractions in [0, 1]; dates are ISO-8601 calendar dates.
type Liquidation struct {
	Document  Document  `json:"document"`
	Cotizante Person    `json:"cotizante"`
	Paciente  Person    `json:"paciente"`
	Plan      Plan      `json:"plan"`
	Detalle   []Section `json:"detalle"`
	Resumen   Resumen   `json:"resumen"`
}

// Document holds document-level metadata.
type Document struct {
	Tipo          string  `json:"tipo"`
	Emision       string  `json:"emision"`
	FechaEntrega  string  `json:"fecha_entrega"`
	Isapre        string  `json:"isapre"`
	Estado        string  `json:"estado"`
	EsLeyUrgencia bool    `json:"es_ley_urgencia"`
	Origen        string  `json:"origen"`
	Noveno        *string `json:"noveno"`
}

// Person is one of the two parties named on the document.
type Person struct {
	RUT    string `json:"rut"`
	Nombre string `json:"nombre"`
}

// Plan holds health-plan and provider fields from the document header.
type Plan struct {
	Codigo                string  `json:"codigo"`
	NSPM                  string  `json:"n_spm"`
	InicioHospitalizacion string  `json:"inicio_hospitalizacion"`
	TieneGastosGES        bool    `json:"tiene_gastos_ges"`
	TieneGastosCAEC       bool    `json:"tiene_gastos_caec"`
	TramitaPor            string  `json:"tramita_por"`
	Prestador             string  `json:"prestador"`
	SucursalOrigen        *string `json:"sucursal_origen"`
}

// Section is one line-item table ("Hoteleria" or "Examenes y
// Procedimientos") with its subtotal row.
type Section struct {
	Seccion  string     `json:"seccion"`
	Items    []LineItem `json:"items"`
	Subtotal Subtotal   `json:"subtotal"`
}

// LineItem is one parsed data row of a section table.
type LineItem struct {
	Cantidad       int     `json:"cantidad"`
	Codigo         string  `json:"codigo"`
	Item           string  `json:"item"`
	Descripcion    string  `json:"descripcion"`
	GrupoCobertura int     `json:"grupo_cobertura"`
	ValorUnitario  int64   `json:"valor_unitario"`
	ValorTotal     int64   `json:"valor_total"`
	Bonificacion   int64   `json:"bonificacion"`
	PorcentajePlan float64 `json:"porcentaje_plan"`
	CAEC           int64   `json:"caec"`
	Seguro         int64   `json:"seguro"`
	Copago         int64   `json:"copago"`
	TC             string  `json:"tc"`
	FolioGC        string  `json:"folio_gc"`
	TD             string  `json:"td"`
	FolioBR        string  `json:"folio_br"`
	MinFonasa      bool    `json:"min_fonasa"`
}

// Subtotal is the money footer of one section table.
type Subtotal struct {
	ValorTotal   int64 `json:"valor_total"`
	Bonificacion int64 `json:"bonificacion"`
	CAEC         int64 `json:"caec"`
	Seguro       int64 `json:"seguro"`
	Copago       int64 `json:"copago"`
}

// Resumen is the document summary block.
type Resumen struct {
	NumeroPrestaciones int          `json:"numero_prestaciones"`
	Moneda             string       `json:"moneda"`
	Filas              Filas        `json:"filas"`
	Porcentajes        Porcentajes  `json:"porcentajes"`
	DesgloseBonificado Desglose     `json:"desglose_bonificado"`
	Consistencia       Consistencia `json:"consistencia"`
}

// Filas are the three money rows of the summary.
type Filas struct {
	Bono      MoneyRow `json:"bono"`
	Reembolso MoneyRow `json:"reembolso"`
	Totales   MoneyRow `json:"totales"`
}

// MoneyRow is one summary row: five money amounts and an optional cheque.
// A nil Cheque mirrors the "-------" placeholder in the source.
type MoneyRow struct {
	Prestacion     int64  `json:"prestacion"`
	Bonificado     int64  `json:"bonificado"`
	CAEC           int64  `json:"caec"`
	Seguro         int64  `json:"seguro"`
	CopagoAfiliado int64  `json:"copago_afiliado"`
	Cheque         *int64 `json:"cheque"`
}

// Porcentajes are derived coverage fractions over the total prestación.
type Porcentajes struct {
	BonificadoSobrePrestacion float64 `json:"bonificado_sobre_prestacion"`
	CAECSobrePrestacion       float64 `json:"caec_sobre_prestacion"`
	SeguroSobrePrestacion     float64 `json:"seguro_sobre_prestacion"`
}

// Desglose is the "Total Bonificado (1)" breakdown table.
type Desglose struct {
	PlanComplementario GastoBonificado `json:"plan_complementario"`
	GES                GastoBonificado `json:"ges"`
	GESCAEC            GastoBonificado `json:"ges_caec"`
	Totales            GastoBonificado `json:"totales"`
}

// GastoBonificado is one gasto/bonificado pair of the breakdown.
type GastoBonificado struct {
	Gasto      int64 `json:"gasto"`
	Bonificado int64 `json:"bonificado"`
}

// Consistencia records the accounting self-checks of the summary. The
// flags are recorded data here; the validation stage turns a false
// equation into a rejection error.
type Consistencia struct {
	Ecuaciones       Ecuaciones `json:"ecuaciones"`
	CopagoTeorico    int64      `json:"copago_teorico"`
	DiferenciaCopago int64      `json:"diferencia_copago"`
}

// Ecuaciones are the three consistency equations of the summary, each
// checked with a ±10 minor-unit rounding tolerance.
type Ecuaciones struct {
	TotalesIgualBonoMasReembolso   bool `json:"totales_igual_bono_mas_reembolso"`
	PrestacionIgualSumaComponentes bool `json:"prestacion_igual_suma_componentes"`
	CopagoTeoricoIgualPresentado   bool `json:"copago_teorico_igual_presentado"`
}
