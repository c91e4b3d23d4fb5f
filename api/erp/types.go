package erp

import "github.com/shopspring/decimal"

// Document type codes of interest. Other codes pass through untouched.
const (
	TipoCotizacion = "CT"
	TipoNotaVenta  = "NV"

	EstadoAprobado  = "A"
	EstadoPendiente = "P"
)

// Document is one row of the ERP document listing. The upstream schema has
// drifted over time, so the raw shape is kept as-is and every read goes
// through the alias chains in fields.go.
type Document map[string]interface{}

func (d Document) NumDoc() string     { return asString(d["NumDoc"]) }
func (d Document) TipoDoc() string    { return asString(d["TipoDoc"]) }
func (d Document) FchDoc() string     { return asString(d["FchDoc"]) }
func (d Document) NomCliente() string { return asString(d["NomCliente"]) }
func (d Document) CodCli() string     { return asString(d["CodCli"]) }

func (d Document) MntNeto() decimal.Decimal  { return ParseAmount(d["MntNeto"]) }
func (d Document) MntTotal() decimal.Decimal { return ParseAmount(d["MntTotal"]) }

// VendorLabel is the salesperson as displayed; VendorCode is the identifier
// matched against the local user directory. The upstream uses the two field
// names interchangeably per document, so each prefers its canonical name and
// falls back to the other.
func (d Document) VendorLabel() string {
	if v, ok := firstField(d, vendorLabelAliases); ok {
		return asString(v)
	}
	return ""
}

func (d Document) VendorCode() string {
	if v, ok := firstField(d, vendorCodeAliases); ok {
		return asString(v)
	}
	return ""
}

// Estado is the process status ("A" approved, "P" pending). The upstream is
// ambiguous about EstadoProcesoDoc vs EstadoDoc; both are honored.
func (d Document) Estado() string {
	if v, ok := firstField(d, estadoAliases); ok {
		return asString(v)
	}
	return ""
}

// Desglose is the embedded breakdown JSON, blank when the document has no
// linked invoice yet.
func (d Document) Desglose() string {
	if s, ok := d["Desglose"].(string); ok {
		return s
	}
	return ""
}
