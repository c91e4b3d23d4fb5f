package erp

import (
	"github.com/shopspring/decimal"

	"CierreCaja/internal/config"
)

// Rejection reasons for commission classification.
const (
	RechazoSinDesglose   = "sin-desglose"
	RechazoSinReferencia = "sin-referencia-valida"
	RechazoExcedeNeto    = "desglose-excede-neto"
)

// Classification is the outcome of the commission-eligibility check. On a
// valid document Contribution carries the amount added to the salesperson's
// total; on a rejected one Reason says why.
type Classification struct {
	Valid        bool
	Contribution decimal.Decimal
	Reason       string
}

var tolerance = decimal.NewFromInt(config.BreakdownTolerance)

// ClassifyForCommission decides whether a document contributes to its
// salesperson's commission total.
//
// Pending documents ("P") have no invoice breakdown yet and count with their
// net amount directly. Anything else must carry at least one invoice (33) or
// receipt (39) reference whose summed amount stays within the net amount
// plus the tolerance margin; a larger sum means double counting or corrupted
// ERP data and rejects the document.
func ClassifyForCommission(doc Document) Classification {
	neto := doc.MntNeto()

	if doc.Estado() == EstadoPendiente {
		return Classification{Valid: true, Contribution: neto}
	}

	refs := ParseReferences(doc.Desglose())
	if len(refs) == 0 {
		return Classification{Reason: RechazoSinDesglose, Contribution: decimal.Zero}
	}

	suma := decimal.Zero
	matched := false
	for _, ref := range refs {
		if !ref.IsInvoiceTarget() {
			continue
		}
		matched = true
		suma = suma.Add(ref.Amount())
	}
	if !matched {
		return Classification{Reason: RechazoSinReferencia, Contribution: decimal.Zero}
	}

	if suma.GreaterThan(neto.Add(tolerance)) {
		return Classification{Reason: RechazoExcedeNeto, Contribution: decimal.Zero}
	}

	return Classification{Valid: true, Contribution: suma}
}

// RequiresPaymentVerification reports whether a document is gated on payment
// proof before it can be invoiced: approved quotations and sales notes that
// already carry an invoice or receipt reference. TargetType is "Factura"
// for a 33 reference and "Boleta" for 39, first qualifying reference wins;
// it is display-only.
func RequiresPaymentVerification(doc Document) (required bool, targetType string) {
	tipo := doc.TipoDoc()
	if tipo != TipoCotizacion && tipo != TipoNotaVenta {
		return false, ""
	}
	if doc.Estado() != EstadoAprobado {
		return false, ""
	}
	for _, ref := range ParseReferences(doc.Desglose()) {
		switch ref.TypeCode() {
		case "33":
			return true, "Factura"
		case "39":
			return true, "Boleta"
		}
	}
	return false, ""
}

// TipoDocLabel is the display name for the pre-invoice document types.
func TipoDocLabel(tipo string) string {
	switch tipo {
	case TipoCotizacion:
		return "Cotización"
	case TipoNotaVenta:
		return "Nota de Venta"
	default:
		return tipo
	}
}
