package comisiones

import (
	"sort"

	"github.com/shopspring/decimal"

	"CierreCaja/api/erp"
)

// Vendor is one directory entry from the local users table. Commission terms
// are nullable: a salesperson can exist in the ERP without being registered
// locally, and a registered one may have no rate agreed yet.
type Vendor struct {
	ID                 string
	Nombre             string
	CodigoVendedor     string
	PorcentajeComision *decimal.Decimal
	ComisionBase       *decimal.Decimal
}

// CommissionRecord is the per-salesperson payout line for a query window.
type CommissionRecord struct {
	Vendedor             string           `json:"vendedor"`
	CodigoVendedor       string           `json:"codigo_vendedor"`
	TotalVenta           decimal.Decimal  `json:"total_venta"`
	ComisionReal         decimal.Decimal  `json:"comision_real"`
	CantidadDocumentos   int              `json:"cantidad_documentos"`
	DocumentosValidos    int              `json:"documentos_validos"`
	DocumentosRechazados int              `json:"documentos_rechazados"`
	EsUsuarioRegistrado  bool             `json:"es_usuario_registrado"`
	PorcentajeComision   *decimal.Decimal `json:"porcentaje_comision"`
	ComisionBase         *decimal.Decimal `json:"comision_base"`
}

const sinVendedor = "Sin Vendedor"

// Aggregate groups documents by salesperson label and computes sales and
// payout totals. Directory data is snapshotted on the first document seen
// for a salesperson, not re-read per document. Every record holds
// CantidadDocumentos == DocumentosValidos + DocumentosRechazados.
func Aggregate(docs []erp.Document, directory map[string]Vendor) []CommissionRecord {
	records := make(map[string]*CommissionRecord)

	for _, doc := range docs {
		vendedor := doc.VendorLabel()
		if vendedor == "" {
			vendedor = sinVendedor
		}
		codigo := doc.VendorCode()

		rec, ok := records[vendedor]
		if !ok {
			rec = &CommissionRecord{
				Vendedor:       vendedor,
				CodigoVendedor: codigo,
				TotalVenta:     decimal.Zero,
				ComisionReal:   decimal.Zero,
			}
			if v, registered := directory[codigo]; registered {
				rec.EsUsuarioRegistrado = true
				rec.PorcentajeComision = v.PorcentajeComision
				rec.ComisionBase = v.ComisionBase
			}
			records[vendedor] = rec
		}

		rec.CantidadDocumentos++

		c := erp.ClassifyForCommission(doc)
		if c.Valid {
			rec.TotalVenta = rec.TotalVenta.Add(c.Contribution)
			rec.DocumentosValidos++
		} else {
			rec.DocumentosRechazados++
		}
	}

	out := make([]CommissionRecord, 0, len(records))
	for _, rec := range records {
		rec.ComisionReal = realCommission(rec)
		out = append(out, *rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalVenta.GreaterThan(out[j].TotalVenta)
	})
	return out
}

// realCommission is totalVenta * rate/100 + base for registered salespeople
// with an agreed rate, zero otherwise.
func realCommission(rec *CommissionRecord) decimal.Decimal {
	if !rec.EsUsuarioRegistrado || rec.PorcentajeComision == nil {
		return decimal.Zero
	}
	commission := rec.TotalVenta.Mul(rec.PorcentajeComision.Div(decimal.NewFromInt(100)))
	if rec.ComisionBase != nil {
		commission = commission.Add(*rec.ComisionBase)
	}
	return commission
}

// Totals sums the headline numbers across all records for the summary cards.
type Totals struct {
	TotalVentas          decimal.Decimal `json:"total_ventas"`
	TotalComisiones      decimal.Decimal `json:"total_comisiones"`
	DocumentosValidos    int             `json:"documentos_validos"`
	DocumentosRechazados int             `json:"documentos_rechazados"`
}

func SumTotals(records []CommissionRecord) Totals {
	t := Totals{TotalVentas: decimal.Zero, TotalComisiones: decimal.Zero}
	for _, r := range records {
		t.TotalVentas = t.TotalVentas.Add(r.TotalVenta)
		t.TotalComisiones = t.TotalComisiones.Add(r.ComisionReal)
		t.DocumentosValidos += r.DocumentosValidos
		t.DocumentosRechazados += r.DocumentosRechazados
	}
	return t
}
