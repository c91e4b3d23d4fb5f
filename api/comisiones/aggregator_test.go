package comisiones

import (
	"testing"

	"github.com/shopspring/decimal"

	"CierreCaja/api/erp"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func findRecord(t *testing.T, records []CommissionRecord, vendedor string) CommissionRecord {
	t.Helper()
	for _, r := range records {
		if r.Vendedor == vendedor {
			return r
		}
	}
	t.Fatalf("no record for %q", vendedor)
	return CommissionRecord{}
}

func TestAggregateMixedDocuments(t *testing.T) {
	docs := []erp.Document{
		// Pending document counts its net amount.
		{"Vendedor": "Juan", "CodVend": "V01", "EstadoProcesoDoc": "P", "MntNeto": float64(80000)},
		// Approved with invoice reference counts the reference sum.
		{"Vendedor": "Juan", "CodVend": "V01", "EstadoProcesoDoc": "A", "MntNeto": float64(50000),
			"Desglose": `[{"codtipodoc":"33","MontoEERR":28000}]`},
		// Approved without breakdown is rejected.
		{"Vendedor": "Juan", "CodVend": "V01", "EstadoProcesoDoc": "A", "MntNeto": float64(99999)},
		// Unregistered salesperson.
		{"Vendedor": "Ana", "CodVend": "V02", "EstadoProcesoDoc": "P", "MntNeto": float64(30000)},
		// No salesperson at all.
		{"EstadoProcesoDoc": "P", "MntNeto": float64(1000)},
	}
	directory := map[string]Vendor{
		"V01": {ID: "u1", Nombre: "Juan", CodigoVendedor: "V01",
			PorcentajeComision: decPtr("5"), ComisionBase: decPtr("10000")},
	}

	records := Aggregate(docs, directory)
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	juan := findRecord(t, records, "Juan")
	if juan.TotalVenta.String() != "108000" {
		t.Errorf("Juan TotalVenta = %s, want 108000", juan.TotalVenta)
	}
	// 108000 * 5% + 10000
	if juan.ComisionReal.String() != "15400" {
		t.Errorf("Juan ComisionReal = %s, want 15400", juan.ComisionReal)
	}
	if juan.CantidadDocumentos != 3 || juan.DocumentosValidos != 2 || juan.DocumentosRechazados != 1 {
		t.Errorf("Juan counts = %d/%d/%d", juan.CantidadDocumentos, juan.DocumentosValidos, juan.DocumentosRechazados)
	}
	if !juan.EsUsuarioRegistrado {
		t.Error("Juan should be registered")
	}

	ana := findRecord(t, records, "Ana")
	if ana.EsUsuarioRegistrado {
		t.Error("Ana should not be registered")
	}
	if ana.ComisionReal.String() != "0" {
		t.Errorf("Ana ComisionReal = %s, want 0", ana.ComisionReal)
	}

	sin := findRecord(t, records, "Sin Vendedor")
	if sin.TotalVenta.String() != "1000" {
		t.Errorf("Sin Vendedor TotalVenta = %s", sin.TotalVenta)
	}

	for _, r := range records {
		if r.CantidadDocumentos != r.DocumentosValidos+r.DocumentosRechazados {
			t.Errorf("%s: document counts do not add up: %d != %d + %d",
				r.Vendedor, r.CantidadDocumentos, r.DocumentosValidos, r.DocumentosRechazados)
		}
	}
}

func TestAggregateSortsByTotalVentaDesc(t *testing.T) {
	docs := []erp.Document{
		{"Vendedor": "Low", "EstadoProcesoDoc": "P", "MntNeto": float64(100)},
		{"Vendedor": "High", "EstadoProcesoDoc": "P", "MntNeto": float64(9000)},
		{"Vendedor": "Mid", "EstadoProcesoDoc": "P", "MntNeto": float64(500)},
	}
	records := Aggregate(docs, nil)
	want := []string{"High", "Mid", "Low"}
	for i, name := range want {
		if records[i].Vendedor != name {
			t.Errorf("records[%d] = %s, want %s", i, records[i].Vendedor, name)
		}
	}
}

func TestCommissionFromRateAndBase(t *testing.T) {
	docs := []erp.Document{
		{"Vendedor": "V1", "CodVend": "V1", "EstadoProcesoDoc": "P", "MntNeto": float64(50000)},
		{"Vendedor": "V1", "CodVend": "V1", "EstadoProcesoDoc": "A", "MntNeto": float64(30000),
			"Desglose": `[{"codtipodoc":"33","MontoEERR":30000}]`},
	}
	directory := map[string]Vendor{
		"V1": {ID: "u1", Nombre: "V1", CodigoVendedor: "V1",
			PorcentajeComision: decPtr("10"), ComisionBase: decPtr("20000")},
	}
	records := Aggregate(docs, directory)
	rec := findRecord(t, records, "V1")
	if rec.TotalVenta.String() != "80000" {
		t.Errorf("TotalVenta = %s, want 80000", rec.TotalVenta)
	}
	if rec.DocumentosValidos != 2 || rec.DocumentosRechazados != 0 {
		t.Errorf("counts = %d/%d", rec.DocumentosValidos, rec.DocumentosRechazados)
	}
	// 80000 * 10% + 20000
	if rec.ComisionReal.String() != "28000" {
		t.Errorf("ComisionReal = %s, want 28000", rec.ComisionReal)
	}
}

func TestRegisteredWithoutRateEarnsNothing(t *testing.T) {
	docs := []erp.Document{
		{"Vendedor": "Juan", "CodVend": "V01", "EstadoProcesoDoc": "P", "MntNeto": float64(80000)},
	}
	directory := map[string]Vendor{
		"V01": {ID: "u1", Nombre: "Juan", CodigoVendedor: "V01", ComisionBase: decPtr("10000")},
	}
	records := Aggregate(docs, directory)
	rec := findRecord(t, records, "Juan")
	if !rec.EsUsuarioRegistrado {
		t.Error("should be registered")
	}
	// No agreed percentage means no payout, base included.
	if rec.ComisionReal.String() != "0" {
		t.Errorf("ComisionReal = %s, want 0", rec.ComisionReal)
	}
}

func TestSumTotals(t *testing.T) {
	records := []CommissionRecord{
		{TotalVenta: dec("1000"), ComisionReal: dec("50"), DocumentosValidos: 2, DocumentosRechazados: 1},
		{TotalVenta: dec("2000"), ComisionReal: dec("0"), DocumentosValidos: 1, DocumentosRechazados: 0},
	}
	totals := SumTotals(records)
	if totals.TotalVentas.String() != "3000" {
		t.Errorf("TotalVentas = %s", totals.TotalVentas)
	}
	if totals.TotalComisiones.String() != "50" {
		t.Errorf("TotalComisiones = %s", totals.TotalComisiones)
	}
	if totals.DocumentosValidos != 3 || totals.DocumentosRechazados != 1 {
		t.Errorf("doc counts = %d/%d", totals.DocumentosValidos, totals.DocumentosRechazados)
	}
}
