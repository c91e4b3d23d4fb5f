package comisiones

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/api/erp"
)

// BuildCommissionWorkbook renders the commission table as a spreadsheet:
// a header row, one row per salesperson, and a totals row.
func BuildCommissionWorkbook(records []CommissionRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Comisiones"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := []interface{}{
		"Vendedor", "Código", "Total Venta", "Comisión Real",
		"Documentos", "Válidos", "Rechazados", "Registrado", "% Comisión", "Comisión Base",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, rec := range records {
		registrado := "No"
		if rec.EsUsuarioRegistrado {
			registrado = "Sí"
		}
		var porcentaje, base interface{}
		if rec.PorcentajeComision != nil {
			porcentaje, _ = rec.PorcentajeComision.Float64()
		}
		if rec.ComisionBase != nil {
			base, _ = rec.ComisionBase.Float64()
		}
		totalVenta, _ := rec.TotalVenta.Float64()
		comisionReal, _ := rec.ComisionReal.Float64()
		row := []interface{}{
			rec.Vendedor, rec.CodigoVendedor, totalVenta, comisionReal,
			rec.CantidadDocumentos, rec.DocumentosValidos, rec.DocumentosRechazados,
			registrado, porcentaje, base,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	totals := SumTotals(records)
	totalVentas, _ := totals.TotalVentas.Float64()
	totalComisiones, _ := totals.TotalComisiones.Float64()
	totalRow := []interface{}{
		"TOTAL", "", totalVentas, totalComisiones,
		totals.DocumentosValidos + totals.DocumentosRechazados,
		totals.DocumentosValidos, totals.DocumentosRechazados, "", "", "",
	}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", len(records)+2), &totalRow); err != nil {
		return nil, err
	}
	return f, nil
}

// ExportarExcel streams the commission table for the requested window as an
// xlsx attachment.
func ExportarExcel(pgxPool *pgxpool.Pool, client *erp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req calcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		session, ok := auth.SessionForUser(req.UserID)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}

		records, _, err := loadCommissionData(r, pgxPool, client, req, session)
		if err != nil {
			api.RespondWithError(w, statusForERPError(err), err.Error())
			return
		}

		f, err := BuildCommissionWorkbook(records)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "building workbook: "+err.Error())
			return
		}

		filename := fmt.Sprintf("comisiones_%s.xlsx", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		if err := f.Write(w); err != nil {
			api.LogError("writing xlsx: %v", err)
		}
	}
}
