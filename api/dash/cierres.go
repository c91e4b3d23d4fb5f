package dash

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api"
)

// CierreSnapshot is one nightly cash-closing record.
type CierreSnapshot struct {
	ID                      string          `json:"id"`
	SnapshotDate            string          `json:"snapshot_date"`
	TotalDocuments          int             `json:"total_documents"`
	DocumentsWithPayment    int             `json:"documents_with_payment"`
	DocumentsWithoutPayment int             `json:"documents_without_payment"`
	VerificationPercentage  int             `json:"verification_percentage"`
	TotalsByMethod          json.RawMessage `json:"totals_by_method"`
	CreatedAt               string          `json:"created_at"`
}

// HistorialCierres lists nightly snapshots, newest first. Administrators only.
func HistorialCierres(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Limit  int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		session, _, ok := sessionRole(w, req.UserID)
		if !ok {
			return
		}
		if session.Perfil != "administrador" {
			api.RespondWithError(w, http.StatusForbidden, "Administrator profile required")
			return
		}
		limit := req.Limit
		if limit <= 0 || limit > 365 {
			limit = 31
		}

		rows, err := pgxPool.Query(r.Context(), `
			SELECT id, snapshot_date::text, total_documents, documents_with_payment,
			       documents_without_payment, verification_percentage,
			       totals_by_method, created_at::text
			FROM cierre_snapshots
			ORDER BY snapshot_date DESC
			LIMIT $1`, limit)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		snapshots := []CierreSnapshot{}
		for rows.Next() {
			var s CierreSnapshot
			if err := rows.Scan(&s.ID, &s.SnapshotDate, &s.TotalDocuments,
				&s.DocumentsWithPayment, &s.DocumentsWithoutPayment,
				&s.VerificationPercentage, &s.TotalsByMethod, &s.CreatedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			snapshots = append(snapshots, s)
		}
		api.RespondWithPayload(w, true, "", "snapshots", snapshots)
	}
}
