package dash

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/api/comisiones"
	"CierreCaja/api/erp"
	"CierreCaja/api/verificaciones"
	"CierreCaja/internal/config"
)

func statusForERPError(err error) int {
	switch {
	case errors.Is(err, erp.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, erp.ErrSession), errors.Is(err, erp.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sessionRole(w http.ResponseWriter, userID string) (*auth.UserSession, erp.RoleContext, bool) {
	session, ok := auth.SessionForUser(userID)
	if !ok {
		api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
		return nil, erp.RoleContext{}, false
	}
	role := erp.RoleContext{Perfil: session.Perfil, CodigoVendedor: session.CodigoVendedor}
	return session, role, true
}

// ResumenComisiones returns the landing-page commission figures for the
// current month, scoped to the caller's role.
func ResumenComisiones(pgxPool *pgxpool.Pool, client *erp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		_, role, ok := sessionRole(w, req.UserID)
		if !ok {
			return
		}

		token, err := client.Authenticate(r.Context(), config.ERPCredentialsFromEnv())
		if err != nil {
			api.RespondWithError(w, statusForERPError(err), err.Error())
			return
		}
		docs, err := client.QueryDocuments(r.Context(), token, role, erp.Filter{
			TipoDoc: erp.TipoCotizacion,
			FchDoc:  erp.CurrentMonthRange(time.Now()),
		})
		if err != nil {
			api.RespondWithError(w, statusForERPError(err), err.Error())
			return
		}

		directory, err := comisiones.LoadVendorDirectory(r.Context(), pgxPool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		records := comisiones.Aggregate(docs, directory)
		totals := comisiones.SumTotals(records)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"totales":          totals,
			"total_vendedores": len(records),
			"total_documentos": len(docs),
		})
	}
}

// ResumenVerificaciones returns the cash-closing progress for the current
// month. Vendedores see only their own documents.
func ResumenVerificaciones(store *verificaciones.Store, client *erp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		_, role, ok := sessionRole(w, req.UserID)
		if !ok {
			return
		}

		now := time.Now()
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		report, err := verificaciones.BuildConsolidation(r.Context(), store, client, role, from, now)
		if err != nil {
			api.RespondWithError(w, statusForERPError(err), err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"summary":          report.Summary,
			"totals_by_method": report.TotalsByMethod,
		})
	}
}
