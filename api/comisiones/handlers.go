package comisiones

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/api/erp"
	"CierreCaja/internal/config"
)

type calcRequest struct {
	UserID  string `json:"user_id"`
	CodVend string `json:"cod_vend"`
	FchDoc  string `json:"fch_doc"`
}

// roleContext builds the ERP scoping for a logged-in user.
func roleContext(s *auth.UserSession) erp.RoleContext {
	return erp.RoleContext{Perfil: s.Perfil, CodigoVendedor: s.CodigoVendedor}
}

// loadCommissionData runs the full chain for one request: ERP login, CT
// document query, vendor directory, aggregation. The session token from the
// single login is reused for the query instead of re-authenticating.
func loadCommissionData(r *http.Request, pgxPool *pgxpool.Pool, client *erp.Client, req calcRequest, session *auth.UserSession) ([]CommissionRecord, int, error) {
	ctx := r.Context()

	token, err := client.Authenticate(ctx, config.ERPCredentialsFromEnv())
	if err != nil {
		return nil, 0, err
	}

	// Commission runs over quotations only.
	docs, err := client.QueryDocuments(ctx, token, roleContext(session), erp.Filter{
		TipoDoc: erp.TipoCotizacion,
		CodVend: req.CodVend,
		FchDoc:  req.FchDoc,
	})
	if err != nil {
		return nil, 0, err
	}

	directory, err := LoadVendorDirectory(ctx, pgxPool)
	if err != nil {
		return nil, 0, err
	}

	return Aggregate(docs, directory), len(docs), nil
}

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

// CalcularComisiones computes the per-salesperson commission table for the
// requested window.
func CalcularComisiones(pgxPool *pgxpool.Pool, client *erp.Client) http.HandlerFunc {
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

		records, totalDocs, err := loadCommissionData(r, pgxPool, client, req, session)
		if err != nil {
			api.RespondWithError(w, statusForERPError(err), err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"comisiones":       records,
			"totales":          SumTotals(records),
			"total_documentos": totalDocs,
		})
	}
}
