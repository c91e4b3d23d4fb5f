package erp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/internal/config"
)

// ListarDocumentos authenticates against the ERP and runs one scoped
// document query for the caller.
func ListarDocumentos(client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID  string `json:"user_id"`
			Filters Filter `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		session, ok := auth.SessionForUser(req.UserID)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}

		token, err := client.Authenticate(r.Context(), config.ERPCredentialsFromEnv())
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}

		role := RoleContext{Perfil: session.Perfil, CodigoVendedor: session.CodigoVendedor}
		docs, err := client.QueryDocuments(r.Context(), token, role, req.Filters)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"documents":        docs,
			"total_count":      len(docs),
			"user_role":        session.Perfil,
			"user_vendor_code": session.CodigoVendedor,
		})
	}
}

// ClasificarDocumento runs the commission classifier over one document the
// caller already holds, for the raw-display debugging view.
func ClasificarDocumento() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string   `json:"user_id"`
			Document Document `json:"document"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if _, ok := auth.SessionForUser(req.UserID); !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid user_id or session")
			return
		}

		c := ClassifyForCommission(req.Document)
		required, targetType := RequiresPaymentVerification(req.Document)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":               true,
			"valid":                 c.Valid,
			"contribution":          c.Contribution,
			"reason":                c.Reason,
			"requires_verification": required,
			"target_document_type":  targetType,
			"references":            RawReferences(req.Document.Desglose()),
		})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrSession), errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func StartERPService() {
	client := NewClient(config.ERPBaseURL(), 30*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/erp/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from ERP Service"))
	})
	mux.Handle("/erp/documentos", ListarDocumentos(client))
	mux.Handle("/erp/clasificar", ClasificarDocumento())

	log.Println("ERP Service started on :3143")
	if err := http.ListenAndServe(":3143", mux); err != nil {
		log.Fatalf("ERP Service failed: %v", err)
	}
}
