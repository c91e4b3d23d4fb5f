package verificaciones

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"CierreCaja/api"
	"CierreCaja/api/auth"
	"CierreCaja/api/erp"
	"CierreCaja/internal/config"
)

// MethodTotals accumulates verified amounts per payment method for the cash
// count at closing time.
type MethodTotals struct {
	Efectivo      decimal.Decimal `json:"efectivo"`
	Transferencia decimal.Decimal `json:"transferencia"`
	Webpay        decimal.Decimal `json:"webpay"`
	Total         decimal.Decimal `json:"total"`
}

// Consolidation is the full cash-closing report.
type Consolidation struct {
	TotalsByMethod  MethodTotals            `json:"totals_by_method"`
	DocumentDetails []DocumentPaymentStatus `json:"document_details"`
	Summary         Summary                 `json:"summary"`
}

// totalsByMethod reads each verification's document snapshot for its amount.
// A snapshot that cannot be parsed contributes zero.
func totalsByMethod(verifs []Verification) MethodTotals {
	t := MethodTotals{
		Efectivo:      decimal.Zero,
		Transferencia: decimal.Zero,
		Webpay:        decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, v := range verifs {
		var snapshot map[string]interface{}
		if err := json.Unmarshal([]byte(v.DocumentInfo), &snapshot); err != nil {
			continue
		}
		amount := decimal.Zero
		if raw, ok := snapshot["MntTotal"]; ok {
			amount = erp.ParseAmount(raw)
		} else if raw, ok := snapshot["amount"]; ok {
			amount = erp.ParseAmount(raw)
		}
		switch v.PaymentMethod {
		case MetodoEfectivo:
			t.Efectivo = t.Efectivo.Add(amount)
		case MetodoTransferencia:
			t.Transferencia = t.Transferencia.Add(amount)
		case MetodoWebpay:
			t.Webpay = t.Webpay.Add(amount)
		default:
			continue
		}
		t.Total = t.Total.Add(amount)
	}
	return t
}

// BuildConsolidation fetches approved CT and NV documents for the window and
// joins them against the verifications created in the same window. One ERP
// session token is reused for both document queries.
func BuildConsolidation(ctx context.Context, store *Store, client *erp.Client, role erp.RoleContext, from, to time.Time) (*Consolidation, error) {
	token, err := client.Authenticate(ctx, config.ERPCredentialsFromEnv())
	if err != nil {
		return nil, err
	}

	rangeFilter := erp.Filter{
		FchDoc: erp.DateRange(from, to),
		Estado: erp.EstadoAprobado,
		Limit:  2000,
	}

	var docs []erp.Document
	for _, tipo := range []string{erp.TipoCotizacion, erp.TipoNotaVenta} {
		f := rangeFilter
		f.TipoDoc = tipo
		batch, err := client.QueryDocuments(ctx, token, role, f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, batch...)
	}

	verifs, err := store.List(ctx, ListFilter{CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, err
	}

	details, summary := Match(docs, verifs)
	sort.Slice(details, func(i, j int) bool {
		return details[i].DocumentDate > details[j].DocumentDate
	})

	return &Consolidation{
		TotalsByMethod:  totalsByMethod(verifs),
		DocumentDetails: details,
		Summary:         summary,
	}, nil
}

// ConsolidacionPagos is the cash-closing report endpoint, administrators
// only. Defaults to the trailing month when no range is given.
func ConsolidacionPagos(store *Store, client *erp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string `json:"user_id"`
			DateFrom string `json:"date_from"`
			DateTo   string `json:"date_to"`
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
		if session.Perfil != erp.PerfilAdministrador {
			api.RespondWithError(w, http.StatusForbidden, "Only administrators may run the consolidation")
			return
		}

		to := time.Now()
		from := to.AddDate(0, -1, 0)
		if req.DateFrom != "" && req.DateTo != "" {
			var err error
			if from, err = time.Parse("2006-01-02", req.DateFrom); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Invalid date_from")
				return
			}
			if to, err = time.Parse("2006-01-02", req.DateTo); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Invalid date_to")
				return
			}
			// Include the whole closing day.
			to = to.Add(24*time.Hour - time.Nanosecond)
		}

		role := erp.RoleContext{Perfil: session.Perfil, CodigoVendedor: session.CodigoVendedor}
		consolidation, err := BuildConsolidation(r.Context(), store, client, role, from, to)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, erp.ErrAuth) {
				status = http.StatusUnauthorized
			}
			api.RespondWithError(w, status, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"consolidation": consolidation,
			"date_range": map[string]string{
				"from": from.Format(time.RFC3339),
				"to":   to.Format(time.RFC3339),
			},
		})
	}
}
