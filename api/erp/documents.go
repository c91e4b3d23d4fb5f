package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"CierreCaja/internal/config"
)

// RoleContext scopes a query to the caller. A vendedor is a restricted role:
// it can only ever see its own documents, whatever filters it sends.
type RoleContext struct {
	Perfil         string
	CodigoVendedor string
}

const (
	PerfilAdministrador = "administrador"
	PerfilVendedor      = "vendedor"
)

func (rc RoleContext) Restricted() bool {
	return rc.Perfil != PerfilAdministrador
}

// Filter carries the caller-supplied query filters. Only non-empty values
// overlay the defaults.
type Filter struct {
	NumDoc     string
	NomCliente string
	CodCli     string
	TipoDoc    string
	FchDoc     string
	CodVend    string
	Estado     string
	Limit      int
}

// queryParams is the fixed-shape params object the ERP expects; the vendor
// rejects requests that omit fields, so every field is always sent.
type queryParams struct {
	Query            string `json:"query"`
	Limit            int    `json:"limit"`
	Ascending        int    `json:"ascending"`
	Page             string `json:"page"`
	ByColumn         int    `json:"byColumn"`
	OrderBy          string `json:"orderBy"`
	NumDoc           string `json:"NumDoc"`
	NomCliente       string `json:"NomCliente"`
	CodCli           string `json:"CodCli"`
	NomContacto      string `json:"NomContacto"`
	GlosaDoc         string `json:"GlosaDoc"`
	Notificada       string `json:"notificada"`
	RutCli           string `json:"rutCli"`
	CC               string `json:"cc"`
	MntNeto          string `json:"MntNeto"`
	MntTotal         string `json:"MntTotal"`
	MntTotalMin      string `json:"MntTotalMin"`
	MntTotalMax      string `json:"MntTotalMax"`
	TipoMoneda       string `json:"TipoMoneda"`
	CodVend          string `json:"CodVend"`
	AfectaCT         string `json:"AfectaCT"`
	EstadoProcesoDoc string `json:"EstadoProcesoDoc"`
	FchDoc           string `json:"FchDoc"`
	TipoDoc          string `json:"TipoDoc"`
	Acno             string `json:"acno"`
	LosPrimeros      string `json:"losprimeros"`
}

// CurrentMonthRange formats the first-to-last day of now's calendar month
// the way the ERP expects ("YYYY-MM-DD a YYYY-MM-DD").
func CurrentMonthRange(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return DateRange(first, last)
}

// DateRange renders an inclusive date range in the ERP's literal format.
func DateRange(from, to time.Time) string {
	return fmt.Sprintf("%s a %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func buildParams(role RoleContext, f Filter) queryParams {
	p := queryParams{
		Limit:   1000,
		Page:    "1",
		OrderBy: "NumDoc",
		FchDoc:  CurrentMonthRange(time.Now()),
	}
	if f.Limit > 0 {
		p.Limit = f.Limit
	}
	if f.NumDoc != "" {
		p.NumDoc = f.NumDoc
	}
	if f.NomCliente != "" {
		p.NomCliente = f.NomCliente
	}
	if f.CodCli != "" {
		p.CodCli = f.CodCli
	}
	if f.TipoDoc != "" {
		p.TipoDoc = f.TipoDoc
	}
	if f.FchDoc != "" {
		p.FchDoc = f.FchDoc
	}
	if f.Estado != "" {
		p.EstadoProcesoDoc = f.Estado
	}
	if f.CodVend != "" && !role.Restricted() {
		p.CodVend = f.CodVend
	}
	// Security boundary, not a default: a restricted caller queries its own
	// documents no matter what it sent.
	if role.Restricted() {
		p.CodVend = role.CodigoVendedor
	}
	return p
}

// QueryDocuments posts the document query under the given session token and
// normalizes the response into a document list. The data field arrives as an
// array or as an object map (values taken, key order discarded). For a
// restricted role a second defensive pass drops documents whose vendor code
// does not match, guarding against upstream filter failures.
func (c *Client) QueryDocuments(ctx context.Context, token SessionToken, role RoleContext, f Filter) ([]Document, error) {
	payload, err := json.Marshal(map[string]interface{}{"params": buildParams(role, f)})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding query: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+config.ERPDocumentListPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building query request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", config.ERPSessionCookie+"="+string(token))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: document query: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, preview(body))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: non-JSON document response: %s", ErrUpstream, preview(body))
	}

	docs, err := decodeDocumentList(envelope.Data)
	if err != nil {
		return nil, err
	}

	if role.Restricted() {
		docs = filterByVendor(docs, role.CodigoVendedor)
	}
	return docs, nil
}

func decodeDocumentList(data json.RawMessage) ([]Document, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var arr []Document
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, nil
	}
	var obj map[string]Document
	if err := json.Unmarshal(data, &obj); err == nil {
		docs := make([]Document, 0, len(obj))
		for _, d := range obj {
			docs = append(docs, d)
		}
		return docs, nil
	}
	return nil, fmt.Errorf("%w: unrecognized data shape: %s", ErrUpstream, preview(data))
}

func filterByVendor(docs []Document, codigoVendedor string) []Document {
	out := docs[:0]
	for _, d := range docs {
		if d.VendorCode() == codigoVendedor || d.VendorLabel() == codigoVendedor {
			out = append(out, d)
		}
	}
	return out
}

func preview(b []byte) string {
	const max = 200
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
