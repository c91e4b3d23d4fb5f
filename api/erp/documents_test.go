package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CierreCaja/internal/config"
)

func TestBuildParamsDefaults(t *testing.T) {
	admin := RoleContext{Perfil: PerfilAdministrador}
	p := buildParams(admin, Filter{})
	if p.Limit != 1000 {
		t.Errorf("Limit = %d, want 1000", p.Limit)
	}
	if p.Page != "1" {
		t.Errorf("Page = %q, want 1", p.Page)
	}
	if p.OrderBy != "NumDoc" {
		t.Errorf("OrderBy = %q, want NumDoc", p.OrderBy)
	}
	if p.FchDoc != CurrentMonthRange(time.Now()) {
		t.Errorf("FchDoc = %q, want current month range", p.FchDoc)
	}
}

func TestBuildParamsOverlay(t *testing.T) {
	admin := RoleContext{Perfil: PerfilAdministrador}
	p := buildParams(admin, Filter{
		NumDoc:  "4512",
		TipoDoc: "CT",
		FchDoc:  "2026-08-01 a 2026-08-31",
		CodVend: "V01",
		Estado:  "A",
		Limit:   50,
	})
	if p.NumDoc != "4512" || p.TipoDoc != "CT" || p.CodVend != "V01" || p.Limit != 50 {
		t.Errorf("overlay not applied: %+v", p)
	}
	if p.EstadoProcesoDoc != "A" {
		t.Errorf("EstadoProcesoDoc = %q, want A", p.EstadoProcesoDoc)
	}
	if p.FchDoc != "2026-08-01 a 2026-08-31" {
		t.Errorf("FchDoc = %q", p.FchDoc)
	}
}

func TestBuildParamsForcesVendorForRestrictedRole(t *testing.T) {
	vendedor := RoleContext{Perfil: PerfilVendedor, CodigoVendedor: "V07"}
	// The caller's CodVend filter must not widen a vendedor's view.
	p := buildParams(vendedor, Filter{CodVend: "V01"})
	if p.CodVend != "V07" {
		t.Errorf("CodVend = %q, want V07", p.CodVend)
	}

	// An unknown perfil is restricted too.
	unknown := RoleContext{Perfil: "", CodigoVendedor: "V09"}
	p = buildParams(unknown, Filter{CodVend: "V01"})
	if p.CodVend != "V09" {
		t.Errorf("CodVend = %q, want V09", p.CodVend)
	}
}

func TestDateRanges(t *testing.T) {
	now := time.Date(2026, time.February, 15, 12, 0, 0, 0, time.UTC)
	if got := CurrentMonthRange(now); got != "2026-02-01 a 2026-02-28" {
		t.Errorf("CurrentMonthRange = %q", got)
	}
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := DateRange(from, to); got != "2026-08-01 a 2026-08-31" {
		t.Errorf("DateRange = %q", got)
	}
}

func documentServer(t *testing.T, response string, gotParams *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != config.ERPDocumentListPath {
			t.Errorf("path = %q", r.URL.Path)
		}
		if cookie := r.Header.Get("Cookie"); cookie != "ci_session=tok" {
			t.Errorf("Cookie = %q", cookie)
		}
		var body struct {
			Params map[string]interface{} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if gotParams != nil {
			*gotParams = body.Params
		}
		fmt.Fprint(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQueryDocumentsArrayShape(t *testing.T) {
	var params map[string]interface{}
	srv := documentServer(t, `{"data":[{"NumDoc":"1","TipoDoc":"CT"},{"NumDoc":"2","TipoDoc":"NV"}]}`, &params)

	client := NewClient(srv.URL, 5*time.Second)
	admin := RoleContext{Perfil: PerfilAdministrador}
	docs, err := client.QueryDocuments(context.Background(), "tok", admin, Filter{TipoDoc: "CT"})
	if err != nil {
		t.Fatalf("QueryDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0].NumDoc() != "1" {
		t.Errorf("NumDoc = %q", docs[0].NumDoc())
	}
	// The fixed-shape params object always carries every field.
	for _, field := range []string{"query", "limit", "page", "orderBy", "losprimeros", "EstadoProcesoDoc"} {
		if _, ok := params[field]; !ok {
			t.Errorf("params missing field %q", field)
		}
	}
	if params["TipoDoc"] != "CT" {
		t.Errorf("TipoDoc param = %v", params["TipoDoc"])
	}
}

func TestQueryDocumentsObjectShape(t *testing.T) {
	srv := documentServer(t, `{"data":{"0":{"NumDoc":"1"},"5":{"NumDoc":"2"}}}`, nil)

	client := NewClient(srv.URL, 5*time.Second)
	admin := RoleContext{Perfil: PerfilAdministrador}
	docs, err := client.QueryDocuments(context.Background(), "tok", admin, Filter{})
	if err != nil {
		t.Fatalf("QueryDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
}

func TestQueryDocumentsDefensiveVendorFilter(t *testing.T) {
	// The upstream ignored the vendor filter; the local pass drops the
	// foreign document anyway.
	srv := documentServer(t, `{"data":[{"NumDoc":"1","CodVend":"V07"},{"NumDoc":"2","CodVend":"V01"}]}`, nil)

	client := NewClient(srv.URL, 5*time.Second)
	vendedor := RoleContext{Perfil: PerfilVendedor, CodigoVendedor: "V07"}
	docs, err := client.QueryDocuments(context.Background(), "tok", vendedor, Filter{})
	if err != nil {
		t.Fatalf("QueryDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].NumDoc() != "1" {
		t.Fatalf("docs = %v, want only NumDoc 1", docs)
	}
}

func TestQueryDocumentsEmptyData(t *testing.T) {
	srv := documentServer(t, `{"data":[]}`, nil)
	client := NewClient(srv.URL, 5*time.Second)
	docs, err := client.QueryDocuments(context.Background(), "tok", RoleContext{Perfil: PerfilAdministrador}, Filter{})
	if err != nil {
		t.Fatalf("QueryDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("len(docs) = %d, want 0", len(docs))
	}
}

func TestQueryDocumentsUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadGateway, "upstream down"},
		{"non-json body", http.StatusOK, "<html>expired</html>"},
		{"bad data shape", http.StatusOK, `{"data":"nada"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second)
			_, err := client.QueryDocuments(context.Background(), "tok", RoleContext{Perfil: PerfilAdministrador}, Filter{})
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("err = %v, want ErrUpstream", err)
			}
		})
	}
}
