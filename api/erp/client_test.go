package erp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CierreCaja/internal/config"
)

func testCreds() config.ERPCredentials {
	return config.ERPCredentials{RutEmpresa: "11111111-1", Usuario: "user", Password: "pw"}
}

// loginServer answers the two-step handshake: the login POST announces a
// redirect URL pointing back at the same server, and sessionHandler serves
// that second request.
func loginServer(t *testing.T, sessionHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc(config.ERPLoginPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("data[txtrutempresa]"); got != "11111111-1" {
			t.Errorf("rut field = %q", got)
		}
		if got := r.FormValue("data[txtusuario]"); got != "user" {
			t.Errorf("usuario field = %q", got)
		}
		if got := r.FormValue("data[txtpwd]"); got != "pw" {
			t.Errorf("pwd field = %q", got)
		}
		fmt.Fprintf(w, `{"estado":"OK","codigo_respuesta":1,"url":"%s/Inicio"}`, srv.URL)
	})
	mux.HandleFunc("/Inicio", sessionHandler)
	return srv
}

func TestAuthenticateCookieHeader(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "other=1; Path=/")
		w.Header().Add("Set-Cookie", "ci_session=abc123; Path=/; HttpOnly")
	})

	client := NewClient(srv.URL, 5*time.Second)
	token, err := client.Authenticate(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want abc123", token)
	}
}

func TestAuthenticateFoldedCookieHeader(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		// An intermediary joined two Set-Cookie values; the expiry date
		// contains a comma that must not split the session value.
		w.Header()["Set-Cookie"] = []string{
			"lang=es; expires=Tue, 01 Sep 2026 00:00:00 GMT, ci_session=folded456; Path=/",
		}
	})

	client := NewClient(srv.URL, 5*time.Second)
	token, err := client.Authenticate(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "folded456" {
		t.Errorf("token = %q, want folded456", token)
	}
}

func TestAuthenticateBodyFallback(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<script>document.cookie = "ci_session=frombody789; path=/";</script>`)
	})

	client := NewClient(srv.URL, 5*time.Second)
	token, err := client.Authenticate(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "frombody789" {
		t.Errorf("token = %q, want frombody789", token)
	}
}

func TestAuthenticateNoSessionCookie(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>bienvenido</html>")
	})

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Authenticate(context.Background(), testCreds())
	if !errors.Is(err, ErrSession) {
		t.Fatalf("err = %v, want ErrSession", err)
	}
}

func TestAuthenticateRejectedCredentials(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"estado error", `{"estado":"ERROR","codigo_respuesta":0,"detalle":"credenciales invalidas"}`},
		{"wrong codigo", `{"estado":"OK","codigo_respuesta":0}`},
		{"missing url", `{"estado":"OK","codigo_respuesta":1}`},
		{"blank url", `{"estado":"OK","codigo_respuesta":1,"url":"  "}`},
		{"numeric url", `{"estado":"OK","codigo_respuesta":1,"url":12345}`},
		{"not json", `<html>mantenimiento</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second)
			_, err := client.Authenticate(context.Background(), testCreds())
			if !errors.Is(err, ErrAuth) {
				t.Fatalf("err = %v, want ErrAuth", err)
			}
		})
	}
}

func TestClientDoesNotFollowRedirects(t *testing.T) {
	redirected := false
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc(config.ERPLoginPath, func(w http.ResponseWriter, r *http.Request) {
		// A redirect header pointing somewhere else must be ignored; the
		// body URL is authoritative.
		w.Header().Set("Location", srv.URL+"/trap")
		w.WriteHeader(http.StatusFound)
		fmt.Fprintf(w, `{"estado":"OK","codigo_respuesta":1,"url":"%s/Inicio"}`, srv.URL)
	})
	mux.HandleFunc("/trap", func(w http.ResponseWriter, r *http.Request) {
		redirected = true
	})
	mux.HandleFunc("/Inicio", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "ci_session=direct; Path=/")
	})

	client := NewClient(srv.URL, 5*time.Second)
	token, err := client.Authenticate(context.Background(), testCreds())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "direct" {
		t.Errorf("token = %q, want direct", token)
	}
	if redirected {
		t.Error("client followed the redirect header")
	}
}
