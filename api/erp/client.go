package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"CierreCaja/internal/config"
)

// SessionToken is the opaque ci_session value the ERP hands out after the
// two-step login. It is threaded explicitly through every query call; there
// is no shared ambient session state.
type SessionToken string

// Client talks to the session-based ERP API. The upstream is a third party
// with no SLA, so every call runs under the client timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client that never follows redirects: the login handshake
// depends on reading the redirect response itself.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type loginResponse struct {
	Estado          string      `json:"estado"`
	CodigoRespuesta int         `json:"codigo_respuesta"`
	URL             interface{} `json:"url"`
	Detalle         string      `json:"detalle"`
}

// Authenticate performs the two-step handshake: form-encoded credentials to
// the login endpoint, then a GET to the redirect URL announced in the JSON
// body (the body is the sole source of that URL, redirect headers are not
// trusted), extracting the session cookie from the second response.
func (c *Client) Authenticate(ctx context.Context, creds config.ERPCredentials) (SessionToken, error) {
	form := url.Values{}
	form.Set("data[txtrutempresa]", creds.RutEmpresa)
	form.Set("data[txtusuario]", creds.Usuario)
	form.Set("data[txtpwd]", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+config.ERPLoginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: building login request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading login response: %v", ErrUpstream, err)
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return "", fmt.Errorf("%w: login response is not JSON (status %d): %v", ErrAuth, resp.StatusCode, err)
	}
	if login.Estado != "OK" || login.CodigoRespuesta != 1 {
		detail := login.Detalle
		if detail == "" {
			detail = "estado=" + login.Estado
		}
		return "", fmt.Errorf("%w: %s", ErrAuth, detail)
	}

	redirectURL, ok := login.URL.(string)
	redirectURL = strings.TrimSpace(redirectURL)
	if !ok || redirectURL == "" {
		return "", fmt.Errorf("%w: no redirect url in login response", ErrAuth)
	}

	return c.fetchSession(ctx, redirectURL)
}

// fetchSession issues the second-step GET and pulls the session cookie out
// of the response.
func (c *Client) fetchSession(ctx context.Context, redirectURL string) (SessionToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, redirectURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building session request: %v", ErrUpstream, err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: session request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if token := tokenFromCookieHeaders(resp.Header.Values("Set-Cookie")); token != "" {
		return SessionToken(token), nil
	}
	if token := tokenFromFoldedHeader(resp.Header.Get("Set-Cookie")); token != "" {
		return SessionToken(token), nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if token := tokenFromBody(string(body)); token != "" {
		return SessionToken(token), nil
	}

	return "", fmt.Errorf("%w: tried header values, folded header and body scan (status %d)", ErrSession, resp.StatusCode)
}

var cookieRe = regexp.MustCompile(config.ERPSessionCookie + `=([^;,\s]+)`)

// tokenFromCookieHeaders scans each Set-Cookie value for the session cookie.
func tokenFromCookieHeaders(headers []string) string {
	for _, h := range headers {
		if !strings.Contains(h, config.ERPSessionCookie+"=") {
			continue
		}
		if m := cookieRe.FindStringSubmatch(h); m != nil {
			return m[1]
		}
	}
	return ""
}

// tokenFromFoldedHeader handles intermediaries that fold several Set-Cookie
// values into one comma-joined header. Splitting on bare commas would break
// expiry dates, so the header is split right before each name= token and the
// value taken up to the next ';'.
func tokenFromFoldedHeader(header string) string {
	idx := strings.Index(header, config.ERPSessionCookie+"=")
	if idx < 0 {
		return ""
	}
	rest := header[idx+len(config.ERPSessionCookie)+1:]
	if end := strings.IndexAny(rest, ";,"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

var bodyCookieRe = regexp.MustCompile(`document\.cookie\s*=\s*["']` + config.ERPSessionCookie + `=([^"';]+)`)

// tokenFromBody is the last resort: some upstream error pages set the cookie
// from a script instead of a header.
func tokenFromBody(body string) string {
	if m := bodyCookieRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}
