package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/assadsharif/chatkit-core/internal/obslog"
	"github.com/assadsharif/chatkit-core/internal/reqctx"
)

func TestSecurityHeaders_SetsFixedSet(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
		"X-XSS-Protection":        "1; mode=block",
	}
	for header, expected := range want {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s = %q, want %q", header, got, expected)
		}
	}
}

func TestCORS_EchoesAllowlistedOrigin(t *testing.T) {
	h := CORS([]string{"https://widget.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://widget.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://widget.example.com" {
		t.Errorf("expected allowlisted origin echoed, got %q", got)
	}
}

func TestCORS_NeverReflectsUnlistedOrigin(t *testing.T) {
	h := CORS([]string{"https://widget.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unlisted origin, got %q", got)
	}
}

func TestCORS_HandlesPreflight(t *testing.T) {
	h := CORS([]string{"https://widget.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight should not reach the wrapped handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://widget.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rr.Code)
	}
}

func TestRecovery_TranslatesPanicToRedactedEnvelope(t *testing.T) {
	h := Recovery(obslog.New(obslog.LevelDebug))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom: leaked internal detail")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(reqctx.WithRequestID(context.Background(), "req-123"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"internal_error"`) || !strings.Contains(body, `"req-123"`) {
		t.Errorf("unexpected body: %s", body)
	}
	if strings.Contains(body, "boom") {
		t.Errorf("panic detail leaked into response: %s", body)
	}
}

func TestBearerToken_ExtractsFromHeader(t *testing.T) {
	var seen string
	h := BearerToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = BearerFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "abc123" {
		t.Errorf("expected abc123, got %q", seen)
	}
}
