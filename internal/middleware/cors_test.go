package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins ...string) http.Handler {
	return CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSExactOrigin(t *testing.T) {
	h := corsHandler("https://app.colegiosync.com")

	req := httptest.NewRequest("GET", "/events", nil)
	req.Header.Set("Origin", "https://app.colegiosync.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.colegiosync.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials not allowed")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := corsHandler("https://app.colegiosync.com")

	req := httptest.NewRequest("GET", "/events", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The request still reaches the handler; the browser enforces the
	// missing header.
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want unset", got)
	}
}

func TestCORSWildcardSubdomain(t *testing.T) {
	h := corsHandler("*.colegiosync.com")

	for origin, allowed := range map[string]bool{
		"https://app.colegiosync.com":     true,
		"https://staging.colegiosync.com": true,
		"https://colegiosync.com.evil.io": false,
		"https://colegiosync.com":         false,
	} {
		req := httptest.NewRequest("GET", "/events", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin") != ""
		if got != allowed {
			t.Errorf("origin %s: allowed = %v, want %v", origin, got, allowed)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS([]string{"https://app.colegiosync.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/events", nil)
	req.Header.Set("Origin", "https://app.colegiosync.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing Allow-Methods on preflight")
	}
}
