package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/token"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestRequireAuthNoCookie(t *testing.T) {
	tokens := token.NewService("test-secret")

	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if msg := decodeError(t, rec); msg != "No autorizado" {
		t.Errorf("error = %q", msg)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	tokens := token.NewService("test-secret")

	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if msg := decodeError(t, rec); msg != "Token inválido o expirado" {
		t.Errorf("error = %q", msg)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	tokens := token.NewService("test-secret")
	want := auth.Identity{UserID: 42, Email: "maria@example.com", Role: auth.RoleCoordinator}
	signed, err := tokens.Issue(want)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got auth.Identity
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected identity in request context")
		}
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signed})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != want {
		t.Errorf("identity = %+v, want %+v", got, want)
	}
}

func TestRequireAuthWrongSecret(t *testing.T) {
	signed, _ := token.NewService("other-secret").Issue(auth.Identity{UserID: 1, Role: auth.RoleParent})

	handler := RequireAuth(token.NewService("test-secret"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/events", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signed})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func roleRequest(role auth.Role) *http.Request {
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: 1, Role: role})
	return httptest.NewRequest("GET", "/", nil).WithContext(ctx)
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range []struct {
		role auth.Role
		want int
	}{
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleCoordinator, http.StatusForbidden},
		{auth.RoleParent, http.StatusForbidden},
	} {
		rec := httptest.NewRecorder()
		RequireAdmin(ok).ServeHTTP(rec, roleRequest(tt.role))
		if rec.Code != tt.want {
			t.Errorf("role %s: status = %d, want %d", tt.role, rec.Code, tt.want)
		}
	}

	// No identity at all.
	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("unauthenticated: status = %d, want 403", rec.Code)
	}
}

func TestRequireCoordinator(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range []struct {
		role auth.Role
		want int
	}{
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleCoordinator, http.StatusOK},
		{auth.RoleParent, http.StatusForbidden},
	} {
		rec := httptest.NewRecorder()
		RequireCoordinator(ok).ServeHTTP(rec, roleRequest(tt.role))
		if rec.Code != tt.want {
			t.Errorf("role %s: status = %d, want %d", tt.role, rec.Code, tt.want)
		}
	}
}
