package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/token"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "auth_token"

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, msg)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// RequireAuth validates the auth_token cookie and injects the caller's
// identity into the request context. Requests without a valid token get a
// 401 with a JSON error body.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w, "No autorizado")
				return
			}

			identity, ok := tokens.Validate(cookie.Value)
			if !ok {
				unauthorized(w, "Token inválido o expirado")
				return
			}

			ctx := auth.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
