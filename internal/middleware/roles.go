package middleware

import (
	"net/http"

	"github.com/colegiosync/colegiosync/internal/auth"
)

// RequireAdmin rejects callers whose role is not admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusForbidden, "Se requiere autenticación")
			return
		}
		if id.Role != auth.RoleAdmin {
			writeJSONError(w, http.StatusForbidden, "Se requiere rol de administrador")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCoordinator admits coordinators and admins.
func RequireCoordinator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusForbidden, "Se requiere autenticación")
			return
		}
		if !id.Role.CanCoordinate() {
			writeJSONError(w, http.StatusForbidden, "Se requiere rol de coordinador o administrador")
			return
		}
		next.ServeHTTP(w, r)
	})
}
