package middleware

import (
	"net/http"
	"strings"
)

// CORS returns middleware that answers cross-origin requests for browser
// clients carrying the auth cookie. Origins are matched exactly, except
// entries starting with "*." which match any subdomain of the suffix.
// Credentials require echoing the concrete origin, never a wildcard.
func CORS(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, origins) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type")
					h.Set("Access-Control-Max-Age", "86400")
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if after, ok := strings.CutPrefix(a, "*."); ok {
			// https://foo.example.com matches *.example.com
			if strings.HasSuffix(origin, "."+after) {
				return true
			}
			continue
		}
		if origin == a {
			return true
		}
	}
	return false
}
