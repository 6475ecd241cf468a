package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/formbridge/formbridge-api/internal/pkg/response"
)

// AdminToken guards administrative routes with a shared bearer token.
// When no token is configured the routes are hidden entirely.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				response.NotFound(w, "Not found")
				return
			}

			auth := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
