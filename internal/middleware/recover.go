package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/formbridge/formbridge-api/internal/pkg/response"
)

// Recover is a middleware that recovers from panics. Internal detail never
// reaches the client; the stack goes to the log only.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")

				response.InternalError(w, "Failed to send message")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
