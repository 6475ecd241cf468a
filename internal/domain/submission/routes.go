package submission

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns submission routes. The create endpoint is public; the
// recent-submissions read is guarded by the admin middleware.
func (h *Handler) Routes(adminAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.With(adminAuth).Get("/", h.List)

	return r
}
