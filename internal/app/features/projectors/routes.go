// internal/app/features/projectors/routes.go
package projectors

import (
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireAdmin)

	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Post("/{id}/state", h.ServeSetState)
	r.Delete("/{id}", h.ServeDelete)

	return r
}
