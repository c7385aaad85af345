// internal/app/features/reservations/routes.go
package reservations

import (
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Get("/mine", h.ServeMine)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireAdmin)
		ar.Get("/", h.ServeList)
		ar.Post("/{id}/approve", h.ServeApprove)
		ar.Post("/{id}/reject", h.ServeReject)
		ar.Post("/{id}/finalize", h.ServeFinalize)
		ar.Post("/{id}/override", h.ServeOverride)
		ar.Post("/{id}/comment", h.ServeComment)
	})

	return r
}
