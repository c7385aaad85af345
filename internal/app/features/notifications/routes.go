// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/{id}/read", h.ServeMarkRead)

	return r
}
