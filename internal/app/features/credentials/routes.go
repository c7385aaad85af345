// internal/app/features/credentials/routes.go
package credentials

import (
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.ServeUpload)
	r.Get("/mine", h.ServeMine)

	return r
}
