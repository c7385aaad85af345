// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireAdmin)
		rr.Get("/reservations", h.ServeReservations)
		rr.Get("/reservations.csv", h.ServeReservationsCSV)
	})

	return r
}
