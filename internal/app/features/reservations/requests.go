// internal/app/features/reservations/requests.go
package reservations

import (
	"context"
	"net/http"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/policy/reservationpolicy"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeCreate handles POST /reservations.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	var in createRequest
	if err := apperrors.DecodeJSON(w, r, &in); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Engine.CreateReservation(ctx, actor, assignment.ReservationInput{
		Reason:            in.Reason,
		Start:             in.Start,
		End:               in.End,
		Grade:             in.Grade,
		Group:             in.Group,
		Shift:             in.Shift,
		CommentsRequested: in.CommentsRequested,
	})
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, res)
}

// ServeMine handles GET /reservations/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rs, err := h.Engine.MyReservations(ctx, actor)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, newListResponse(rs))
}

// ServeList handles GET /reservations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rs, err := h.Engine.ListReservations(ctx, actor)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, newListResponse(rs))
}

// ServeGet handles GET /reservations/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	id, err := apperrors.ObjectIDParam(chi.URLParam(r, "id"), "reservation")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Engine.GetReservation(ctx, actor, id)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}
