// internal/app/features/reservations/transitions.go
package reservations

import (
	"context"
	"net/http"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/policy/reservationpolicy"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// transition runs op against the reservation named in the URL and writes the
// updated reservation.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor assignment.Actor, id primitive.ObjectID) (models.Reservation, error)) {
	actor, _ := reservationpolicy.ActorFrom(r)

	id, err := apperrors.ObjectIDParam(chi.URLParam(r, "id"), "reservation")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := op(ctx, actor, id)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, res)
}

// ServeApprove handles POST /reservations/{id}/approve. The body may name a
// projector to bind when the reservation has none.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	var in approveRequest
	if err := apperrors.DecodeJSON(w, r, &in); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	projectorID, err := apperrors.OptionalObjectID(in.ProjectorID, "Projector")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, actor assignment.Actor, id primitive.ObjectID) (models.Reservation, error) {
		return h.Engine.Approve(ctx, actor, id, projectorID)
	})
}

// ServeReject handles POST /reservations/{id}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Engine.Reject)
}

// ServeFinalize handles POST /reservations/{id}/finalize.
func (h *Handler) ServeFinalize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Engine.Finalize)
}

// ServeOverride handles POST /reservations/{id}/override.
func (h *Handler) ServeOverride(w http.ResponseWriter, r *http.Request) {
	var in overrideRequest
	if err := apperrors.DecodeJSON(w, r, &in); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	projectorID, err := apperrors.OptionalObjectID(in.ProjectorID, "Projector")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, actor assignment.Actor, id primitive.ObjectID) (models.Reservation, error) {
		return h.Engine.Override(ctx, actor, id, in.State, projectorID)
	})
}

// ServeComment handles POST /reservations/{id}/comment.
func (h *Handler) ServeComment(w http.ResponseWriter, r *http.Request) {
	var in commentRequest
	if err := apperrors.DecodeJSON(w, r, &in); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, actor assignment.Actor, id primitive.ObjectID) (models.Reservation, error) {
		return h.Engine.Comment(ctx, actor, id, in.Comment)
	})
}
