// internal/app/features/projectors/projectors.go
package projectors

import (
	"context"
	"net/http"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/policy/reservationpolicy"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /projectors.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Engine.ListProjectors(ctx, actor)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Projector{}
	}
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{"projectors": list})
}

// ServeCreate handles POST /projectors.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	var in createRequest
	if err := apperrors.DecodeJSON(w, r, &in); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Engine.CreateProjector(ctx, actor, assignment.ProjectorInput{
		Grade: in.Grade,
		Group: in.Group,
		Shift: in.Shift,
		State: in.State,
	})
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusCreated, p)
}

// ServeSetState handles POST /projectors/{id}/state.
func (h *Handler) ServeSetState(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	id, err := apperrors.ObjectIDParam(chi.URLParam(r, "id"), "projector")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	var in stateRequest
	if err := apperrors.DecodeJSON(w, r, &in); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Engine.SetProjectorState(ctx, actor, id, in.State)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, p)
}

// ServeDelete handles DELETE /projectors/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	id, err := apperrors.ObjectIDParam(chi.URLParam(r, "id"), "projector")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Engine.DeleteProjector(ctx, actor, id); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
