// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"
	"strconv"

	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/policy/reservationpolicy"
	notificationstore "github.com/dalemusser/projectorhub/internal/app/store/notifications"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler serves the signed-in user's notifications.
type Handler struct {
	Store *notificationstore.Store
	Log   *zap.Logger
}

func NewHandler(store *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}

type listResponse struct {
	Unread        int64                 `json:"unread"`
	Notifications []models.Notification `json:"notifications"`
}

// ServeList handles GET /notifications?limit=N, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	limit := int64(defaultLimit)
	if raw := query.Get(r, "limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			apperrors.BadRequest(w, "limit must be a positive integer.")
			return
		}
		limit = min(n, maxLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.ListByUser(ctx, actor.UserID, limit)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	unread, err := h.Store.CountUnread(ctx, actor.UserID)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	apperrors.WriteJSON(w, http.StatusOK, listResponse{Unread: unread, Notifications: list})
}

// ServeMarkRead handles POST /notifications/{id}/read. Another user's
// notification is reported as not found.
func (h *Handler) ServeMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	id, err := apperrors.ObjectIDParam(chi.URLParam(r, "id"), "notification")
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.MarkRead(ctx, id, actor.UserID); err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
