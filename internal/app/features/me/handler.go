// internal/app/features/me/handler.go
package me

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/policy/reservationpolicy"
	notificationstore "github.com/dalemusser/projectorhub/internal/app/store/notifications"
	userstore "github.com/dalemusser/projectorhub/internal/app/store/users"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's profile.
type Handler struct {
	Users         *userstore.Store
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(users *userstore.Store, notes *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         users,
		Notifications: notes,
		Log:           logger,
	}
}

type meResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	IsAdmin     bool       `json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Unread      int64      `json:"unread_notifications"`
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := reservationpolicy.ActorFrom(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		apperrors.Write(w, r, h.Log, err)
		return
	}

	resp := meResponse{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		FullName:    u.FullName,
		IsAdmin:     actor.IsAdmin,
		LastLoginAt: u.LastLoginAt,
	}
	if h.Notifications != nil {
		n, err := h.Notifications.CountUnread(ctx, actor.UserID)
		if err != nil {
			h.Log.Warn("count unread notifications failed", zap.Error(err))
		}
		resp.Unread = n
	}
	apperrors.WriteJSON(w, http.StatusOK, resp)
}
