// internal/app/features/reservations/types.go
package reservations

import (
	"time"

	"github.com/dalemusser/projectorhub/internal/domain/models"
)

// createRequest is the body of POST /reservations. Times are RFC 3339.
type createRequest struct {
	Reason            string    `json:"reason"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Grade             int       `json:"grade"`
	Group             string    `json:"group"`
	Shift             string    `json:"shift"`
	CommentsRequested bool      `json:"comments_requested"`
}

// approveRequest is the optional body of POST /reservations/{id}/approve.
type approveRequest struct {
	ProjectorID string `json:"projector_id"`
}

// overrideRequest is the body of POST /reservations/{id}/override. An empty
// projector_id clears the binding.
type overrideRequest struct {
	State       string `json:"state"`
	ProjectorID string `json:"projector_id"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type listResponse struct {
	Reservations []models.Reservation `json:"reservations"`
}

func newListResponse(rs []models.Reservation) listResponse {
	if rs == nil {
		rs = []models.Reservation{}
	}
	return listResponse{Reservations: rs}
}
