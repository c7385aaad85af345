package assignment

import "github.com/dalemusser/projectorhub/internal/domain/models"

// transitions lists the legal reservation edges outside Override. Anything
// not listed, including a repeat of the same edge, is an invalid state.
var transitions = map[string][]string{
	models.ReservationPending:  {models.ReservationApproved, models.ReservationRejected},
	models.ReservationApproved: {models.ReservationFinalized},
}

// CanTransition reports whether from -> to is a legal non-override edge.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
