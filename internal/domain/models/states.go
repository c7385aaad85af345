// internal/domain/models/states.go
package models

// Canonical state identifiers.
//
// These values are stored in the database and are used throughout the
// application as stable, language-agnostic keys.

// Projector lifecycle states.
const (
	ProjectorAvailable = "available"
	ProjectorInUse     = "in_use"
	ProjectorReturned  = "returned"
)

// ProjectorStates is the full set of allowed projector states.
var ProjectorStates = []string{
	ProjectorAvailable,
	ProjectorInUse,
	ProjectorReturned,
}

// DefaultProjectorState is used when a projector is created without an
// explicit state. Returned units are in the loan pool.
const DefaultProjectorState = ProjectorReturned

// Reservation lifecycle states.
const (
	ReservationPending   = "pending"
	ReservationApproved  = "approved"
	ReservationRejected  = "rejected"
	ReservationFinalized = "finalized"
)

// ReservationStates is the full set of allowed reservation states.
var ReservationStates = []string{
	ReservationPending,
	ReservationApproved,
	ReservationRejected,
	ReservationFinalized,
}

// Shifts.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// Shifts is the full set of allowed shifts.
var Shifts = []string{ShiftMorning, ShiftEvening}

// IsProjectorState reports whether s is a known projector state.
func IsProjectorState(s string) bool { return contains(ProjectorStates, s) }

// IsReservationState reports whether s is a known reservation state.
func IsReservationState(s string) bool { return contains(ReservationStates, s) }

// IsShift reports whether s is a known shift.
func IsShift(s string) bool { return contains(Shifts, s) }

// IsTerminalReservationState reports whether no further transition is
// expected from s.
func IsTerminalReservationState(s string) bool {
	return s == ReservationRejected || s == ReservationFinalized
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
