package assignment

import (
	"fmt"
	"strings"
)

// BindingMode selects when a projector is bound to a reservation.
type BindingMode string

const (
	// Eager claims a projector when the reservation is created.
	Eager BindingMode = "eager"
	// Deferred creates the reservation unbound; an administrator binds a
	// projector at approval time.
	Deferred BindingMode = "deferred"
)

// ParseBindingMode parses a configuration value. Empty means Eager.
func ParseBindingMode(s string) (BindingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Eager):
		return Eager, nil
	case string(Deferred):
		return Deferred, nil
	}
	return "", fmt.Errorf("binding mode must be %q or %q, got %q", Eager, Deferred, s)
}
