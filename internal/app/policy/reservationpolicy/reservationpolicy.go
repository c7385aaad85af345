// Package reservationpolicy maps the signed-in user onto the actor the
// assignment engine authorizes against.
//
// Authorization rules (enforced by the engine):
//   - Administrators (admin allow-list) can do everything
//   - Signed-in users can create reservations and see their own
//   - Anyone else is refused
package reservationpolicy

import (
	"net/http"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"github.com/dalemusser/projectorhub/internal/app/system/authz"
)

// ActorFrom returns the engine actor for the signed-in user. ok is false
// when nobody is signed in or the session carries a malformed user id.
func ActorFrom(r *http.Request) (assignment.Actor, bool) {
	_, userID, isAdmin, ok := authz.UserCtx(r)
	if !ok {
		return assignment.Actor{}, false
	}
	return assignment.Actor{UserID: userID, IsAdmin: isAdmin}, true
}
