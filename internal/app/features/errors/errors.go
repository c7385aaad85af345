// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/authz"
	"go.uber.org/zap"
)

// KindInternal is reported for errors outside the apperr taxonomy.
const KindInternal = "internal"

// body is the JSON shape of every error response.
type body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFor maps an error to an HTTP status. InvalidState means 403 for a
// caller who is not an administrator, since that is how the engine refuses
// admin-only transitions.
func StatusFor(err error, isAdmin bool) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindDuplicateAssignment, apperr.KindNoResourceAvailable:
		return http.StatusConflict
	case apperr.KindInvalidState:
		if !isAdmin {
			return http.StatusForbidden
		}
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Write sends err as {"error": kind, "message": text}. Unclassified errors
// are logged and reported as internal without detail.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := StatusFor(err, authz.IsAdmin(r))
	kind := string(apperr.KindOf(err))
	if kind == "" {
		kind = KindInternal
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
	}
	WriteJSON(w, status, body{Error: kind, Message: apperr.MessageOf(err)})
}

// BadRequest writes a validation error with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, body{Error: string(apperr.KindValidation), Message: msg})
}

// RouteNotFound answers requests no route matched.
func RouteNotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, body{Error: string(apperr.KindNotFound), Message: "no route for " + r.URL.Path})
}

// MethodNotAllowed answers a known path requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, body{Error: "method_not_allowed", Message: r.Method + " is not allowed here"})
}
