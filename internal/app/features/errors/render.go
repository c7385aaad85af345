// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxJSONBody caps request bodies read by DecodeJSON.
const MaxJSONBody = 64 << 10

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON body into v. Malformed or oversized bodies and
// unknown fields become Validation errors. An empty body leaves v untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.Validation("request body is too large")
		}
		return apperr.Validation("invalid JSON body: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return nil
}

// ObjectIDParam parses a hex ObjectID taken from the URL. A malformed id is
// reported as not found, matching a well-formed id that does not exist.
func ObjectIDParam(raw, what string) (primitive.ObjectID, error) {
	if !inputval.IsValidObjectID(raw) {
		return primitive.NilObjectID, apperr.NotFound("%s %s not found", what, raw)
	}
	oid, _ := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	return oid, nil
}

// OptionalObjectID parses an optional id from a request body. Empty means nil.
func OptionalObjectID(raw, label string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.Validation("%s is not a valid id.", label)
	}
	return &oid, nil
}
