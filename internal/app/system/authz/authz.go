// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/dalemusser/projectorhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllowList is the set of administrator emails. It is built once from
// configuration and injected where administrator status is decided.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList builds an AllowList from email addresses. Matching is
// case-insensitive and ignores surrounding whitespace; blanks are dropped.
func NewAllowList(emails ...string) AllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = normalize.Email(e)
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return AllowList{emails: set}
}

// ParseAllowList builds an AllowList from a comma-separated list, the form
// used by the admin_emails config key.
func ParseAllowList(csv string) AllowList {
	return NewAllowList(strings.Split(csv, ",")...)
}

// Contains reports whether email is an administrator.
func (a AllowList) Contains(email string) bool {
	_, ok := a.emails[normalize.Email(email)]
	return ok
}

// Len returns the number of administrators.
func (a AllowList) Len() int { return len(a.emails) }

// UserCtx returns the user's name, Mongo ObjectID, admin flag, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false, false. Callers can trust that ok=true means a valid,
// authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, isAdmin bool, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false, false
	}
	return user.Name, userID, user.IsAdmin, true
}

// IsAdmin reports whether the current request's user is an administrator.
func IsAdmin(r *http.Request) bool {
	_, _, admin, ok := UserCtx(r)
	return ok && admin
}
