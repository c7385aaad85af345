// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is anyone who has signed in through Google.
//
// NOTE:
//   - Administrator status is not stored here. It is derived per request
//     from the configured admin allow-list.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID   string             `bson:"google_id" json:"google_id"`
	Email      string             `bson:"email" json:"email"` // lowercase
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}
