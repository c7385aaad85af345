package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope identifies the class-section-shift a projector serves or a
// reservation is made for.
type Scope struct {
	Grade int    `bson:"grade" json:"grade"`
	Group string `bson:"group" json:"group"` // upper-case
	Shift string `bson:"shift" json:"shift"` // morning | evening
}

// Projector is a single loanable unit in the `projectors` collection.
//
// (grade, group, shift) is unique across the collection, as is Code.
type Projector struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code  string             `bson:"code" json:"code"`
	Scope `bson:",inline"`
	State string `bson:"state" json:"state"` // available | in_use | returned

	HolderID *primitive.ObjectID `bson:"holder_id,omitempty" json:"holder_id,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
