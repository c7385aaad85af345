package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reservation is a loan request in the `reservations` collection.
//
// ProjectorID is nil until a unit is bound. While bound, the unit's state
// follows the reservation's state (see package assignment).
type Reservation struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RequesterID primitive.ObjectID  `bson:"requester_id" json:"requester_id"`
	ProjectorID *primitive.ObjectID `bson:"projector_id" json:"projector_id,omitempty"`

	Reason string    `bson:"reason" json:"reason"`
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	State  string    `bson:"state" json:"state"` // pending | approved | rejected | finalized

	// Scope the request was made for.
	Scope `bson:",inline"`

	CommentsRequested bool   `bson:"comments_requested" json:"comments_requested"`
	CommentsAdded     bool   `bson:"comments_added" json:"comments_added"`
	AdminComment      string `bson:"admin_comment,omitempty" json:"admin_comment,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
