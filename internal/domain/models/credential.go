package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credential is an uploaded PDF credential. The file itself lives in
// artifact storage under StorageKey; the record expires at ExpiresAt and is
// removed by the weekly sweep.
type Credential struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	FileName   string             `bson:"file_name" json:"file_name"`
	StorageKey string             `bson:"storage_key" json:"-"`
	URL        string             `bson:"url" json:"url"`
	Size       int64              `bson:"size" json:"size"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploaded_at"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expires_at"`
}
