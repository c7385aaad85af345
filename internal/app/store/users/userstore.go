package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/normalize"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GoogleProfile is the subset of the Google userinfo response we keep.
type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
}

// UpsertGoogle creates the user on first sign-in and refreshes the email,
// name and last login on later ones. Users are keyed by Google subject ID.
func (s *Store) UpsertGoogle(ctx context.Context, p GoogleProfile) (models.User, error) {
	gid := strings.TrimSpace(p.GoogleID)
	if gid == "" {
		return models.User{}, apperr.Validation("google id is required")
	}
	email := normalize.Email(p.Email)
	name := normalize.Name(p.Name)
	if name == "" {
		name = email
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":         email,
			"full_name":     name,
			"full_name_ci":  text.Fold(name),
			"last_login_at": now,
			"updated_at":    now,
		},
		// google_id comes from the equality filter on insert.
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"google_id": gid}, update, opts).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.NotFound("user %s not found", id.Hex())
	}
	return u, err
}
