package credentialstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps credential upload records in the `credentials` collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("credentials")}
}

// Create inserts a credential record. UploadedAt defaults to now and
// ExpiresAt to UploadedAt plus retention.
func (s *Store) Create(ctx context.Context, c models.Credential, retention time.Duration) (models.Credential, error) {
	c.ID = primitive.NewObjectID()
	if c.UploadedAt.IsZero() {
		c.UploadedAt = time.Now().UTC()
	}
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = c.UploadedAt.Add(retention)
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Credential{}, err
	}
	return c, nil
}

// GetByID loads a credential record.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Credential, error) {
	var c models.Credential
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Credential{}, apperr.NotFound("credential %s not found", id.Hex())
	}
	return c, err
}

// List returns every credential, newest first.
func (s *Store) List(ctx context.Context) ([]models.Credential, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
}

// ListByUser returns a user's credentials, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Credential, error) {
	return s.find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
}

// ListExpired returns credentials whose expiry is at or before now, oldest first.
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]models.Credential, error) {
	return s.find(ctx, bson.M{"expires_at": bson.M{"$lte": now}}, options.Find().SetSort(bson.D{{Key: "expires_at", Value: 1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Credential, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Credential{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a credential record. A missing record is not an error, so
// the sweep can be rerun after a partial failure.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
