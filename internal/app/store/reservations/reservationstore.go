// internal/app/store/reservations/reservationstore.go
package reservationstore

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

// Store is the reservation ledger backed by the `reservations` collection.
// It stores what it is told; transition rules live in package assignment.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reservations")}
}

// Create inserts a reservation. The state is always pending regardless of
// what the caller set; ID and CreatedAt are assigned here.
func (s *Store) Create(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	r.ID = primitive.NewObjectID()
	r.State = models.ReservationPending
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = nil

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Reservation{}, err
	}
	return r, nil
}

// GetByID returns a reservation by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Reservation, error) {
	var r models.Reservation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reservation{}, apperr.NotFound("reservation %s not found", id.Hex())
	}
	return r, err
}

// List returns all reservations, most recent start first.
func (s *Store) List(ctx context.Context) ([]models.Reservation, error) {
	return s.find(ctx, bson.M{})
}

// ListByRequester returns the requester's reservations, most recent start first.
func (s *Store) ListByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.Reservation, error) {
	return s.find(ctx, bson.M{"requester_id": requesterID})
}

// ListBetween returns reservations whose start falls in [from, to).
func (s *Store) ListBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	return s.find(ctx, bson.M{"start": bson.M{"$gte": from, "$lt": to}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Reservation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActiveByProjector counts pending or approved reservations bound to the
// projector.
func (s *Store) CountActiveByProjector(ctx context.Context, projectorID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"projector_id": projectorID,
		"state":        bson.M{"$in": []string{models.ReservationPending, models.ReservationApproved}},
	})
}

// SetState overwrites the state and applies the binding. It does not check
// whether the transition is legal.
func (s *Store) SetState(ctx context.Context, id primitive.ObjectID, state string, b models.Binding) error {
	if !models.IsReservationState(state) {
		return apperr.InvalidState("unknown reservation state %q", state)
	}
	set := bson.M{"state": state, "updated_at": time.Now().UTC()}
	if b.Change {
		set["projector_id"] = b.ProjectorID
	}
	return s.update(ctx, id, set)
}

// SetComment records an administrator comment.
func (s *Store) SetComment(ctx context.Context, id primitive.ObjectID, comment string) error {
	return s.update(ctx, id, bson.M{
		"admin_comment":  comment,
		"comments_added": true,
		"updated_at":     time.Now().UTC(),
	})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("reservation %s not found", id.Hex())
	}
	return nil
}
