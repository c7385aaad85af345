// internal/app/store/projectors/projectorstore.go
package projectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/normalize"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCodePrefix starts every generated projector code.
const DefaultCodePrefix = "PRY"

// Index names. The duplicate-key message names the violated index, which is
// how Create tells a scope clash from a code collision.
const (
	ScopeIndexName = "uniq_projectors_grade_group_shift"
	CodeIndexName  = "uniq_projectors_code"
)

const codeAttempts = 3

// Store is the resource registry backed by the `projectors` collection.
type Store struct {
	c      *mongo.Collection
	prefix string
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projectors"), prefix: DefaultCodePrefix}
}

// WithCodePrefix returns a copy of the store that generates codes with prefix.
func (s *Store) WithCodePrefix(prefix string) *Store {
	cp := *s
	if p := strings.TrimSpace(prefix); p != "" {
		cp.prefix = strings.ToUpper(p)
	}
	return &cp
}

// NormalizeScope trims and upper-cases the group and lower-cases the shift.
func NormalizeScope(sc models.Scope) models.Scope {
	sc.Group = normalize.Group(sc.Group)
	sc.Shift = normalize.Shift(sc.Shift)
	return sc
}

// GenerateCode returns a code of the form PREFIX-{grade}{GROUP}-{XXXX}.
func GenerateCode(prefix string, sc models.Scope) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%d%s-%s", prefix, sc.Grade, sc.Group, suffix)
}

// Create inserts a new projector for the scope. An empty initialState means
// models.DefaultProjectorState.
//
// A clash on (grade, group, shift) returns a DuplicateAssignment error. A clash
// on the generated code is retried with a fresh code.
func (s *Store) Create(ctx context.Context, sc models.Scope, initialState string) (models.Projector, error) {
	sc = NormalizeScope(sc)
	if sc.Grade < 1 {
		return models.Projector{}, apperr.Validation("grade must be a positive number")
	}
	if sc.Group == "" {
		return models.Projector{}, apperr.Validation("group is required")
	}
	if !models.IsShift(sc.Shift) {
		return models.Projector{}, apperr.Validation("shift must be 'morning' or 'evening'")
	}
	if initialState == "" {
		initialState = models.DefaultProjectorState
	}
	if !models.IsProjectorState(initialState) {
		return models.Projector{}, apperr.InvalidState("unknown projector state %q", initialState)
	}

	p := models.Projector{
		Scope:     sc,
		State:     initialState,
		CreatedAt: time.Now().UTC(),
	}

	var err error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		p.ID = primitive.NewObjectID()
		p.Code = GenerateCode(s.prefix, sc)
		_, err = s.c.InsertOne(ctx, p)
		if err == nil {
			return p, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Projector{}, err
		}
		if !strings.Contains(err.Error(), CodeIndexName) {
			return models.Projector{}, apperr.DuplicateAssignment(
				"a projector already serves grade %d group %s (%s)", sc.Grade, sc.Group, sc.Shift)
		}
	}
	return models.Projector{}, fmt.Errorf("generate projector code: %w", err)
}

// GetByID returns a projector by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Projector, error) {
	var p models.Projector
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Projector{}, apperr.NotFound("projector %s not found", id.Hex())
	}
	return p, err
}

// List returns every projector ordered by grade, group and shift.
func (s *Store) List(ctx context.Context) ([]models.Projector, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "grade", Value: 1},
		{Key: "group", Value: 1},
		{Key: "shift", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Projector{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func eligibleFilter(sc models.Scope) bson.M {
	return bson.M{
		"grade": sc.Grade,
		"group": sc.Group,
		"shift": sc.Shift,
		"state": models.ProjectorReturned,
	}
}

// FindEligible returns the first returned projector for the scope in
// insertion order. It does not modify anything; use Claim to take it.
func (s *Store) FindEligible(ctx context.Context, sc models.Scope) (models.Projector, error) {
	sc = NormalizeScope(sc)
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	var p models.Projector
	err := s.c.FindOne(ctx, eligibleFilter(sc), opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Projector{}, noneAvailable(sc)
	}
	return p, err
}

// Claim atomically moves the first returned projector for the scope to
// in_use and records the holder. Concurrent claims for one projector yield
// exactly one winner; the others get a NoResourceAvailable error.
func (s *Store) Claim(ctx context.Context, sc models.Scope, holder primitive.ObjectID) (models.Projector, error) {
	sc = NormalizeScope(sc)
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetReturnDocument(options.After)

	var p models.Projector
	err := s.c.FindOneAndUpdate(ctx, eligibleFilter(sc), claimUpdate(holder), opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Projector{}, noneAvailable(sc)
	}
	return p, err
}

// ClaimByID claims a specific projector with the same guard as Claim.
func (s *Store) ClaimByID(ctx context.Context, id, holder primitive.ObjectID) (models.Projector, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id, "state": models.ProjectorReturned}

	var p models.Projector
	err := s.c.FindOneAndUpdate(ctx, filter, claimUpdate(holder), opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return models.Projector{}, getErr
		}
		return models.Projector{}, apperr.NoResourceAvailable("projector %s is not available", id.Hex())
	}
	return p, err
}

func claimUpdate(holder primitive.ObjectID) bson.M {
	return bson.M{"$set": bson.M{
		"state":      models.ProjectorInUse,
		"holder_id":  holder,
		"updated_at": time.Now().UTC(),
	}}
}

// SetState overwrites the state and holder unconditionally. A nil holder
// clears it.
func (s *Store) SetState(ctx context.Context, id primitive.ObjectID, state string, holder *primitive.ObjectID) error {
	if !models.IsProjectorState(state) {
		return apperr.InvalidState("unknown projector state %q", state)
	}
	update := bson.M{"$set": bson.M{"state": state, "updated_at": time.Now().UTC()}}
	if holder != nil {
		update["$set"].(bson.M)["holder_id"] = *holder
	} else {
		update["$unset"] = bson.M{"holder_id": ""}
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("projector %s not found", id.Hex())
	}
	return nil
}

// Delete removes a projector. It does not check for reservations that still
// reference it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("projector %s not found", id.Hex())
	}
	return nil
}

func noneAvailable(sc models.Scope) error {
	return apperr.NoResourceAvailable("no projectors available for grade %d group %s (%s)", sc.Grade, sc.Group, sc.Shift)
}
