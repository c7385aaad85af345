package assignment

import (
	"context"
	"time"

	"github.com/dalemusser/projectorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registry is the resource registry the engine operates over.
// projectorstore.Store implements it.
type Registry interface {
	Create(ctx context.Context, sc models.Scope, initialState string) (models.Projector, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Projector, error)
	List(ctx context.Context) ([]models.Projector, error)
	FindEligible(ctx context.Context, sc models.Scope) (models.Projector, error)
	Claim(ctx context.Context, sc models.Scope, holder primitive.ObjectID) (models.Projector, error)
	ClaimByID(ctx context.Context, id, holder primitive.ObjectID) (models.Projector, error)
	SetState(ctx context.Context, id primitive.ObjectID, state string, holder *primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Ledger is the reservation ledger the engine operates over.
// reservationstore.Store implements it.
type Ledger interface {
	Create(ctx context.Context, r models.Reservation) (models.Reservation, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	ListByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.Reservation, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
	CountActiveByProjector(ctx context.Context, projectorID primitive.ObjectID) (int64, error)
	SetState(ctx context.Context, id primitive.ObjectID, state string, b models.Binding) error
	SetComment(ctx context.Context, id primitive.ObjectID, comment string) error
}

// Notifier delivers a message to a user. Failures are logged by the engine
// and never undo the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, kind, message string) error
}

// Actor is the caller of an engine operation.
type Actor struct {
	UserID  primitive.ObjectID
	IsAdmin bool
}
