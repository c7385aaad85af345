package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a signed-up user.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		GoogleID:   "google-" + primitive.NewObjectID().Hex(),
		Email:      strings.ToLower(email),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProjector inserts a projector directly, bypassing code generation.
func (f *Fixtures) CreateProjector(ctx context.Context, grade int, group, shift, state string) models.Projector {
	f.t.Helper()

	p := models.Projector{
		ID:        primitive.NewObjectID(),
		Code:      "PRY-TEST-" + primitive.NewObjectID().Hex()[18:],
		Scope:     models.Scope{Grade: grade, Group: strings.ToUpper(group), Shift: shift},
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("projectors").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test projector: %v", err)
	}
	return p
}

// CreateReservation inserts a reservation with the given state and binding.
func (f *Fixtures) CreateReservation(ctx context.Context, requester primitive.ObjectID, projector *primitive.ObjectID, state string, start time.Time) models.Reservation {
	f.t.Helper()

	r := models.Reservation{
		ID:          primitive.NewObjectID(),
		RequesterID: requester,
		ProjectorID: projector,
		Reason:      "Class presentation",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		State:       state,
		Scope:       models.Scope{Grade: 1, Group: "A", Shift: models.ShiftMorning},
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("reservations").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test reservation: %v", err)
	}
	return r
}

// CreateCredential inserts a credential record.
func (f *Fixtures) CreateCredential(ctx context.Context, userID primitive.ObjectID, key string, uploadedAt time.Time) models.Credential {
	f.t.Helper()

	c := models.Credential{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		FileName:   "credential.pdf",
		StorageKey: key,
		URL:        "/files/credentials/" + key,
		Size:       1024,
		UploadedAt: uploadedAt,
		ExpiresAt:  uploadedAt.Add(7 * 24 * time.Hour),
	}
	if _, err := f.db.Collection("credentials").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test credential: %v", err)
	}
	return c
}

// Day returns 09:00 UTC on the day offset days after today.
func Day(offset int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}
