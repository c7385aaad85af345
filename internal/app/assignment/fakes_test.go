package assignment_test

import (
	"context"
	"errors"
	"sync"
	"time"

	projectorstore "github.com/dalemusser/projectorhub/internal/app/store/projectors"
	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

// fakeRegistry is an in-memory Registry. Claim holds the mutex across the
// check and the write, as the Mongo conditional update does.
type fakeRegistry struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	items map[primitive.ObjectID]models.Projector

	failSetStateTo string // SetState to this state fails
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{items: map[primitive.ObjectID]models.Projector{}}
}

func (f *fakeRegistry) add(sc models.Scope, state string) models.Projector {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Projector{
		ID:        primitive.NewObjectID(),
		Code:      projectorstore.GenerateCode("PRY", sc),
		Scope:     sc,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
	f.items[p.ID] = p
	f.order = append(f.order, p.ID)
	return p
}

func (f *fakeRegistry) get(id primitive.ObjectID) models.Projector {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeRegistry) Create(_ context.Context, sc models.Scope, initialState string) (models.Projector, error) {
	f.mu.Lock()
	for _, p := range f.items {
		if p.Scope == sc {
			f.mu.Unlock()
			return models.Projector{}, apperr.DuplicateAssignment("duplicate scope")
		}
	}
	f.mu.Unlock()
	if initialState == "" {
		initialState = models.DefaultProjectorState
	}
	return f.add(sc, initialState), nil
}

func (f *fakeRegistry) GetByID(_ context.Context, id primitive.ObjectID) (models.Projector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return models.Projector{}, apperr.NotFound("projector not found")
	}
	return p, nil
}

func (f *fakeRegistry) List(_ context.Context) ([]models.Projector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Projector, 0, len(f.order))
	for _, id := range f.order {
		if p, ok := f.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRegistry) FindEligible(_ context.Context, sc models.Scope) (models.Projector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if p, ok := f.items[id]; ok && p.Scope == sc && p.State == models.ProjectorReturned {
			return p, nil
		}
	}
	return models.Projector{}, apperr.NoResourceAvailable("none")
}

func (f *fakeRegistry) Claim(_ context.Context, sc models.Scope, holder primitive.ObjectID) (models.Projector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		p, ok := f.items[id]
		if ok && p.Scope == sc && p.State == models.ProjectorReturned {
			p.State = models.ProjectorInUse
			p.HolderID = &holder
			f.items[id] = p
			return p, nil
		}
	}
	return models.Projector{}, apperr.NoResourceAvailable("no units available for this scope")
}

func (f *fakeRegistry) ClaimByID(_ context.Context, id, holder primitive.ObjectID) (models.Projector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return models.Projector{}, apperr.NotFound("projector not found")
	}
	if p.State != models.ProjectorReturned {
		return models.Projector{}, apperr.NoResourceAvailable("projector not available")
	}
	p.State = models.ProjectorInUse
	p.HolderID = &holder
	f.items[id] = p
	return p, nil
}

func (f *fakeRegistry) SetState(_ context.Context, id primitive.ObjectID, state string, holder *primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetStateTo != "" && f.failSetStateTo == state {
		return errStoreDown
	}
	p, ok := f.items[id]
	if !ok {
		return apperr.NotFound("projector not found")
	}
	p.State = state
	p.HolderID = holder
	f.items[id] = p
	return nil
}

func (f *fakeRegistry) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperr.NotFound("projector not found")
	}
	delete(f.items, id)
	return nil
}

// fakeLedger is an in-memory Ledger.
type fakeLedger struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	items map[primitive.ObjectID]models.Reservation

	failCreate   bool
	failSetState bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{items: map[primitive.ObjectID]models.Reservation{}}
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakeLedger) put(r models.Reservation) models.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.items[r.ID] = r
	f.order = append(f.order, r.ID)
	return r
}

func (f *fakeLedger) Create(_ context.Context, r models.Reservation) (models.Reservation, error) {
	if f.failCreate {
		return models.Reservation{}, errStoreDown
	}
	r.ID = primitive.NewObjectID()
	r.State = models.ReservationPending
	r.CreatedAt = time.Now().UTC()
	return f.put(r), nil
}

func (f *fakeLedger) GetByID(_ context.Context, id primitive.ObjectID) (models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return models.Reservation{}, apperr.NotFound("reservation not found")
	}
	return r, nil
}

func (f *fakeLedger) filter(keep func(models.Reservation) bool) []models.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Reservation{}
	for _, id := range f.order {
		if r, ok := f.items[id]; ok && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeLedger) List(_ context.Context) ([]models.Reservation, error) {
	return f.filter(func(models.Reservation) bool { return true }), nil
}

func (f *fakeLedger) ListByRequester(_ context.Context, id primitive.ObjectID) ([]models.Reservation, error) {
	return f.filter(func(r models.Reservation) bool { return r.RequesterID == id }), nil
}

func (f *fakeLedger) ListBetween(_ context.Context, from, to time.Time) ([]models.Reservation, error) {
	return f.filter(func(r models.Reservation) bool {
		return !r.Start.Before(from) && r.Start.Before(to)
	}), nil
}

func (f *fakeLedger) CountActiveByProjector(_ context.Context, id primitive.ObjectID) (int64, error) {
	rs := f.filter(func(r models.Reservation) bool {
		return r.ProjectorID != nil && *r.ProjectorID == id &&
			(r.State == models.ReservationPending || r.State == models.ReservationApproved)
	})
	return int64(len(rs)), nil
}

func (f *fakeLedger) SetState(_ context.Context, id primitive.ObjectID, state string, b models.Binding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetState {
		return errStoreDown
	}
	r, ok := f.items[id]
	if !ok {
		return apperr.NotFound("reservation not found")
	}
	r.State = state
	if b.Change {
		r.ProjectorID = b.ProjectorID
	}
	f.items[id] = r
	return nil
}

func (f *fakeLedger) SetComment(_ context.Context, id primitive.ObjectID, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return apperr.NotFound("reservation not found")
	}
	r.AdminComment = comment
	r.CommentsAdded = true
	f.items[id] = r
	return nil
}

// fakeNotifier records notifications and can be told to fail.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeNotifier) Notify(_ context.Context, _ primitive.ObjectID, _ string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
