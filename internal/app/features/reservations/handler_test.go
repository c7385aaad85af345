package reservations_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"github.com/dalemusser/projectorhub/internal/app/features/reservations"
	projectorstore "github.com/dalemusser/projectorhub/internal/app/store/projectors"
	reservationstore "github.com/dalemusser/projectorhub/internal/app/store/reservations"
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/dalemusser/projectorhub/internal/app/system/indexes"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/projectorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	h  *reservations.Handler
	fx *testutil.Fixtures
}

func newEnv(t *testing.T, mode assignment.BindingMode) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	engine := assignment.New(projectorstore.New(db), reservationstore.New(db), mode, nil, zap.NewNop())
	return env{h: reservations.NewHandler(engine, zap.NewNop()), fx: testutil.NewFixtures(t, db)}
}

func createBody(start time.Time) map[string]any {
	return map[string]any{
		"reason": "Thesis defense",
		"start":  start.Format(time.RFC3339),
		"end":    start.Add(2 * time.Hour).Format(time.RFC3339),
		"grade":  1,
		"group":  "a",
		"shift":  "morning",
	}
}

func (e env) create(t *testing.T, user testutil.TestUser) models.Reservation {
	t.Helper()
	rec := testutil.NewRecorder()
	e.h.ServeCreate(rec, testutil.NewJSONRequest("POST", "/reservations", createBody(testutil.Day(1)), user))
	rec.AssertStatus(t, http.StatusCreated)
	var res models.Reservation
	rec.DecodeJSON(t, &res)
	return res
}

func (e env) post(t *testing.T, serve http.HandlerFunc, id primitive.ObjectID, body any, user testutil.TestUser) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest("POST", "/reservations/"+id.Hex(), body, user)
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec := testutil.NewRecorder()
	serve(rec, req)
	return rec
}

func TestCreate_EagerBindsProjector(t *testing.T) {
	e := newEnv(t, assignment.Eager)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	p := e.fx.CreateProjector(ctx, 1, "A", "morning", models.ProjectorReturned)

	res := e.create(t, testutil.StudentUser())

	if res.State != models.ReservationPending {
		t.Errorf("state = %q, want pending", res.State)
	}
	if res.ProjectorID == nil || *res.ProjectorID != p.ID {
		t.Errorf("projector_id = %v, want %s", res.ProjectorID, p.ID.Hex())
	}
}

func TestCreate_NoProjectorAvailable(t *testing.T) {
	e := newEnv(t, assignment.Eager)

	rec := testutil.NewRecorder()
	e.h.ServeCreate(rec, testutil.NewJSONRequest("POST", "/reservations", createBody(testutil.Day(1)), testutil.StudentUser()))

	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, `"error":"no_resource_available"`)
}

func TestCreate_EndBeforeStart(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	body := createBody(testutil.Day(1))
	body["end"] = testutil.Day(0).Format(time.RFC3339)

	rec := testutil.NewRecorder()
	e.h.ServeCreate(rec, testutil.NewJSONRequest("POST", "/reservations", body, testutil.StudentUser()))

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"error":"validation"`)
}

func TestCreate_MalformedTime(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	body := createBody(testutil.Day(1))
	body["start"] = "tomorrow"

	rec := testutil.NewRecorder()
	e.h.ServeCreate(rec, testutil.NewJSONRequest("POST", "/reservations", body, testutil.StudentUser()))

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestLifecycle_ApproveThenFinalize(t *testing.T) {
	e := newEnv(t, assignment.Eager)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateProjector(ctx, 1, "A", "morning", models.ProjectorReturned)
	admin := testutil.AdminUser()

	res := e.create(t, testutil.StudentUser())

	rec := e.post(t, e.h.ServeApprove, res.ID, nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"state":"approved"`)

	rec = e.post(t, e.h.ServeFinalize, res.ID, nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	var done models.Reservation
	rec.DecodeJSON(t, &done)
	if done.State != models.ReservationFinalized || done.ProjectorID != nil {
		t.Errorf("finalized reservation = %+v", done)
	}

	rec = e.post(t, e.h.ServeReject, res.ID, nil, admin)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, `"error":"invalid_state"`)
}

func TestApprove_NonAdminForbidden(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	student := testutil.StudentUser()
	res := e.create(t, student)

	rec := e.post(t, e.h.ServeApprove, res.ID, nil, student)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestApprove_DeferredBindsNamedProjector(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	p := e.fx.CreateProjector(ctx, 5, "E", "evening", models.ProjectorReturned)
	res := e.create(t, testutil.StudentUser())

	rec := e.post(t, e.h.ServeApprove, res.ID, map[string]string{"projector_id": p.ID.Hex()}, testutil.AdminUser())

	rec.AssertStatus(t, http.StatusOK)
	var got models.Reservation
	rec.DecodeJSON(t, &got)
	if got.ProjectorID == nil || *got.ProjectorID != p.ID {
		t.Errorf("projector_id = %v, want %s", got.ProjectorID, p.ID.Hex())
	}
}

func TestApprove_BadProjectorID(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	res := e.create(t, testutil.StudentUser())

	rec := e.post(t, e.h.ServeApprove, res.ID, map[string]string{"projector_id": "xyz"}, testutil.AdminUser())

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestOverride_UnknownState(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	res := e.create(t, testutil.StudentUser())

	rec := e.post(t, e.h.ServeOverride, res.ID, map[string]string{"state": "lost"}, testutil.AdminUser())

	rec.AssertStatus(t, http.StatusConflict)
}

func TestOverride_AnyToAny(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	res := e.create(t, testutil.StudentUser())
	admin := testutil.AdminUser()

	e.post(t, e.h.ServeReject, res.ID, nil, admin).AssertStatus(t, http.StatusOK)
	rec := e.post(t, e.h.ServeOverride, res.ID, map[string]string{"state": "approved"}, admin)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"state":"approved"`)
}

func TestComment(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	res := e.create(t, testutil.StudentUser())

	rec := e.post(t, e.h.ServeComment, res.ID, map[string]string{"comment": "Pick up at <b>room 4</b>"}, testutil.AdminUser())

	rec.AssertStatus(t, http.StatusOK)
	var got models.Reservation
	rec.DecodeJSON(t, &got)
	if !got.CommentsAdded || got.AdminComment != "Pick up at room 4" {
		t.Errorf("comment = %q added = %v", got.AdminComment, got.CommentsAdded)
	}
}

func TestGet_OwnerAdminAndStranger(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	owner := testutil.StudentUser()
	res := e.create(t, owner)

	get := func(user testutil.TestUser, id string) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/reservations/"+id, user), "id", id)
		rec := testutil.NewRecorder()
		e.h.ServeGet(rec, req)
		return rec
	}

	get(owner, res.ID.Hex()).AssertStatus(t, http.StatusOK)
	get(testutil.AdminUser(), res.ID.Hex()).AssertStatus(t, http.StatusOK)
	get(testutil.StudentUser(), res.ID.Hex()).AssertStatus(t, http.StatusNotFound)
	get(owner, "not-an-id").AssertStatus(t, http.StatusNotFound)
}

func TestMineAndList(t *testing.T) {
	e := newEnv(t, assignment.Deferred)
	alice := testutil.StudentUser()
	bob := testutil.StudentUser()
	e.create(t, alice)
	e.create(t, alice)
	e.create(t, bob)

	rec := testutil.NewRecorder()
	e.h.ServeMine(rec, testutil.NewAuthenticatedRequest("GET", "/reservations/mine", alice))
	rec.AssertStatus(t, http.StatusOK)
	var mine struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	rec.DecodeJSON(t, &mine)
	if len(mine.Reservations) != 2 {
		t.Errorf("mine = %d, want 2", len(mine.Reservations))
	}

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/reservations", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	var all struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	rec.DecodeJSON(t, &all)
	if len(all.Reservations) != 3 {
		t.Errorf("all = %d, want 3", len(all.Reservations))
	}
}

func TestRoutes_Guards(t *testing.T) {
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	router := reservations.Routes(reservations.NewHandler(nil, zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/mine", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous GET /mine = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.StudentUser()))
	if rec.Code != http.StatusForbidden {
		t.Errorf("student GET / = %d, want 403", rec.Code)
	}
}
