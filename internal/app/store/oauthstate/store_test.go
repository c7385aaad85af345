package oauthstate_test

import (
	"testing"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/store/oauthstate"
	"github.com/dalemusser/projectorhub/internal/testutil"
)

func TestStore_SaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "state-1", "/reservations/mine", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, "state-1")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Fatal("expected state to be valid")
	}
	if returnURL != "/reservations/mine" {
		t.Errorf("returnURL = %q, want /reservations/mine", returnURL)
	}
}

func TestStore_Validate_OneTimeUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "once", "", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, valid, _ := store.Validate(ctx, "once"); !valid {
		t.Fatal("first Validate should succeed")
	}
	if _, valid, err := store.Validate(ctx, "once"); err != nil || valid {
		t.Errorf("second Validate = (%v, %v), want (false, nil)", valid, err)
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "old", "", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, valid, err := store.Validate(ctx, "old"); err != nil || valid {
		t.Errorf("Validate expired = (%v, %v), want (false, nil)", valid, err)
	}
}

func TestStore_Validate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, valid, err := store.Validate(ctx, "nope"); err != nil || valid {
		t.Errorf("Validate unknown = (%v, %v), want (false, nil)", valid, err)
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_ = store.Save(ctx, "expired-1", "", time.Now().Add(-time.Hour))
	_ = store.Save(ctx, "expired-2", "", time.Now().Add(-time.Minute))
	_ = store.Save(ctx, "fresh", "", time.Now().Add(time.Hour))

	n, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CleanupExpired removed %d, want 2", n)
	}
	if _, valid, _ := store.Validate(ctx, "fresh"); !valid {
		t.Error("fresh state should survive cleanup")
	}
}
