package notificationstore_test

import (
	"errors"
	"testing"

	notificationstore "github.com/dalemusser/projectorhub/internal/app/store/notifications"
	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/projectorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	if _, err := store.Create(ctx, user, models.NotificationCredentialUploaded, "first"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := store.Create(ctx, user, models.NotificationReservationUpdated, "second")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, primitive.NewObjectID(), models.NotificationCredentialUploaded, "other"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := store.ListByUser(ctx, user, 0)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByUser returned %d, want 2", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("expected newest first")
	}

	limited, _ := store.ListByUser(ctx, user, 1)
	if len(limited) != 1 {
		t.Errorf("ListByUser limit 1 returned %d", len(limited))
	}

	n, err := store.CountUnread(ctx, user)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountUnread = %d, want 2", n)
	}
}

func TestStore_MarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	n, _ := store.Create(ctx, user, models.NotificationCredentialUploaded, "hello")

	if err := store.MarkRead(ctx, n.ID, primitive.NewObjectID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("MarkRead by another user error = %v, want NotFound", err)
	}
	if err := store.MarkRead(ctx, n.ID, user); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if c, _ := store.CountUnread(ctx, user); c != 0 {
		t.Errorf("CountUnread after MarkRead = %d, want 0", c)
	}
}
