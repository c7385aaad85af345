// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	projectorstore "github.com/dalemusser/projectorhub/internal/app/store/projectors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll runs at startup and in store tests. Every ensure* function is
idempotent. Errors are collected so one bad collection does not hide another.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"projectors", ensureProjectors},
		{"reservations", ensureReservations},
		{"users", ensureUsers},
		{"credentials", ensureCredentials},
		{"notifications", ensureNotifications},
		{"oauth_states", ensureOAuthStates},
	}

	var problems []string
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconciler                                                                 */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
	TTL    *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func ttlVal(v *int32) int32 {
	if v == nil {
		return -1
	}
	return *v
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

// ensureIndexSet makes the collection carry each desired index. An existing
// index with the same keys is reused when its options match, renamed when
// only the name differs and dropped and rebuilt otherwise.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()), zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range desired {
		opts := m.Options
		if opts == nil {
			opts = options.Index()
		}
		name := ""
		if opts.Name != nil {
			name = *opts.Name
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		ex, found := existing[sig]
		if found && boolVal(ex.Unique) == boolVal(opts.Unique) && ttlVal(ex.TTL) == ttlVal(opts.ExpireAfterSeconds) &&
			(name == "" || ex.Name == name) {
			zap.L().Debug("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			continue
		}
		if found {
			zap.L().Info("replacing index",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", name),
				zap.String("keys", sig))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && boolVal(opts.Unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index on %s (duplicates present)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolVal(opts.Unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collections                                                                */
/* -------------------------------------------------------------------------- */

func ensureProjectors(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("projectors"), []mongo.IndexModel{
		// At most one projector per (grade, group, shift).
		{
			Keys: bson.D{
				{Key: "grade", Value: 1},
				{Key: "group", Value: 1},
				{Key: "shift", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName(projectorstore.ScopeIndexName),
		},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(projectorstore.CodeIndexName),
		},
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetName("idx_projectors_state"),
		},
	})
}

func ensureReservations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reservations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "requester_id", Value: 1}, {Key: "start", Value: -1}},
			Options: options.Index().SetName("idx_reservations_requester_start"),
		},
		{
			Keys:    bson.D{{Key: "projector_id", Value: 1}, {Key: "state", Value: 1}},
			Options: options.Index().SetName("idx_reservations_projector_state"),
		},
		{
			Keys:    bson.D{{Key: "start", Value: -1}},
			Options: options.Index().SetName("idx_reservations_start"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_google_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
	})
}

func ensureCredentials(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("credentials"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "uploaded_at", Value: -1}},
			Options: options.Index().SetName("idx_credentials_user_uploaded"),
		},
		// The sweep job removes the stored file before the record, so no TTL here.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_credentials_expires"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_created"),
		},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("oauth_states"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_states_state"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_states_expires"),
		},
	})
}
