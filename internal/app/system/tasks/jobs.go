// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/store/oauthstate"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/jobs"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ExpiredCredentials is the part of the credential store the sweep needs.
type ExpiredCredentials interface {
	ListExpired(ctx context.Context, now time.Time) ([]models.Credential, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SweepResult counts what one sweep did.
type SweepResult struct {
	Deleted int
	Failed  int
}

// SweepCredentials removes every credential past its expiry: the stored file
// first, then the record. A file that is already gone counts as removed.
// When a file cannot be removed its record is kept so the next sweep retries
// it. Only a failure to list is returned as an error; per-item failures are
// logged and counted.
func SweepCredentials(ctx context.Context, creds ExpiredCredentials, files storage.Store, now time.Time, logger *zap.Logger) (SweepResult, error) {
	var res SweepResult
	expired, err := creds.ListExpired(ctx, now)
	if err != nil {
		return res, err
	}
	for _, c := range expired {
		if err := files.Delete(ctx, c.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			res.Failed++
			logger.Warn("credential file delete failed",
				zap.String("credential_id", c.ID.Hex()),
				zap.String("key", c.StorageKey),
				zap.Error(err))
			continue
		}
		if err := creds.Delete(ctx, c.ID); err != nil {
			res.Failed++
			logger.Warn("credential record delete failed",
				zap.String("credential_id", c.ID.Hex()),
				zap.Error(err))
			continue
		}
		res.Deleted++
	}
	return res, nil
}

// CredentialSweepJob deletes expired credential uploads. It also runs once
// when the scheduler starts.
func CredentialSweepJob(creds ExpiredCredentials, files storage.Store, logger *zap.Logger, interval time.Duration) *jobs.ScheduledJob {
	return &jobs.ScheduledJob{
		Name:           "credential-sweep",
		Interval:       interval,
		RunImmediately: true,
		Handler: func(ctx context.Context) error {
			res, err := SweepCredentials(ctx, creds, files, time.Now().UTC(), logger)
			if err != nil {
				return err
			}
			if res.Deleted > 0 || res.Failed > 0 {
				logger.Info("credential sweep finished",
					zap.Int("deleted", res.Deleted),
					zap.Int("failed", res.Failed))
			}
			return nil
		},
	}
}

// OAuthStateCleanupJob removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) *jobs.ScheduledJob {
	return &jobs.ScheduledJob{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Handler: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}
