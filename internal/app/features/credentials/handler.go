// internal/app/features/credentials/handler.go
package credentials

import (
	"time"

	"github.com/dalemusser/projectorhub/internal/app/assignment"
	credentialstore "github.com/dalemusser/projectorhub/internal/app/store/credentials"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

const (
	// DefaultMaxBytes is the largest credential accepted when none is configured.
	DefaultMaxBytes int64 = 2 << 20
	// DefaultRetention is how long an upload is kept before the sweep removes it.
	DefaultRetention = 7 * 24 * time.Hour
)

// Handler serves credential uploads.
type Handler struct {
	Store     *credentialstore.Store
	Files     storage.Store
	Notify    assignment.Notifier // optional
	MaxBytes  int64
	Retention time.Duration
	Log       *zap.Logger
}

func NewHandler(store *credentialstore.Store, files storage.Store, notify assignment.Notifier, maxBytes int64, retention time.Duration, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Handler{
		Store:     store,
		Files:     files,
		Notify:    notify,
		MaxBytes:  maxBytes,
		Retention: retention,
		Log:       logger,
	}
}
