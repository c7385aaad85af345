// internal/app/features/reports/handler.go
package reports

import (
	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"go.uber.org/zap"
)

// Handler owns the reservation report endpoints (JSON summary + CSV export
// of the daily histogram).
//
// Like the other features it is a thin struct built once in bootstrap and
// passed into Routes().
type Handler struct {
	Engine *assignment.Engine
	Log    *zap.Logger
}

func NewHandler(engine *assignment.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Engine: engine,
		Log:    logger,
	}
}
