// internal/app/features/projectors/handler.go
package projectors

import (
	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"go.uber.org/zap"
)

// Handler serves the projector registry endpoints. All of them are
// administrator operations; the engine refuses everyone else.
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
