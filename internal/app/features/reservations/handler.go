// internal/app/features/reservations/handler.go
package reservations

import (
	"github.com/dalemusser/projectorhub/internal/app/assignment"
	"go.uber.org/zap"
)

// Handler serves reservation requests and their administrator
// transitions. Legality and authorization live in the engine; the handler
// only translates HTTP.
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
