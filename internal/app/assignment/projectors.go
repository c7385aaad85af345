package assignment

import (
	"context"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/inputval"
	"github.com/dalemusser/projectorhub/internal/app/system/normalize"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProjectorInput describes a projector to add to the registry.
type ProjectorInput struct {
	Grade int    `validate:"required,min=1,max=99" label:"Grade"`
	Group string `validate:"required,max=8" label:"Group"`
	Shift string `validate:"required,shift" label:"Shift"`
	State string `validate:"omitempty,projectorstate" label:"State"`
}

// CreateProjector adds a projector. An empty State means returned.
func (e *Engine) CreateProjector(ctx context.Context, actor Actor, in ProjectorInput) (models.Projector, error) {
	if err := requireAdmin(actor, "add projectors"); err != nil {
		return models.Projector{}, err
	}
	in.Group = normalize.Group(in.Group)
	in.Shift = normalize.Shift(in.Shift)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.Projector{}, validationErr(res)
	}
	p, err := e.reg.Create(ctx, models.Scope{Grade: in.Grade, Group: in.Group, Shift: in.Shift}, in.State)
	if err != nil {
		return models.Projector{}, err
	}
	e.log.Info("projector created", zap.String("projector_id", p.ID.Hex()), zap.String("code", p.Code))
	return p, nil
}

// ListProjectors returns the registry.
func (e *Engine) ListProjectors(ctx context.Context, actor Actor) ([]models.Projector, error) {
	if err := requireAdmin(actor, "list projectors"); err != nil {
		return nil, err
	}
	return e.reg.List(ctx)
}

// SetProjectorState overwrites a projector's state. The holder is kept only
// when the new state is in_use.
func (e *Engine) SetProjectorState(ctx context.Context, actor Actor, id primitive.ObjectID, state string) (models.Projector, error) {
	if err := requireAdmin(actor, "change projector state"); err != nil {
		return models.Projector{}, err
	}
	if !models.IsProjectorState(state) {
		return models.Projector{}, apperr.InvalidState("unknown projector state %q", state)
	}
	p, err := e.reg.GetByID(ctx, id)
	if err != nil {
		return models.Projector{}, err
	}
	var holder *primitive.ObjectID
	if state == models.ProjectorInUse {
		holder = p.HolderID
	}
	if err := e.reg.SetState(ctx, id, state, holder); err != nil {
		return models.Projector{}, err
	}
	return e.reg.GetByID(ctx, id)
}

// DeleteProjector removes a projector that no pending or approved
// reservation is bound to.
func (e *Engine) DeleteProjector(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := requireAdmin(actor, "delete projectors"); err != nil {
		return err
	}
	if _, err := e.reg.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := e.led.CountActiveByProjector(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.InvalidState("projector %s is bound to %d active reservation(s)", id.Hex(), n)
	}
	if err := e.reg.Delete(ctx, id); err != nil {
		return err
	}
	e.log.Info("projector deleted", zap.String("projector_id", id.Hex()))
	return nil
}
