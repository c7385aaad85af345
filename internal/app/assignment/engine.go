// Package assignment holds the business rules for projector reservations:
// binding a projector to a request, moving requests through their lifecycle
// while keeping the bound projector's state in step, and reporting.
//
// The stores underneath are dumb. Every legality check lives here.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/projectorhub/internal/app/system/apperr"
	"github.com/dalemusser/projectorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projectorhub/internal/app/system/inputval"
	"github.com/dalemusser/projectorhub/internal/app/system/normalize"
	"github.com/dalemusser/projectorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Engine applies reservation and projector operations.
type Engine struct {
	reg    Registry
	led    Ledger
	mode   BindingMode
	notify Notifier
	log    *zap.Logger
}

// New builds an Engine. notify may be nil.
func New(reg Registry, led Ledger, mode BindingMode, notify Notifier, logger *zap.Logger) *Engine {
	if mode == "" {
		mode = Eager
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{reg: reg, led: led, mode: mode, notify: notify, log: logger}
}

// Mode returns the configured binding mode.
func (e *Engine) Mode() BindingMode { return e.mode }

// ReservationInput is what a requester submits.
type ReservationInput struct {
	Reason            string    `validate:"required,max=500" label:"Reason"`
	Start             time.Time `validate:"required" label:"Start"`
	End               time.Time `validate:"required,gtfield=Start" label:"End"`
	Grade             int       `validate:"min=0,max=99" label:"Grade"`
	Group             string    `validate:"max=8" label:"Group"`
	Shift             string    `validate:"required,shift" label:"Shift"`
	CommentsRequested bool
}

func requireAdmin(a Actor, action string) error {
	if !a.IsAdmin {
		return apperr.InvalidState("only administrators can %s", action)
	}
	return nil
}

func validationErr(res *inputval.Result) error {
	return apperr.Validation("%s", res.First())
}

/* -------------------------------------------------------------------------- */
/* Reservations                                                               */
/* -------------------------------------------------------------------------- */

// CreateReservation records a pending request for the actor. In eager mode
// a returned projector for the scope is claimed first and bound to the
// request; when none is free nothing is written.
func (e *Engine) CreateReservation(ctx context.Context, actor Actor, in ReservationInput) (models.Reservation, error) {
	if actor.UserID.IsZero() {
		return models.Reservation{}, apperr.Validation("Requester is required.")
	}
	in.Reason = htmlsanitize.Text(in.Reason)
	in.Group = normalize.Group(in.Group)
	in.Shift = normalize.Shift(in.Shift)
	if res := inputval.Validate(in); res.HasErrors() {
		return models.Reservation{}, validationErr(res)
	}

	r := models.Reservation{
		RequesterID:       actor.UserID,
		Reason:            in.Reason,
		Start:             in.Start.UTC(),
		End:               in.End.UTC(),
		Scope:             models.Scope{Grade: in.Grade, Group: in.Group, Shift: in.Shift},
		CommentsRequested: in.CommentsRequested,
	}

	if e.mode == Deferred {
		created, err := e.led.Create(ctx, r)
		if err != nil {
			return models.Reservation{}, fmt.Errorf("create reservation: %w", err)
		}
		return created, nil
	}

	if in.Grade < 1 {
		return models.Reservation{}, apperr.Validation("Grade is required.")
	}
	if in.Group == "" {
		return models.Reservation{}, apperr.Validation("Group is required.")
	}

	p, err := e.reg.Claim(ctx, r.Scope, actor.UserID)
	if err != nil {
		return models.Reservation{}, err
	}
	r.ProjectorID = &p.ID

	created, err := e.led.Create(ctx, r)
	if err != nil {
		e.restore(ctx, p.ID, models.ProjectorReturned, nil, "create")
		return models.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}
	e.log.Info("reservation created",
		zap.String("reservation_id", created.ID.Hex()),
		zap.String("projector_id", p.ID.Hex()),
		zap.String("projector_code", p.Code))
	return created, nil
}

// Approve moves a pending reservation to approved and puts its projector in
// use. An unbound reservation may be bound here to projectorID, which must
// be returned.
func (e *Engine) Approve(ctx context.Context, actor Actor, id primitive.ObjectID, projectorID *primitive.ObjectID) (models.Reservation, error) {
	if err := requireAdmin(actor, "approve reservations"); err != nil {
		return models.Reservation{}, err
	}
	r, err := e.transitionable(ctx, id, models.ReservationApproved)
	if err != nil {
		return models.Reservation{}, err
	}

	switch {
	case r.ProjectorID != nil:
		if projectorID != nil && *projectorID != *r.ProjectorID {
			return models.Reservation{}, apperr.Validation("reservation is already bound to projector %s", r.ProjectorID.Hex())
		}
		prev, err := e.reg.GetByID(ctx, *r.ProjectorID)
		if err != nil {
			return models.Reservation{}, err
		}
		holder := r.RequesterID
		if err := e.reg.SetState(ctx, prev.ID, models.ProjectorInUse, &holder); err != nil {
			return models.Reservation{}, err
		}
		if err := e.led.SetState(ctx, r.ID, models.ReservationApproved, models.KeepBinding); err != nil {
			e.restore(ctx, prev.ID, prev.State, prev.HolderID, "approve")
			return models.Reservation{}, err
		}

	case projectorID != nil:
		p, err := e.reg.ClaimByID(ctx, *projectorID, r.RequesterID)
		if err != nil {
			return models.Reservation{}, err
		}
		if err := e.led.SetState(ctx, r.ID, models.ReservationApproved, models.Bind(p.ID)); err != nil {
			e.restore(ctx, p.ID, models.ProjectorReturned, nil, "approve")
			return models.Reservation{}, err
		}

	default:
		if err := e.led.SetState(ctx, r.ID, models.ReservationApproved, models.KeepBinding); err != nil {
			return models.Reservation{}, err
		}
	}

	return e.finish(ctx, r, "approved")
}

// Reject moves a pending reservation to rejected, returns its projector to
// the pool and clears the binding.
func (e *Engine) Reject(ctx context.Context, actor Actor, id primitive.ObjectID) (models.Reservation, error) {
	if err := requireAdmin(actor, "reject reservations"); err != nil {
		return models.Reservation{}, err
	}
	return e.release(ctx, id, models.ReservationRejected)
}

// Finalize moves an approved reservation to finalized, returns its projector
// to the pool and clears the binding.
func (e *Engine) Finalize(ctx context.Context, actor Actor, id primitive.ObjectID) (models.Reservation, error) {
	if err := requireAdmin(actor, "finalize reservations"); err != nil {
		return models.Reservation{}, err
	}
	return e.release(ctx, id, models.ReservationFinalized)
}

func (e *Engine) release(ctx context.Context, id primitive.ObjectID, to string) (models.Reservation, error) {
	r, err := e.transitionable(ctx, id, to)
	if err != nil {
		return models.Reservation{}, err
	}

	if r.ProjectorID == nil {
		if err := e.led.SetState(ctx, r.ID, to, models.Unbind()); err != nil {
			return models.Reservation{}, err
		}
		return e.finish(ctx, r, to)
	}

	prev, err := e.reg.GetByID(ctx, *r.ProjectorID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		// The projector was removed through an override path. Clear the
		// dangling reference and carry on.
		e.log.Warn("bound projector missing",
			zap.String("reservation_id", r.ID.Hex()),
			zap.String("projector_id", r.ProjectorID.Hex()))
		if err := e.led.SetState(ctx, r.ID, to, models.Unbind()); err != nil {
			return models.Reservation{}, err
		}
		return e.finish(ctx, r, to)
	case err != nil:
		return models.Reservation{}, err
	}

	if err := e.reg.SetState(ctx, prev.ID, models.ProjectorReturned, nil); err != nil {
		return models.Reservation{}, err
	}
	if err := e.led.SetState(ctx, r.ID, to, models.Unbind()); err != nil {
		e.restore(ctx, prev.ID, prev.State, prev.HolderID, to)
		return models.Reservation{}, err
	}
	return e.finish(ctx, r, to)
}

// Override sets any reservation to any known state with exactly the given
// binding (nil clears it). The bound projector is not touched; the caller is
// responsible for keeping it consistent.
func (e *Engine) Override(ctx context.Context, actor Actor, id primitive.ObjectID, state string, projectorID *primitive.ObjectID) (models.Reservation, error) {
	if err := requireAdmin(actor, "override reservations"); err != nil {
		return models.Reservation{}, err
	}
	if !models.IsReservationState(state) {
		return models.Reservation{}, apperr.InvalidState("unknown reservation state %q", state)
	}
	r, err := e.led.GetByID(ctx, id)
	if err != nil {
		return models.Reservation{}, err
	}
	if projectorID != nil {
		if _, err := e.reg.GetByID(ctx, *projectorID); err != nil {
			return models.Reservation{}, err
		}
	}
	if err := e.led.SetState(ctx, r.ID, state, models.BindTo(projectorID)); err != nil {
		return models.Reservation{}, err
	}
	e.log.Info("reservation overridden",
		zap.String("reservation_id", r.ID.Hex()),
		zap.String("from", r.State),
		zap.String("to", state))
	return e.finish(ctx, r, state)
}

// Comment records an administrator comment on a reservation.
func (e *Engine) Comment(ctx context.Context, actor Actor, id primitive.ObjectID, text string) (models.Reservation, error) {
	if err := requireAdmin(actor, "comment on reservations"); err != nil {
		return models.Reservation{}, err
	}
	text = htmlsanitize.Text(text)
	if text == "" {
		return models.Reservation{}, apperr.Validation("Comment is required.")
	}
	if len(text) > 1000 {
		return models.Reservation{}, apperr.Validation("Comment must be at most 1000 characters.")
	}
	r, err := e.led.GetByID(ctx, id)
	if err != nil {
		return models.Reservation{}, err
	}
	if err := e.led.SetComment(ctx, r.ID, text); err != nil {
		return models.Reservation{}, err
	}
	e.send(ctx, r.RequesterID, "An administrator commented on your reservation: "+text)
	return e.led.GetByID(ctx, r.ID)
}

// GetReservation returns a reservation to its requester or an administrator.
// Anyone else gets NotFound.
func (e *Engine) GetReservation(ctx context.Context, actor Actor, id primitive.ObjectID) (models.Reservation, error) {
	r, err := e.led.GetByID(ctx, id)
	if err != nil {
		return models.Reservation{}, err
	}
	if !actor.IsAdmin && r.RequesterID != actor.UserID {
		return models.Reservation{}, apperr.NotFound("reservation %s not found", id.Hex())
	}
	return r, nil
}

// ListReservations returns every reservation.
func (e *Engine) ListReservations(ctx context.Context, actor Actor) ([]models.Reservation, error) {
	if err := requireAdmin(actor, "list all reservations"); err != nil {
		return nil, err
	}
	return e.led.List(ctx)
}

// MyReservations returns the actor's own reservations.
func (e *Engine) MyReservations(ctx context.Context, actor Actor) ([]models.Reservation, error) {
	return e.led.ListByRequester(ctx, actor.UserID)
}

// transitionable loads the reservation and checks the edge to `to`.
func (e *Engine) transitionable(ctx context.Context, id primitive.ObjectID, to string) (models.Reservation, error) {
	r, err := e.led.GetByID(ctx, id)
	if err != nil {
		return models.Reservation{}, err
	}
	if !CanTransition(r.State, to) {
		return models.Reservation{}, apperr.InvalidState("cannot move a %s reservation to %s", r.State, to)
	}
	return r, nil
}

// finish reloads the reservation after a transition and tells the requester.
func (e *Engine) finish(ctx context.Context, r models.Reservation, state string) (models.Reservation, error) {
	e.send(ctx, r.RequesterID, fmt.Sprintf("Your reservation for %s is now %s.", r.Start.Format("Jan 2, 2006 15:04"), state))
	return e.led.GetByID(ctx, r.ID)
}

func (e *Engine) send(ctx context.Context, userID primitive.ObjectID, msg string) {
	if e.notify == nil {
		return
	}
	if err := e.notify.Notify(ctx, userID, models.NotificationReservationUpdated, msg); err != nil {
		e.log.Warn("notification failed", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}

// restore puts a projector back after the reservation write that followed
// its update failed. A failed restore is logged; the caller still returns
// the original error.
func (e *Engine) restore(ctx context.Context, id primitive.ObjectID, state string, holder *primitive.ObjectID, op string) {
	if err := e.reg.SetState(ctx, id, state, holder); err != nil {
		e.log.Error("projector compensation failed",
			zap.String("op", op),
			zap.String("projector_id", id.Hex()),
			zap.String("state", state),
			zap.Error(err))
		return
	}
	e.log.Warn("projector restored after failed reservation write",
		zap.String("op", op),
		zap.String("projector_id", id.Hex()),
		zap.String("state", state))
}
