package command

import (
	"context"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// DeleteActivityInput removes an activity created by the actor.
type DeleteActivityInput struct {
	Actor      types.ActorRef
	Scope      types.ScopeFilter
	ActivityID uuid.UUID
	Result     *types.Activity
}

// Type implements gocommand.Message.
func (DeleteActivityInput) Type() string {
	return "command.activity.delete"
}

// Validate implements gocommand.Message.
func (input DeleteActivityInput) Validate() error {
	if input.Actor.IsAnonymous() {
		return ErrActorRequired
	}
	if input.ActivityID == uuid.Nil {
		return ErrActivityIDRequired
	}
	return nil
}

// DeleteActivityCommand removes activities with their replies and audience.
type DeleteActivityCommand struct {
	deps
}

// NewDeleteActivityCommand wires the delete handler.
func NewDeleteActivityCommand(cfg Config) *DeleteActivityCommand {
	return &DeleteActivityCommand{deps: newDeps(cfg)}
}

var _ gocommand.Commander[DeleteActivityInput] = (*DeleteActivityCommand)(nil)

// Execute deletes the activity when the actor created it.
func (c *DeleteActivityCommand) Execute(ctx context.Context, input DeleteActivityInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return types.ValidationError(err)
	}
	if _, err := c.guard.Enforce(ctx, types.PolicyCheck{
		Actor:    input.Actor,
		Scope:    input.Scope,
		Action:   types.PolicyActionActivityWrite,
		TargetID: input.ActivityID,
	}); err != nil {
		return err
	}

	current, err := c.repo.GetActivity(ctx, input.ActivityID)
	if err != nil {
		return boundaryError(err)
	}
	if !activity.CanModify(*current, input.Actor) {
		return types.PermissionDeniedError(nil)
	}
	deleted, err := c.repo.DeleteActivity(ctx, input.ActivityID)
	if err != nil {
		return boundaryError(err)
	}

	c.logger.Debug("activity deleted", "activity_id", deleted.ID)
	emitActivityDeleted(ctx, c.hooks, types.ActivityEvent{
		Activity:   *deleted,
		ActorID:    input.Actor.ID,
		Operation:  types.EventOperationDeleted,
		OccurredAt: now(c.clock),
	})
	if input.Result != nil {
		*input.Result = *deleted
	}
	return nil
}
