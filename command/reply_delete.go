package command

import (
	"context"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// DeleteReplyResult reports whether a reply was removed.
type DeleteReplyResult struct {
	Deleted bool
	Reply   *types.Reply
}

// DeleteReplyInput removes one reply of an activity.
type DeleteReplyInput struct {
	Actor      types.ActorRef
	Scope      types.ScopeFilter
	ActivityID uuid.UUID
	ReplyID    uuid.UUID
	Result     *DeleteReplyResult
}

// Type implements gocommand.Message.
func (DeleteReplyInput) Type() string {
	return "command.activity.reply.delete"
}

// Validate implements gocommand.Message.
func (input DeleteReplyInput) Validate() error {
	if input.Actor.IsAnonymous() {
		return ErrActorRequired
	}
	if input.ActivityID == uuid.Nil {
		return ErrActivityIDRequired
	}
	if input.ReplyID == uuid.Nil {
		return ErrReplyIDRequired
	}
	return nil
}

// DeleteReplyCommand removes replies and decrements the parent reply_count.
type DeleteReplyCommand struct {
	deps
}

// NewDeleteReplyCommand wires the reply delete handler.
func NewDeleteReplyCommand(cfg Config) *DeleteReplyCommand {
	return &DeleteReplyCommand{deps: newDeps(cfg)}
}

var _ gocommand.Commander[DeleteReplyInput] = (*DeleteReplyCommand)(nil)

// Execute deletes the reply when the actor wrote it or created the activity.
// A reply that does not exist is not an error: the result reports
// Deleted=false.
func (c *DeleteReplyCommand) Execute(ctx context.Context, input DeleteReplyInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return types.ValidationError(err)
	}
	if _, err := c.guard.Enforce(ctx, types.PolicyCheck{
		Actor:    input.Actor,
		Scope:    input.Scope,
		Action:   types.PolicyActionReplyWrite,
		TargetID: input.ActivityID,
	}); err != nil {
		return err
	}

	result := DeleteReplyResult{}
	defer func() {
		if input.Result != nil {
			*input.Result = result
		}
	}()

	parent, err := c.repo.GetActivity(ctx, input.ActivityID)
	if err != nil {
		return boundaryError(err)
	}
	reply, err := c.repo.GetReply(ctx, input.ActivityID, input.ReplyID)
	if err != nil {
		if types.IsNotFound(err) {
			return nil
		}
		return boundaryError(err)
	}
	if !activity.CanDeleteReply(*parent, *reply, input.Actor) {
		return types.PermissionDeniedError(nil)
	}

	deleted, err := c.repo.DeleteReply(ctx, input.ActivityID, input.ReplyID)
	if err != nil {
		return boundaryError(err)
	}
	if deleted == nil {
		return nil
	}
	result = DeleteReplyResult{Deleted: true, Reply: deleted}

	c.logger.Debug("activity reply deleted", "activity_id", deleted.ActivityID, "reply_id", deleted.ID)
	emitReplyDeleted(ctx, c.hooks, types.ReplyEvent{
		Reply:      *deleted,
		ActorID:    input.Actor.ID,
		Operation:  types.EventOperationDeleted,
		OccurredAt: now(c.clock),
	})
	return nil
}
