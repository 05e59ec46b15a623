package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// AddReplyInput threads a reply under an activity. ReplyToID optionally points
// at another reply of the same activity.
type AddReplyInput struct {
	Actor      types.ActorRef
	Scope      types.ScopeFilter
	ActivityID uuid.UUID
	Text       string
	ReplyToID  uuid.UUID
	Result     *types.Reply
}

// Type implements gocommand.Message.
func (AddReplyInput) Type() string {
	return "command.activity.reply.add"
}

// Validate implements gocommand.Message. Text length is checked by the
// command against its configured maximum.
func (input AddReplyInput) Validate() error {
	if input.Actor.IsAnonymous() {
		return ErrActorRequired
	}
	if input.ActivityID == uuid.Nil {
		return ErrActivityIDRequired
	}
	return nil
}

// AddReplyCommand stores replies and keeps the parent reply_count current.
type AddReplyCommand struct {
	deps
	validate *validator.Validate
}

// NewAddReplyCommand wires the reply handler.
func NewAddReplyCommand(cfg Config) *AddReplyCommand {
	return &AddReplyCommand{
		deps:     newDeps(cfg),
		validate: validator.New(),
	}
}

var _ gocommand.Commander[AddReplyInput] = (*AddReplyCommand)(nil)

// Execute validates the text, checks the actor can read the activity and
// persists the reply.
func (c *AddReplyCommand) Execute(ctx context.Context, input AddReplyInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return types.ValidationError(err)
	}
	text := strings.TrimSpace(input.Text)
	if err := c.validateText(text); err != nil {
		return types.ValidationError(err)
	}
	scope, err := c.guard.Enforce(ctx, types.PolicyCheck{
		Actor:    input.Actor,
		Scope:    input.Scope,
		Action:   types.PolicyActionReplyWrite,
		TargetID: input.ActivityID,
	})
	if err != nil {
		return err
	}
	if err := (featureCheck{gate: c.gate, scope: scope, userID: input.Actor.ID}).require(ctx, FeatureReplies); err != nil {
		return err
	}

	parent, err := c.repo.GetActivity(ctx, input.ActivityID)
	if err != nil {
		return boundaryError(err)
	}
	reason, err := activity.Decide(ctx, c.repo, *parent, input.Actor)
	if err != nil {
		return boundaryError(err)
	}
	if !reason.Allowed() {
		return types.PermissionDeniedError(nil)
	}

	created, err := c.repo.AddReply(ctx, types.Reply{
		ActivityID: input.ActivityID,
		CreatedBy:  input.Actor.ID,
		Text:       text,
		ReplyToID:  input.ReplyToID,
	})
	if err != nil {
		return boundaryError(err)
	}

	c.logger.Debug("activity reply added", "activity_id", created.ActivityID, "reply_id", created.ID)
	emitReplyCreated(ctx, c.hooks, types.ReplyEvent{
		Reply:      *created,
		ActorID:    input.Actor.ID,
		Operation:  types.EventOperationCreated,
		OccurredAt: now(c.clock),
	})
	if input.Result != nil {
		*input.Result = *created
	}
	return nil
}

func (c *AddReplyCommand) validateText(text string) error {
	err := c.validate.Var(text, fmt.Sprintf("required,max=%d", c.maxText))
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	switch fieldErrs[0].Tag() {
	case "required":
		return types.ErrReplyTextRequired
	case "max":
		return fmt.Errorf("%w: at most %d characters", types.ErrReplyTooLong, c.maxText)
	default:
		return err
	}
}
