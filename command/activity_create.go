package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// CreateActivityInput records one action of the actor, optionally about a
// subject and addressed to an audience.
type CreateActivityInput struct {
	Actor    types.ActorRef
	Scope    types.ScopeFilter
	About    types.SubjectRef
	Text     string
	Source   types.Source
	Action   types.Action
	Privacy  types.Privacy
	GroupID  uuid.UUID
	Audience []types.SubjectRef
	Result   *types.Activity
}

// Type implements gocommand.Message.
func (CreateActivityInput) Type() string {
	return "command.activity.create"
}

// Validate implements gocommand.Message.
func (input CreateActivityInput) Validate() error {
	if input.Actor.IsAnonymous() {
		return ErrActorRequired
	}
	if types.CheckAction(string(input.Action)) == "" {
		return types.ErrInvalidAction
	}
	if input.Source != "" && types.CheckSource(string(input.Source)) == "" {
		return types.ErrInvalidSource
	}
	if _, err := types.ParsePrivacy(string(input.Privacy)); err != nil {
		return err
	}
	return nil
}

// CreateActivityCommand persists activities through the repository.
type CreateActivityCommand struct {
	deps
}

// NewCreateActivityCommand wires the create handler.
func NewCreateActivityCommand(cfg Config) *CreateActivityCommand {
	return &CreateActivityCommand{deps: newDeps(cfg)}
}

var _ gocommand.Commander[CreateActivityInput] = (*CreateActivityCommand)(nil)

// Execute validates the input, authorizes the actor and stores the activity.
// Source defaults to USER and privacy to PRIVATE.
func (c *CreateActivityCommand) Execute(ctx context.Context, input CreateActivityInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return types.ValidationError(err)
	}
	if _, err := c.guard.Enforce(ctx, types.PolicyCheck{
		Actor:   input.Actor,
		Scope:   input.Scope,
		Action:  types.PolicyActionActivityWrite,
		Subject: input.About,
	}); err != nil {
		return err
	}

	source := types.CheckSource(string(input.Source))
	if source == "" {
		source = types.SourceUser
	}
	privacy, _ := types.ParsePrivacy(string(input.Privacy))
	created, err := c.repo.CreateActivity(ctx, types.Activity{
		CreatedBy: input.Actor.ID,
		About:     input.About,
		Text:      strings.TrimSpace(input.Text),
		Source:    source,
		Action:    types.CheckAction(string(input.Action)),
		Privacy:   privacy,
		GroupID:   input.GroupID,
		Audience:  input.Audience,
	})
	if err != nil {
		return boundaryError(err)
	}

	c.logger.Debug("activity created", "activity_id", created.ID, "action", created.Action, "about", created.About.String())
	emitActivityCreated(ctx, c.hooks, types.ActivityEvent{
		Activity:   *created,
		ActorID:    input.Actor.ID,
		Operation:  types.EventOperationCreated,
		OccurredAt: now(c.clock),
	})
	if input.Result != nil {
		*input.Result = *created
	}
	return nil
}
