package command

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// ToggleShareResult reports the outcome of a share toggle. When Unshared is
// true the previous share was removed and Activity holds the deleted record;
// transports answer with a no-content response in that case.
type ToggleShareResult struct {
	Activity *types.Activity
	Unshared bool
}

// ToggleShareInput shares a subject, or removes the actor's existing share.
type ToggleShareInput struct {
	Actor    types.ActorRef
	Scope    types.ScopeFilter
	About    types.SubjectRef
	Text     string
	Privacy  types.Privacy
	Audience []types.SubjectRef
	Result   *ToggleShareResult
}

// Type implements gocommand.Message.
func (ToggleShareInput) Type() string {
	return "command.activity.share.toggle"
}

// Validate implements gocommand.Message.
func (input ToggleShareInput) Validate() error {
	if input.Actor.IsAnonymous() {
		return ErrActorRequired
	}
	if input.About.IsZero() {
		return ErrShareSubjectRequired
	}
	if _, err := types.ParsePrivacy(string(input.Privacy)); err != nil {
		return err
	}
	return nil
}

// ToggleShareCommand creates or removes SHARED activities. The subject
// share_count follows through the repository.
type ToggleShareCommand struct {
	deps
}

// NewToggleShareCommand wires the share handler.
func NewToggleShareCommand(cfg Config) *ToggleShareCommand {
	return &ToggleShareCommand{deps: newDeps(cfg)}
}

var _ gocommand.Commander[ToggleShareInput] = (*ToggleShareCommand)(nil)

// Execute removes the actor's latest share of the subject when one exists and
// records a new share otherwise.
func (c *ToggleShareCommand) Execute(ctx context.Context, input ToggleShareInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return types.ValidationError(err)
	}
	about := types.NewSubjectRef(input.About.Type, input.About.ID)
	scope, err := c.guard.Enforce(ctx, types.PolicyCheck{
		Actor:   input.Actor,
		Scope:   input.Scope,
		Action:  types.PolicyActionShareWrite,
		Subject: about,
	})
	if err != nil {
		return err
	}
	if err := (featureCheck{gate: c.gate, scope: scope, userID: input.Actor.ID}).require(ctx, FeatureSharing, KindFeature(FeatureSharing, input.About.Type)); err != nil {
		return err
	}

	privacy, _ := types.ParsePrivacy(string(input.Privacy))
	record, unshared, err := c.repo.ToggleShare(ctx, types.Activity{
		CreatedBy: input.Actor.ID,
		About:     about,
		Text:      input.Text,
		Source:    types.SourceUser,
		Action:    types.ActionShared,
		Privacy:   privacy,
		Audience:  input.Audience,
	})
	if err != nil {
		return boundaryError(err)
	}
	result := ToggleShareResult{Activity: record, Unshared: unshared}
	event := types.ActivityEvent{ActorID: input.Actor.ID, OccurredAt: now(c.clock), Activity: *record}
	if unshared {
		event.Operation = types.EventOperationDeleted
		c.logger.Debug("activity share removed", "activity_id", record.ID, "about", about.String())
		emitActivityDeleted(ctx, c.hooks, event)
	} else {
		event.Operation = types.EventOperationCreated
		c.logger.Debug("activity shared", "activity_id", record.ID, "about", about.String())
		emitActivityCreated(ctx, c.hooks, event)
	}
	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
