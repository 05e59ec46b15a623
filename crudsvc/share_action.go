package crudsvc

import (
	"net/http"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/command"
	"github.com/goliatone/go-activities/crudguard"
	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
)

// SharePayload is the body accepted by the share action.
type SharePayload struct {
	AboutType string             `json:"about_type"`
	AboutID   string             `json:"about_id"`
	Text      string             `json:"text"`
	Privacy   string             `json:"privacy"`
	Audience  []types.SubjectRef `json:"audience"`
}

// ShareAction registers POST /activities/share. The first call shares the
// subject and answers 201 with the new activity; a second call by the same
// actor removes the share and answers 204.
func ShareAction(guard GuardAdapter, toggle gocommand.Commander[command.ToggleShareInput]) crud.Action[*activity.Activity] {
	return crud.Action[*activity.Activity]{
		Name:   "share",
		Method: http.MethodPost,
		Target: crud.ActionTargetCollection,
		Path:   "/activities/share",
		Handler: func(ctx crud.ActionContext[*activity.Activity]) error {
			return toggleShare(ctx, guard, toggle)
		},
	}
}

func toggleShare(ctx crud.Context, guard GuardAdapter, toggle gocommand.Commander[command.ToggleShareInput]) error {
	if guard == nil || toggle == nil {
		return missingHandler("share command")
	}
	var payload SharePayload
	if err := ctx.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid share payload").WithCode(goerrors.CodeBadRequest)
	}
	about := types.NewSubjectRef(payload.AboutType, payload.AboutID)
	res, err := guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpCreate,
		Subject:   about,
	})
	if err != nil {
		return err
	}

	var result command.ToggleShareResult
	err = toggle.Execute(ctx.UserContext(), command.ToggleShareInput{
		Actor:    res.Actor,
		Scope:    res.Scope,
		About:    about,
		Text:     payload.Text,
		Privacy:  types.Privacy(payload.Privacy),
		Audience: payload.Audience,
		Result:   &result,
	})
	if err != nil {
		return err
	}
	if result.Unshared || result.Activity == nil {
		return ctx.SendStatus(http.StatusNoContent)
	}
	return ctx.Status(http.StatusCreated).JSON(activity.FromActivityRecord(*result.Activity))
}
