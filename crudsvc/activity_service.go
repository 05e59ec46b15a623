package crudsvc

import (
	"strings"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/command"
	"github.com/goliatone/go-activities/crudguard"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/query"
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ActivityServiceConfig wires dependencies for the CRUD-backed activity service.
type ActivityServiceConfig struct {
	Guard       GuardAdapter
	Create      gocommand.Commander[command.CreateActivityInput]
	Delete      gocommand.Commander[command.DeleteActivityInput]
	Detail      gocommand.Querier[types.ActivityLookup, query.ActivityView]
	FeedAbout   gocommand.Querier[types.FeedAboutFilter, query.FeedView]
	FeedForUser gocommand.Querier[types.FeedForUserFilter, query.FeedView]
}

// ActivityService adapts the activity command/query layer to a go-crud
// controller. Activities are immutable once posted, so updates are rejected.
type ActivityService struct {
	guard       GuardAdapter
	create      gocommand.Commander[command.CreateActivityInput]
	delete      gocommand.Commander[command.DeleteActivityInput]
	detail      gocommand.Querier[types.ActivityLookup, query.ActivityView]
	feedAbout   gocommand.Querier[types.FeedAboutFilter, query.FeedView]
	feedForUser gocommand.Querier[types.FeedForUserFilter, query.FeedView]
	logger      types.Logger
	maxBatch    int
}

// NewActivityService constructs the adapter.
func NewActivityService(cfg ActivityServiceConfig, opts ...ServiceOption) *ActivityService {
	options := applyOptions(opts)
	return &ActivityService{
		guard:       cfg.Guard,
		create:      cfg.Create,
		delete:      cfg.Delete,
		detail:      cfg.Detail,
		feedAbout:   cfg.FeedAbout,
		feedForUser: cfg.FeedForUser,
		logger:      options.logger,
		maxBatch:    options.maxBatch,
	}
}

func (s *ActivityService) Create(ctx crud.Context, record *activity.Activity) (*activity.Activity, error) {
	if s.create == nil || s.guard == nil {
		return nil, missingHandler("activity create command")
	}
	payload := activity.ToActivityRecord(record)
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpCreate,
		Subject:   payload.About,
	})
	if err != nil {
		return nil, err
	}

	var created types.Activity
	input := command.CreateActivityInput{
		Actor:    res.Actor,
		Scope:    res.Scope,
		About:    payload.About,
		Text:     payload.Text,
		Source:   payload.Source,
		Action:   payload.Action,
		Privacy:  payload.Privacy,
		GroupID:  payload.GroupID,
		Audience: payload.Audience,
		Result:   &created,
	}
	if err := s.create.Execute(ctx.UserContext(), input); err != nil {
		return nil, err
	}
	return activity.FromActivityRecord(created), nil
}

func (s *ActivityService) CreateBatch(ctx crud.Context, records []*activity.Activity) ([]*activity.Activity, error) {
	return createEach(ctx, s.maxBatch, records, s.Create)
}

func (s *ActivityService) Update(crud.Context, *activity.Activity) (*activity.Activity, error) {
	return nil, notSupported(crud.OpUpdate)
}

func (s *ActivityService) UpdateBatch(crud.Context, []*activity.Activity) ([]*activity.Activity, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

func (s *ActivityService) Delete(ctx crud.Context, record *activity.Activity) error {
	if s.delete == nil || s.guard == nil {
		return missingHandler("activity delete command")
	}
	if record == nil || record.ID == uuid.Nil {
		return invalidID("activity id")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpDelete,
		TargetID:  record.ID,
	})
	if err != nil {
		return err
	}
	return s.delete.Execute(ctx.UserContext(), command.DeleteActivityInput{
		Actor:      res.Actor,
		Scope:      res.Scope,
		ActivityID: record.ID,
	})
}

func (s *ActivityService) DeleteBatch(ctx crud.Context, records []*activity.Activity) error {
	return deleteEach(ctx, s.maxBatch, records, s.Delete)
}

// Index serves both feeds. With about (or about_type/about_id) it lists the
// activities about those subjects; with user_id, or for=me, it lists the
// activities addressed to that user. Paging follows the ap/aps/as/aa params.
func (s *ActivityService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*activity.Activity, int, error) {
	if s.guard == nil {
		return nil, 0, missingHandler("activity guard")
	}
	about := querySubjects(ctx)
	input := crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
	}
	if len(about) > 0 {
		input.Subject = about[0]
	}
	res, err := s.guard.Enforce(input)
	if err != nil {
		return nil, 0, err
	}

	var view query.FeedView
	switch {
	case len(about) > 0:
		if s.feedAbout == nil {
			return nil, 0, missingHandler("activity feed query")
		}
		view, err = s.feedAbout.Query(ctx.UserContext(), types.FeedAboutFilter{
			Viewer: res.Actor,
			Scope:  res.Scope,
			About:  about,
			Params: feedParams(ctx),
		})
	case queryUUID(ctx, "user_id") != uuid.Nil || strings.EqualFold(strings.TrimSpace(ctx.Query("for")), "me"):
		if s.feedForUser == nil {
			return nil, 0, missingHandler("activity feed query")
		}
		view, err = s.feedForUser.Query(ctx.UserContext(), types.FeedForUserFilter{
			Viewer: res.Actor,
			Scope:  res.Scope,
			UserID: queryUUID(ctx, "user_id"),
			Params: feedParams(ctx),
		})
	default:
		return nil, 0, types.ValidationError(types.ErrSubjectRequired)
	}
	if err != nil {
		return nil, 0, err
	}

	entries := make([]*activity.Activity, 0, len(view.Page.Items))
	for _, item := range view.Page.Items {
		entries = append(entries, activity.FromActivityRecord(item))
	}
	return entries, view.Page.Total, nil
}

func (s *ActivityService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*activity.Activity, error) {
	if s.detail == nil || s.guard == nil {
		return nil, missingHandler("activity detail query")
	}
	activityID := parseUUID(id)
	if activityID == uuid.Nil {
		return nil, invalidID("activity id")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		TargetID:  activityID,
	})
	if err != nil {
		return nil, err
	}
	view, err := s.detail.Query(ctx.UserContext(), types.ActivityLookup{
		Viewer:     res.Actor,
		Scope:      res.Scope,
		ActivityID: activityID,
	})
	if err != nil {
		return nil, err
	}
	return activity.FromActivityRecord(view.Activity), nil
}
