package crudsvc

import (
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

// ReplyServiceConfig wires dependencies for the CRUD-backed reply service.
type ReplyServiceConfig struct {
	Guard  GuardAdapter
	Add    gocommand.Commander[command.AddReplyInput]
	Delete gocommand.Commander[command.DeleteReplyInput]
	Reply  gocommand.Querier[types.ReplyLookup, types.Reply]
	Detail gocommand.Querier[types.ActivityLookup, query.ActivityView]
}

// ReplyService exposes replies as a nested resource. The parent activity comes
// from the record body or the activity_id query parameter.
type ReplyService struct {
	guard    GuardAdapter
	add      gocommand.Commander[command.AddReplyInput]
	delete   gocommand.Commander[command.DeleteReplyInput]
	reply    gocommand.Querier[types.ReplyLookup, types.Reply]
	detail   gocommand.Querier[types.ActivityLookup, query.ActivityView]
	logger   types.Logger
	maxBatch int
}

// NewReplyService constructs the adapter.
func NewReplyService(cfg ReplyServiceConfig, opts ...ServiceOption) *ReplyService {
	options := applyOptions(opts)
	return &ReplyService{
		guard:    cfg.Guard,
		add:      cfg.Add,
		delete:   cfg.Delete,
		reply:    cfg.Reply,
		detail:   cfg.Detail,
		logger:   options.logger,
		maxBatch: options.maxBatch,
	}
}

func (s *ReplyService) Create(ctx crud.Context, record *activity.Reply) (*activity.Reply, error) {
	if s.add == nil || s.guard == nil {
		return nil, missingHandler("reply add command")
	}
	if record == nil {
		return nil, invalidID("activity id")
	}
	activityID := parentID(ctx, record.ActivityID)
	if activityID == uuid.Nil {
		return nil, invalidID("activity id")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpCreate,
		TargetID:  activityID,
	})
	if err != nil {
		return nil, err
	}

	var created types.Reply
	input := command.AddReplyInput{
		Actor:      res.Actor,
		Scope:      res.Scope,
		ActivityID: activityID,
		Text:       record.Text,
		Result:     &created,
	}
	if record.ReplyToID != nil {
		input.ReplyToID = *record.ReplyToID
	}
	if err := s.add.Execute(ctx.UserContext(), input); err != nil {
		return nil, err
	}
	return activity.FromReplyRecord(created), nil
}

func (s *ReplyService) CreateBatch(ctx crud.Context, records []*activity.Reply) ([]*activity.Reply, error) {
	return createEach(ctx, s.maxBatch, records, s.Create)
}

func (s *ReplyService) Update(crud.Context, *activity.Reply) (*activity.Reply, error) {
	return nil, notSupported(crud.OpUpdate)
}

func (s *ReplyService) UpdateBatch(crud.Context, []*activity.Reply) ([]*activity.Reply, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

// Delete removes the reply. Deleting a reply that no longer exists succeeds.
func (s *ReplyService) Delete(ctx crud.Context, record *activity.Reply) error {
	if s.delete == nil || s.guard == nil {
		return missingHandler("reply delete command")
	}
	if record == nil || record.ID == uuid.Nil {
		return invalidID("reply id")
	}
	activityID := parentID(ctx, record.ActivityID)
	if activityID == uuid.Nil {
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

	var result command.DeleteReplyResult
	err = s.delete.Execute(ctx.UserContext(), command.DeleteReplyInput{
		Actor:      res.Actor,
		Scope:      res.Scope,
		ActivityID: activityID,
		ReplyID:    record.ID,
		Result:     &result,
	})
	if err != nil {
		return err
	}
	if !result.Deleted {
		s.logger.Debug("reply already removed", "activity_id", activityID.String(), "reply_id", record.ID.String())
	}
	return nil
}

func (s *ReplyService) DeleteBatch(ctx crud.Context, records []*activity.Reply) error {
	return deleteEach(ctx, s.maxBatch, records, s.Delete)
}

// Index lists the replies of the activity named by activity_id, oldest first.
func (s *ReplyService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*activity.Reply, int, error) {
	if s.detail == nil || s.guard == nil {
		return nil, 0, missingHandler("activity detail query")
	}
	activityID := queryUUID(ctx, "activity_id")
	if activityID == uuid.Nil {
		return nil, 0, invalidID("activity id")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpList,
		TargetID:  activityID,
	})
	if err != nil {
		return nil, 0, err
	}
	view, err := s.detail.Query(ctx.UserContext(), types.ActivityLookup{
		Viewer:     res.Actor,
		Scope:      res.Scope,
		ActivityID: activityID,
	})
	if err != nil {
		return nil, 0, err
	}
	replies := make([]*activity.Reply, 0, len(view.Activity.Replies))
	for _, reply := range view.Activity.Replies {
		replies = append(replies, activity.FromReplyRecord(reply))
	}
	return replies, len(replies), nil
}

func (s *ReplyService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*activity.Reply, error) {
	if s.reply == nil || s.guard == nil {
		return nil, missingHandler("reply detail query")
	}
	replyID := parseUUID(id)
	if replyID == uuid.Nil {
		return nil, invalidID("reply id")
	}
	activityID := queryUUID(ctx, "activity_id")
	if activityID == uuid.Nil {
		return nil, invalidID("activity id")
	}
	res, err := s.guard.Enforce(crudguard.GuardInput{
		Context:   ctx,
		Operation: crud.OpRead,
		TargetID:  replyID,
	})
	if err != nil {
		return nil, err
	}
	reply, err := s.reply.Query(ctx.UserContext(), types.ReplyLookup{
		Viewer:     res.Actor,
		Scope:      res.Scope,
		ActivityID: activityID,
		ReplyID:    replyID,
	})
	if err != nil {
		return nil, err
	}
	return activity.FromReplyRecord(reply), nil
}

func parentID(ctx crud.Context, fromRecord uuid.UUID) uuid.UUID {
	if fromRecord != uuid.Nil {
		return fromRecord
	}
	if id := queryUUID(ctx, "activity_id"); id != uuid.Nil {
		return id
	}
	return paramUUID(ctx, "activity_id")
}
