package query

import (
	"context"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// ActivityView is a single activity with the subjects it references and the
// rule that granted access.
type ActivityView struct {
	Activity types.Activity
	Subjects subject.Resolved
	Access   activity.AccessReason
}

// ActivityDetailQuery resolves one activity by id for a viewer.
type ActivityDetailQuery struct {
	deps
}

// NewActivityDetailQuery constructs the detail handler.
func NewActivityDetailQuery(cfg Config) *ActivityDetailQuery {
	return &ActivityDetailQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.ActivityLookup, ActivityView] = (*ActivityDetailQuery)(nil)

// Query loads the activity and applies the read rule. Unknown ids are not
// found; private activities the viewer may not read are permission denied.
func (q *ActivityDetailQuery) Query(ctx context.Context, lookup types.ActivityLookup) (ActivityView, error) {
	if err := q.ready(); err != nil {
		return ActivityView{}, err
	}
	if err := lookup.Validate(); err != nil {
		return ActivityView{}, types.ValidationError(err)
	}
	record, reason, err := q.readable(ctx, lookup.Viewer, lookup.Scope, lookup.ActivityID)
	if err != nil {
		return ActivityView{}, err
	}

	refs := []types.SubjectRef{record.Creator(), record.About}
	for _, reply := range record.Replies {
		refs = append(refs, reply.Author())
	}
	resolved, err := q.subjects.ResolveMany(ctx, refs)
	if err != nil {
		return ActivityView{}, boundaryError(err)
	}
	return ActivityView{
		Activity: *record,
		Subjects: resolved,
		Access:   reason,
	}, nil
}

// readable loads the activity and checks the viewer may read it.
func (d deps) readable(ctx context.Context, viewer types.ActorRef, requested types.ScopeFilter, activityID uuid.UUID) (*types.Activity, activity.AccessReason, error) {
	if _, err := d.guard.Enforce(ctx, types.PolicyCheck{
		Actor:    viewer,
		Scope:    requested,
		Action:   types.PolicyActionActivityRead,
		TargetID: activityID,
	}); err != nil {
		return nil, activity.AccessDenied, err
	}

	record, err := d.repo.GetActivity(ctx, activityID)
	if err != nil {
		return nil, activity.AccessDenied, boundaryError(err)
	}
	reason, err := activity.Decide(ctx, d.repo, *record, viewer)
	if err != nil {
		return nil, activity.AccessDenied, boundaryError(err)
	}
	if !reason.Allowed() {
		d.logger.Debug("activity read denied", "activity_id", record.ID, "viewer", viewer.ID)
		return nil, reason, types.PermissionDeniedError(nil)
	}
	return record, reason, nil
}
