package query

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// ReplyDetailQuery resolves one reply through its parent activity.
type ReplyDetailQuery struct {
	deps
}

// NewReplyDetailQuery constructs the reply handler.
func NewReplyDetailQuery(cfg Config) *ReplyDetailQuery {
	return &ReplyDetailQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.ReplyLookup, types.Reply] = (*ReplyDetailQuery)(nil)

// Query returns the reply when the viewer may read the parent activity. A
// reply of another activity is not found.
func (q *ReplyDetailQuery) Query(ctx context.Context, lookup types.ReplyLookup) (types.Reply, error) {
	if err := q.ready(); err != nil {
		return types.Reply{}, err
	}
	if err := lookup.Validate(); err != nil {
		return types.Reply{}, types.ValidationError(err)
	}
	if _, _, err := q.readable(ctx, lookup.Viewer, lookup.Scope, lookup.ActivityID); err != nil {
		return types.Reply{}, err
	}
	reply, err := q.repo.GetReply(ctx, lookup.ActivityID, lookup.ReplyID)
	if err != nil {
		return types.Reply{}, boundaryError(err)
	}
	return *reply, nil
}
