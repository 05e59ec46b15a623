package query

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// ActionStatsQuery aggregates the visible activities of a subject per action.
type ActionStatsQuery struct {
	deps
}

// NewActionStatsQuery constructs the stats handler.
func NewActionStatsQuery(cfg Config) *ActionStatsQuery {
	return &ActionStatsQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.ActionStatsFilter, types.ActionStats] = (*ActionStatsQuery)(nil)

// Query returns aggregate counts for UI widgets.
func (q *ActionStatsQuery) Query(ctx context.Context, filter types.ActionStatsFilter) (types.ActionStats, error) {
	if err := q.ready(); err != nil {
		return types.ActionStats{}, err
	}
	if err := filter.Validate(); err != nil {
		return types.ActionStats{}, types.ValidationError(err)
	}
	if _, err := q.guard.Enforce(ctx, types.PolicyCheck{
		Actor:   filter.Viewer,
		Scope:   filter.Scope,
		Action:  types.PolicyActionActivityRead,
		Subject: filter.About[0],
	}); err != nil {
		return types.ActionStats{}, err
	}
	stats, err := q.repo.ActionStats(ctx, filter.Viewer, filter.About)
	if err != nil {
		return types.ActionStats{}, boundaryError(err)
	}
	return stats, nil
}
