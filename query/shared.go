package query

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// SharedObjectsQuery reports which subjects the viewer already shared.
type SharedObjectsQuery struct {
	deps
}

// NewSharedObjectsQuery constructs the shared map handler.
func NewSharedObjectsQuery(cfg Config) *SharedObjectsQuery {
	return &SharedObjectsQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.SharedLookup, types.SharedMap] = (*SharedObjectsQuery)(nil)

// Query answers with one entry per subject. Anonymous viewers get an empty map.
func (q *SharedObjectsQuery) Query(ctx context.Context, lookup types.SharedLookup) (types.SharedMap, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	if lookup.Viewer.IsAnonymous() {
		return types.SharedMap{}, nil
	}
	if _, err := q.guard.Enforce(ctx, types.PolicyCheck{
		Actor:  lookup.Viewer,
		Scope:  lookup.Scope,
		Action: types.PolicyActionActivityRead,
	}); err != nil {
		return nil, err
	}
	shared, err := q.repo.SharedBy(ctx, lookup.Viewer.ID, lookup.Subjects)
	if err != nil {
		return nil, boundaryError(err)
	}
	return shared, nil
}
