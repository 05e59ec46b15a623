package query

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	gocommand "github.com/goliatone/go-command"
)

// AudienceView lists the audience of an activity with the loaded subjects.
type AudienceView struct {
	Refs     []types.SubjectRef
	Subjects subject.Resolved
}

// AudienceQuery resolves the audience ("for" objects) of one activity.
type AudienceQuery struct {
	deps
}

// NewAudienceQuery constructs the audience handler.
func NewAudienceQuery(cfg Config) *AudienceQuery {
	return &AudienceQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.AudienceLookup, AudienceView] = (*AudienceQuery)(nil)

// Query loads the audience subjects with one load per kind.
func (q *AudienceQuery) Query(ctx context.Context, lookup types.AudienceLookup) (AudienceView, error) {
	if err := q.ready(); err != nil {
		return AudienceView{}, err
	}
	if err := lookup.Validate(); err != nil {
		return AudienceView{}, types.ValidationError(err)
	}
	record, _, err := q.readable(ctx, lookup.Viewer, lookup.Scope, lookup.ActivityID)
	if err != nil {
		return AudienceView{}, err
	}
	resolved, err := q.subjects.ResolveMany(ctx, record.Audience)
	if err != nil {
		return AudienceView{}, boundaryError(err)
	}
	return AudienceView{
		Refs:     append([]types.SubjectRef{}, record.Audience...),
		Subjects: resolved,
	}, nil
}
