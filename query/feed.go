package query

import (
	"context"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// FeedView is one rendered-ready feed page: the activities, every subject they
// reference resolved in one pass per kind, and the subjects the viewer already
// shared.
type FeedView struct {
	Page     types.FeedPage
	Subjects subject.Resolved
	Shared   types.SharedMap
	FeedURL  string
}

// FeedAboutQuery lists the activities about one or more subjects.
type FeedAboutQuery struct {
	deps
}

// NewFeedAboutQuery constructs the subject feed handler.
func NewFeedAboutQuery(cfg Config) *FeedAboutQuery {
	return &FeedAboutQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.FeedAboutFilter, FeedView] = (*FeedAboutQuery)(nil)

// Query returns the requested page, newest first. Unknown source or action
// filters are ignored.
func (q *FeedAboutQuery) Query(ctx context.Context, filter types.FeedAboutFilter) (FeedView, error) {
	if err := q.ready(); err != nil {
		return FeedView{}, err
	}
	if err := filter.Validate(); err != nil {
		return FeedView{}, types.ValidationError(err)
	}
	about := make([]types.SubjectRef, 0, len(filter.About))
	for _, ref := range filter.About {
		about = append(about, types.NewSubjectRef(ref.Type, ref.ID))
	}
	if _, err := q.guard.Enforce(ctx, types.PolicyCheck{
		Actor:   filter.Viewer,
		Scope:   filter.Scope,
		Action:  types.PolicyActionActivityRead,
		Subject: about[0],
	}); err != nil {
		return FeedView{}, err
	}

	paging, err := ResolvePaging(q.paging, q.kindPageSize(about), filter.Params)
	if err != nil {
		return FeedView{}, err
	}
	view, err := q.feed(ctx, filter.Viewer, types.FeedFilter{
		Viewer: filter.Viewer,
		About:  about,
		Source: types.CheckSource(filter.Params.Source),
		Action: types.CheckAction(filter.Params.Action),
		Paging: paging,
	}, about)
	if err != nil {
		return FeedView{}, err
	}
	if len(about) == 1 {
		view.FeedURL = activity.FeedURL(view.Subjects.Get(about[0]))
	}
	return view, nil
}

// kindPageSize returns the page size override when every subject shares one
// kind.
func (d deps) kindPageSize(refs []types.SubjectRef) int {
	if len(refs) == 0 {
		return 0
	}
	name := refs[0].Type
	for _, ref := range refs[1:] {
		if ref.Type != name {
			return 0
		}
	}
	kind, ok := d.subjects.Kind(name)
	if !ok {
		return 0
	}
	return kind.PageSize
}

// FeedForUserQuery lists the activities whose audience includes a user.
type FeedForUserQuery struct {
	deps
}

// NewFeedForUserQuery constructs the user feed handler.
func NewFeedForUserQuery(cfg Config) *FeedForUserQuery {
	return &FeedForUserQuery{deps: newDeps(cfg)}
}

var _ gocommand.Querier[types.FeedForUserFilter, FeedView] = (*FeedForUserQuery)(nil)

// Query returns the audience feed of UserID, defaulting to the viewer.
func (q *FeedForUserQuery) Query(ctx context.Context, filter types.FeedForUserFilter) (FeedView, error) {
	if err := q.ready(); err != nil {
		return FeedView{}, err
	}
	if err := filter.Validate(); err != nil {
		return FeedView{}, types.ValidationError(err)
	}
	userID := filter.UserID
	if userID == uuid.Nil {
		userID = filter.Viewer.ID
	}
	audience := types.UserSubject(userID)
	if _, err := q.guard.Enforce(ctx, types.PolicyCheck{
		Actor:   filter.Viewer,
		Scope:   filter.Scope,
		Action:  types.PolicyActionActivityRead,
		Subject: audience,
	}); err != nil {
		return FeedView{}, err
	}

	paging, err := ResolvePaging(q.paging, q.kindPageSize([]types.SubjectRef{audience}), filter.Params)
	if err != nil {
		return FeedView{}, err
	}
	view, err := q.feed(ctx, filter.Viewer, types.FeedFilter{
		Viewer:   filter.Viewer,
		Audience: audience,
		Source:   types.CheckSource(filter.Params.Source),
		Action:   types.CheckAction(filter.Params.Action),
		Paging:   paging,
	}, nil)
	if err != nil {
		return FeedView{}, err
	}
	view.FeedURL = activity.FeedURL(view.Subjects.Get(audience))
	return view, nil
}

// feed loads the page and prefetches everything the page renders: subjects,
// creators, reply authors and the already-shared map.
func (d deps) feed(ctx context.Context, viewer types.ActorRef, filter types.FeedFilter, extra []types.SubjectRef) (FeedView, error) {
	page, err := d.repo.ListFeed(ctx, filter)
	if err != nil {
		return FeedView{}, boundaryError(err)
	}

	refs := append([]types.SubjectRef{}, extra...)
	if !filter.Audience.IsZero() {
		refs = append(refs, filter.Audience)
	}
	about := make([]types.SubjectRef, 0, len(page.Items))
	for _, item := range page.Items {
		refs = append(refs, item.Creator())
		if item.HasAbout() {
			refs = append(refs, item.About)
			about = append(about, item.About)
		}
		for _, reply := range item.Replies {
			refs = append(refs, reply.Author())
		}
	}
	resolved, err := d.subjects.ResolveMany(ctx, refs)
	if err != nil {
		return FeedView{}, boundaryError(err)
	}
	shared, err := d.repo.SharedBy(ctx, viewer.ID, about)
	if err != nil {
		return FeedView{}, boundaryError(err)
	}
	return FeedView{
		Page:     page,
		Subjects: resolved,
		Shared:   shared,
	}, nil
}
