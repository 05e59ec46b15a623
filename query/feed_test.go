package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestFeedAboutQuery_PaginationClampsToLastPage(t *testing.T) {
	f := newFixture(t)
	ann := f.addUser("ann")
	post := types.NewSubjectRef("post", "1")
	for i := 0; i < 20; i++ {
		mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: post, Action: types.ActionCommented, Privacy: types.PrivacyPublic})
	}
	q := NewFeedAboutQuery(f.config())

	view, err := q.Query(context.Background(), types.FeedAboutFilter{
		Viewer: ann,
		About:  []types.SubjectRef{post},
		Params: types.FeedParams{Page: "99"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, view.Page.Page)
	require.Equal(t, 15, view.Page.PageSize)
	require.Equal(t, 2, view.Page.TotalPages)
	require.Len(t, view.Page.Items, 5)
	require.False(t, view.Page.HasMore)

	for _, raw := range []string{"0", "-5", "abc", ""} {
		view, err = q.Query(context.Background(), types.FeedAboutFilter{
			Viewer: ann,
			About:  []types.SubjectRef{post},
			Params: types.FeedParams{Page: raw, PageSize: raw},
		})
		require.NoError(t, err, "raw=%q", raw)
		require.Equal(t, 1, view.Page.Page, "raw=%q", raw)
		require.Len(t, view.Page.Items, 15, "raw=%q", raw)
		require.True(t, view.Page.HasMore)
	}

	first, err := q.Query(context.Background(), types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{post}})
	require.NoError(t, err)
	again, err := q.Query(context.Background(), types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{post}})
	require.NoError(t, err)
	require.Equal(t, first.Page.Items, again.Page.Items)
	require.True(t, first.Page.Items[0].CreatedAt.After(first.Page.Items[1].CreatedAt))
}

func TestFeedAboutQuery_FiltersAndPrefetch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.addUser("ann")
	bob := f.addUser("bob")
	post := types.NewSubjectRef("post", "1")

	shared := mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: post, Action: types.ActionShared, Privacy: types.PrivacyPublic})
	mustCreate(t, f.store, types.Activity{CreatedBy: bob.ID, About: post, Action: types.ActionCommented, Source: types.SourceSystem, Privacy: types.PrivacyPublic})
	mustCreate(t, f.store, types.Activity{CreatedBy: bob.ID, About: post, Action: types.ActionCommented})
	_, err := f.store.AddReply(ctx, types.Reply{ActivityID: shared.ID, CreatedBy: bob.ID, Text: "nice"})
	require.NoError(t, err)

	q := NewFeedAboutQuery(f.config())
	view, err := q.Query(ctx, types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{post}})
	require.NoError(t, err)
	require.Equal(t, 2, view.Page.Total, "bob's private comment is hidden from ann")
	require.Equal(t, "/posts/1/activities", view.FeedURL)
	require.True(t, view.Shared.Has(post))
	require.Equal(t, "Launch notes", types.DisplayName(view.Subjects.Get(post)))
	require.Equal(t, "bob", types.DisplayName(view.Subjects.Get(bob.Subject())))
	require.Equal(t, 1, f.posts.Calls())
	require.Equal(t, 1, f.users.Calls())

	view, err = q.Query(ctx, types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{post}, Params: types.FeedParams{Source: "system"}})
	require.NoError(t, err)
	require.Equal(t, 1, view.Page.Total)
	require.Equal(t, types.SourceSystem, view.Page.Items[0].Source)

	view, err = q.Query(ctx, types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{post}, Params: types.FeedParams{Source: "robots", Action: "danced"}})
	require.NoError(t, err)
	require.Equal(t, 2, view.Page.Total, "unknown filters are ignored")

	view, err = q.Query(ctx, types.FeedAboutFilter{Viewer: types.Anonymous(), About: []types.SubjectRef{post}, Params: types.FeedParams{Action: "shared"}})
	require.NoError(t, err)
	require.Equal(t, 1, view.Page.Total)
	require.Empty(t, view.Shared)
	require.Len(t, view.Page.Items[0].Replies, 1)
}

func TestFeedAboutQuery_KindPageSizeAndValidation(t *testing.T) {
	f := newFixture(t)
	ann := f.addUser("ann")
	post := types.NewSubjectRef("post", "2")
	for i := 0; i < 4; i++ {
		mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: post, Action: types.ActionCreated})
	}
	kind, _ := f.registry.Kind("post")
	kind.PageSize = 3
	require.NoError(t, f.registry.Register(kind))

	q := NewFeedAboutQuery(f.config())
	view, err := q.Query(context.Background(), types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{post}})
	require.NoError(t, err)
	require.Equal(t, 3, view.Page.PageSize)
	require.Equal(t, 2, view.Page.TotalPages)
	require.Equal(t, "/posts/2/feed", view.FeedURL)

	_, err = q.Query(context.Background(), types.FeedAboutFilter{Viewer: ann})
	require.ErrorIs(t, err, types.ErrSubjectRequired)
}

func TestFeedForUserQuery(t *testing.T) {
	f := newFixture(t)
	ann := f.addUser("ann")
	bob := f.addUser("bob")
	cat := f.addUser("cat")

	mustCreate(t, f.store, types.Activity{CreatedBy: bob.ID, Action: types.ActionAdded, Audience: []types.SubjectRef{ann.Subject()}})
	mustCreate(t, f.store, types.Activity{CreatedBy: bob.ID, Action: types.ActionAdded, Audience: []types.SubjectRef{cat.Subject()}})

	q := NewFeedForUserQuery(f.config())
	view, err := q.Query(context.Background(), types.FeedForUserFilter{Viewer: ann})
	require.NoError(t, err)
	require.Equal(t, 1, view.Page.Total)
	require.Equal(t, "/activities", view.FeedURL)

	view, err = q.Query(context.Background(), types.FeedForUserFilter{Viewer: ann, UserID: cat.ID})
	require.NoError(t, err)
	require.Zero(t, view.Page.Total, "cat's private items are not visible to ann")
	require.Equal(t, 1, view.Page.Page)

	_, err = q.Query(context.Background(), types.FeedForUserFilter{Viewer: types.Anonymous()})
	require.ErrorIs(t, err, types.ErrUserIDRequired)
}

func TestFeedAboutQuery_LoaderFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registry.MustRegister(subject.Kind{Name: "photo", Loader: subject.LoaderFunc(func(context.Context, []string) (map[string]types.Subject, error) {
		return nil, errors.New("db down")
	})})
	ann := f.addUser("ann")
	photo := types.NewSubjectRef("photo", "1")
	mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: photo, Action: types.ActionUploaded, Privacy: types.PrivacyPublic})

	_, err := NewFeedAboutQuery(f.config()).Query(ctx, types.FeedAboutFilter{Viewer: ann, About: []types.SubjectRef{photo}})
	require.ErrorContains(t, err, "db down")

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	require.Equal(t, goerrors.CategoryInternal, rich.Category)
	require.Equal(t, types.TextCodeInternal, rich.TextCode)

	_, err = NewActivityDetailQuery(f.config()).Query(ctx, types.ActivityLookup{Viewer: ann, ActivityID: mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: photo, Action: types.ActionUploaded}).ID})
	require.True(t, goerrors.As(err, &rich))
	require.Equal(t, goerrors.CategoryInternal, rich.Category)
}
