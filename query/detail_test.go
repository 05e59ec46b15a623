package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestActivityDetailQuery_AccessMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.addUser("ann")
	member := f.addUser("bob")
	stranger := f.addUser("cat")
	post := types.NewSubjectRef("post", "1")

	private := mustCreate(t, f.store, types.Activity{CreatedBy: creator.ID, About: post, Action: types.ActionCreated, Audience: []types.SubjectRef{member.Subject()}})
	public := mustCreate(t, f.store, types.Activity{CreatedBy: creator.ID, About: post, Action: types.ActionCreated, Privacy: types.PrivacyPublic})

	q := NewActivityDetailQuery(f.config())
	cases := []struct {
		name   string
		id     uuid.UUID
		viewer types.ActorRef
		want   activity.AccessReason
	}{
		{"public anonymous", public.ID, types.Anonymous(), activity.AccessPublic},
		{"private creator", private.ID, creator, activity.AccessCreator},
		{"private audience", private.ID, member, activity.AccessAudience},
		{"private stranger", private.ID, stranger, activity.AccessDenied},
		{"private anonymous", private.ID, types.Anonymous(), activity.AccessDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view, err := q.Query(ctx, types.ActivityLookup{Viewer: tc.viewer, ActivityID: tc.id})
			if tc.want == activity.AccessDenied {
				require.ErrorIs(t, err, types.ErrPermissionDenied)
				require.True(t, types.IsPermissionDenied(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, view.Access)
			require.Equal(t, "Launch notes", types.DisplayName(view.Subjects.Get(post)))
			require.Equal(t, "ann", types.DisplayName(view.Subjects.Get(view.Activity.Creator())))
		})
	}

	_, err := q.Query(ctx, types.ActivityLookup{Viewer: creator, ActivityID: uuid.New()})
	require.ErrorIs(t, err, types.ErrActivityNotFound)
	require.True(t, types.IsNotFound(err))

	_, err = q.Query(ctx, types.ActivityLookup{Viewer: creator})
	require.ErrorIs(t, err, types.ErrActivityIDRequired)
}

func TestActivityDetailQuery_GuardRunsFirst(t *testing.T) {
	f := newFixture(t)
	var seen types.PolicyCheck
	cfg := f.config()
	cfg.Guard = scope.NewGuard(nil, types.AuthorizationPolicyFunc(func(_ context.Context, check types.PolicyCheck) error {
		seen = check
		return types.ErrUnauthorizedScope
	}))
	target := uuid.New()

	_, err := NewActivityDetailQuery(cfg).Query(context.Background(), types.ActivityLookup{ActivityID: target})
	require.ErrorIs(t, err, types.ErrUnauthorizedScope)
	require.Equal(t, types.PolicyActionActivityRead, seen.Action)
	require.Equal(t, target, seen.TargetID)
}

func TestReplyDetailQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.addUser("ann")
	stranger := f.addUser("cat")
	first := mustCreate(t, f.store, types.Activity{CreatedBy: creator.ID, Action: types.ActionCreated})
	second := mustCreate(t, f.store, types.Activity{CreatedBy: creator.ID, Action: types.ActionCreated})
	reply, err := f.store.AddReply(ctx, types.Reply{ActivityID: first.ID, CreatedBy: creator.ID, Text: "hello"})
	require.NoError(t, err)

	q := NewReplyDetailQuery(f.config())
	got, err := q.Query(ctx, types.ReplyLookup{Viewer: creator, ActivityID: first.ID, ReplyID: reply.ID})
	require.NoError(t, err)
	require.Equal(t, "hello", got.Text)

	_, err = q.Query(ctx, types.ReplyLookup{Viewer: creator, ActivityID: second.ID, ReplyID: reply.ID})
	require.ErrorIs(t, err, types.ErrReplyNotFound)
	require.True(t, types.IsNotFound(err))

	_, err = q.Query(ctx, types.ReplyLookup{Viewer: stranger, ActivityID: first.ID, ReplyID: reply.ID})
	require.True(t, types.IsPermissionDenied(err))
}

func TestAudienceQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := f.addUser("ann")
	member := f.addUser("bob")
	post := types.NewSubjectRef("post", "2")
	created := mustCreate(t, f.store, types.Activity{
		CreatedBy: creator.ID,
		Action:    types.ActionAdded,
		Audience:  []types.SubjectRef{member.Subject(), post},
	})

	view, err := NewAudienceQuery(f.config()).Query(ctx, types.AudienceLookup{Viewer: member, ActivityID: created.ID})
	require.NoError(t, err)
	require.ElementsMatch(t, []types.SubjectRef{member.Subject(), post}, view.Refs)
	require.Equal(t, "bob", types.DisplayName(view.Subjects.Get(member.Subject())))
	require.Equal(t, "Roadmap", types.DisplayName(view.Subjects.Get(post)))
}

func TestSharedObjectsAndStatsQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.addUser("ann")
	bob := f.addUser("bob")
	first := types.NewSubjectRef("post", "1")
	second := types.NewSubjectRef("post", "2")

	mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: first, Action: types.ActionShared, Privacy: types.PrivacyPublic})
	mustCreate(t, f.store, types.Activity{CreatedBy: ann.ID, About: first, Action: types.ActionCommented, Privacy: types.PrivacyPublic})
	mustCreate(t, f.store, types.Activity{CreatedBy: bob.ID, About: first, Action: types.ActionCommented})

	shared, err := NewSharedObjectsQuery(f.config()).Query(ctx, types.SharedLookup{Viewer: ann, Subjects: []types.SubjectRef{first, second}})
	require.NoError(t, err)
	require.Equal(t, types.SharedMap{first: true, second: false}, shared)

	shared, err = NewSharedObjectsQuery(f.config()).Query(ctx, types.SharedLookup{Viewer: types.Anonymous(), Subjects: []types.SubjectRef{first}})
	require.NoError(t, err)
	require.Empty(t, shared)

	stats, err := NewActionStatsQuery(f.config()).Query(ctx, types.ActionStatsFilter{Viewer: ann, About: []types.SubjectRef{first}})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.ByAction[types.ActionShared])
	require.Equal(t, 1, stats.ByAction[types.ActionCommented])

	stats, err = NewActionStatsQuery(f.config()).Query(ctx, types.ActionStatsFilter{Viewer: bob, About: []types.SubjectRef{first}})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)

	_, err = NewActionStatsQuery(Config{}).Query(ctx, types.ActionStatsFilter{})
	require.ErrorIs(t, err, types.ErrMissingActivityRepository)
}
