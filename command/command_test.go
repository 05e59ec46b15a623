package command

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/scope"
	"github.com/goliatone/go-activities/subject"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestCreateActivityCommand_DefaultsAndHook(t *testing.T) {
	store, _ := newTestStore(t)
	var events []types.ActivityEvent
	cmd := NewCreateActivityCommand(Config{
		Repository: store,
		Hooks: types.Hooks{
			AfterActivityCreate: func(_ context.Context, event types.ActivityEvent) {
				events = append(events, event)
			},
		},
	})

	actor := types.ActorRef{ID: uuid.New()}
	var result types.Activity
	err := cmd.Execute(context.Background(), CreateActivityInput{
		Actor:  actor,
		About:  types.NewSubjectRef("post", "1"),
		Action: "created",
		Result: &result,
	})
	require.NoError(t, err)
	require.Equal(t, types.ActionCreated, result.Action)
	require.Equal(t, types.SourceUser, result.Source)
	require.Equal(t, types.PrivacyPrivate, result.Privacy)
	require.Len(t, events, 1)
	require.Equal(t, types.EventOperationCreated, events[0].Operation)
	require.Equal(t, actor.ID, events[0].ActorID)
}

func TestCreateActivityCommand_Validation(t *testing.T) {
	store, _ := newTestStore(t)
	cmd := NewCreateActivityCommand(Config{Repository: store})
	actor := types.ActorRef{ID: uuid.New()}

	cases := map[string]struct {
		input CreateActivityInput
		want  error
	}{
		"anonymous":   {CreateActivityInput{Action: types.ActionCreated}, types.ErrActorRequired},
		"bad action":  {CreateActivityInput{Actor: actor, Action: "DANCED"}, types.ErrInvalidAction},
		"bad source":  {CreateActivityInput{Actor: actor, Action: types.ActionCreated, Source: "BOT"}, types.ErrInvalidSource},
		"bad privacy": {CreateActivityInput{Actor: actor, Action: types.ActionCreated, Privacy: "FRIENDS"}, types.ErrInvalidPrivacy},
		"bad group":   {CreateActivityInput{Actor: actor, Action: types.ActionCreated, GroupID: uuid.New()}, types.ErrGroupNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := cmd.Execute(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.want)
			require.False(t, types.IsNotFound(err))
		})
	}
}

func TestCreateActivityCommand_GuardRejects(t *testing.T) {
	store, _ := newTestStore(t)
	guard := scope.NewGuard(nil, types.AuthorizationPolicyFunc(func(_ context.Context, check types.PolicyCheck) error {
		if check.Action == types.PolicyActionActivityWrite {
			return types.ErrUnauthorizedScope
		}
		return nil
	}))
	cmd := NewCreateActivityCommand(Config{Repository: store, Guard: guard})

	err := cmd.Execute(context.Background(), CreateActivityInput{
		Actor:  types.ActorRef{ID: uuid.New()},
		Action: types.ActionCreated,
	})
	require.True(t, types.IsPermissionDenied(err))
}

func TestCommands_RequireRepository(t *testing.T) {
	err := NewCreateActivityCommand(Config{}).Execute(context.Background(), CreateActivityInput{})
	require.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestDeleteActivityCommand_CreatorOnly(t *testing.T) {
	store, _ := newTestStore(t)
	creator := types.ActorRef{ID: uuid.New()}
	created := createActivity(t, store, creator, types.ActionCreated, types.NewSubjectRef("post", "1"))

	var deletedEvents int
	cmd := NewDeleteActivityCommand(Config{
		Repository: store,
		Hooks: types.Hooks{
			AfterActivityDelete: func(context.Context, types.ActivityEvent) { deletedEvents++ },
		},
	})

	err := cmd.Execute(context.Background(), DeleteActivityInput{
		Actor:      types.ActorRef{ID: uuid.New()},
		ActivityID: created.ID,
	})
	require.ErrorIs(t, err, types.ErrPermissionDenied)
	require.True(t, types.IsPermissionDenied(err))

	var deleted types.Activity
	require.NoError(t, cmd.Execute(context.Background(), DeleteActivityInput{
		Actor:      creator,
		ActivityID: created.ID,
		Result:     &deleted,
	}))
	require.Equal(t, created.ID, deleted.ID)
	require.Equal(t, 1, deletedEvents)

	err = cmd.Execute(context.Background(), DeleteActivityInput{Actor: creator, ActivityID: created.ID})
	require.ErrorIs(t, err, types.ErrActivityNotFound)
	require.True(t, types.IsNotFound(err))
}

type stubFeatureGate struct {
	enabled  bool
	err      error
	keys     []string
	disabled map[string]bool
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	if s.disabled[key] {
		return false, nil
	}
	return s.enabled, nil
}

func TestFeatureGate_Errors(t *testing.T) {
	store, _ := newTestStore(t)
	creator := types.ActorRef{ID: uuid.New()}
	created := createActivity(t, store, creator, types.ActionCreated, types.NewSubjectRef("post", "1"))

	gate := &stubFeatureGate{err: errors.New("gate offline")}
	cmd := NewAddReplyCommand(Config{Repository: store, FeatureGate: gate})
	err := cmd.Execute(context.Background(), AddReplyInput{Actor: creator, ActivityID: created.ID, Text: "hi"})
	require.EqualError(t, err, "gate offline")
	require.Equal(t, []string{FeatureReplies}, gate.keys)
}

func TestKindFeature(t *testing.T) {
	require.Equal(t, "activities.sharing.post", KindFeature(FeatureSharing, " Post "))
	require.Equal(t, FeatureSharing, KindFeature(FeatureSharing, ""))
}

func TestFeatureScopeSet(t *testing.T) {
	require.Nil(t, featureScopeSet(types.ScopeFilter{}, uuid.Nil))

	tenant := uuid.New()
	user := uuid.New()
	set := featureScopeSet(types.ScopeFilter{TenantID: tenant}, user)
	require.NotNil(t, set)
	require.True(t, set.System)
	require.Equal(t, tenant.String(), set.TenantID)
	require.Empty(t, set.OrgID)
	require.Equal(t, user.String(), set.UserID)
}

func newTestStore(t *testing.T) (*activity.Repository, *bun.DB) {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})

	ctx := context.Background()
	require.NoError(t, activity.EnsureSchema(ctx, db))
	_, err = db.ExecContext(ctx, `CREATE TABLE posts (id TEXT PRIMARY KEY, share_count INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)
	for _, id := range []string{"1", "2"} {
		_, err = db.ExecContext(ctx, `INSERT INTO posts (id, share_count) VALUES (?, 0)`, id)
		require.NoError(t, err)
	}

	registry := subject.NewRegistry()
	registry.MustRegister(subject.Kind{Name: "post", ShareCounter: subject.NewTableShareCounter("posts")})

	store, err := activity.NewRepository(activity.RepositoryConfig{DB: db, Subjects: registry})
	require.NoError(t, err)
	return store, db
}

func createActivity(t *testing.T, store *activity.Repository, actor types.ActorRef, action types.Action, about types.SubjectRef) *types.Activity {
	t.Helper()
	created, err := store.CreateActivity(context.Background(), types.Activity{
		CreatedBy: actor.ID,
		About:     about,
		Source:    types.SourceUser,
		Action:    action,
	})
	require.NoError(t, err)
	return created
}

func postShares(t *testing.T, db *bun.DB, id string) int {
	t.Helper()
	var count int
	require.NoError(t, db.NewSelect().
		TableExpr("posts").
		ColumnExpr("share_count").
		Where("id = ?", id).
		Scan(context.Background(), &count))
	return count
}

func replyCount(t *testing.T, store *activity.Repository, id uuid.UUID) int {
	t.Helper()
	loaded, err := store.GetActivity(context.Background(), id)
	require.NoError(t, err)
	return loaded.ReplyCount
}

var longText = strings.Repeat("é", DefaultMaxReplyLength+1)
