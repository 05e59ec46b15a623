package activity

import (
	"context"
	"testing"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestReplyCount_TracksLiveReplies(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRepository(t)
	owner := uuid.New()
	act := mustCreate(t, store, types.Activity{CreatedBy: owner, Source: types.SourceUser, Action: types.ActionCreated})

	var ids []uuid.UUID
	for _, text := range []string{"one", "two", "three"} {
		reply, err := store.AddReply(ctx, types.Reply{ActivityID: act.ID, CreatedBy: uuid.New(), Text: text})
		require.NoError(t, err)
		ids = append(ids, reply.ID)
	}
	loaded, err := store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.ReplyCount)
	require.Len(t, loaded.Replies, 3)
	require.Equal(t, "one", loaded.Replies[0].Text)

	deleted, err := store.DeleteReply(ctx, act.ID, ids[1])
	require.NoError(t, err)
	require.NotNil(t, deleted)

	loaded, err = store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.ReplyCount)
	require.Len(t, loaded.Replies, 2)

	missing, err := store.DeleteReply(ctx, act.ID, ids[1])
	require.NoError(t, err)
	require.Nil(t, missing)

	loaded, err = store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.ReplyCount)
}

func TestReplyCount_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRepository(t)
	act := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), Source: types.SourceUser, Action: types.ActionCreated})
	reply, err := store.AddReply(ctx, types.Reply{ActivityID: act.ID, CreatedBy: uuid.New(), Text: "hello"})
	require.NoError(t, err)

	_, err = store.db.NewUpdate().Model((*Activity)(nil)).Set("reply_count = 0").Where("id = ?", act.ID).Exec(ctx)
	require.NoError(t, err)

	before := testutil.ToFloat64(counterClamps.WithLabelValues(counterReplyCount))
	_, err = store.DeleteReply(ctx, act.ID, reply.ID)
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(counterClamps.WithLabelValues(counterReplyCount)))

	loaded, err := store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Zero(t, loaded.ReplyCount)
}

func TestReplyCount_NegativeResetsToZero(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRepository(t)
	act := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), Source: types.SourceUser, Action: types.ActionCreated})
	reply, err := store.AddReply(ctx, types.Reply{ActivityID: act.ID, CreatedBy: uuid.New(), Text: "hello"})
	require.NoError(t, err)

	_, err = store.db.NewUpdate().Model((*Activity)(nil)).Set("reply_count = -3").Where("id = ?", act.ID).Exec(ctx)
	require.NoError(t, err)

	_, err = store.DeleteReply(ctx, act.ID, reply.ID)
	require.NoError(t, err)

	loaded, err := store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Zero(t, loaded.ReplyCount)
}

func TestReplyTo_MustBelongToSameActivity(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRepository(t)
	first := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), Source: types.SourceUser, Action: types.ActionCreated})
	second := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), Source: types.SourceUser, Action: types.ActionCreated})

	root, err := store.AddReply(ctx, types.Reply{ActivityID: first.ID, CreatedBy: uuid.New(), Text: "root"})
	require.NoError(t, err)

	_, err = store.AddReply(ctx, types.Reply{ActivityID: second.ID, CreatedBy: uuid.New(), Text: "stray", ReplyToID: root.ID})
	require.ErrorIs(t, err, types.ErrReplyToMismatch)

	nested, err := store.AddReply(ctx, types.Reply{ActivityID: first.ID, CreatedBy: uuid.New(), Text: "nested", ReplyToID: root.ID})
	require.NoError(t, err)
	require.Equal(t, root.ID, nested.ReplyToID)

	_, err = store.DeleteReply(ctx, first.ID, root.ID)
	require.NoError(t, err)

	reloaded, err := store.GetReply(ctx, first.ID, nested.ID)
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, reloaded.ReplyToID)

	_, err = store.GetReply(ctx, second.ID, nested.ID)
	require.ErrorIs(t, err, types.ErrReplyNotFound)

	_, err = store.AddReply(ctx, types.Reply{ActivityID: uuid.New(), CreatedBy: uuid.New(), Text: "orphan"})
	require.ErrorIs(t, err, types.ErrActivityNotFound)
}

func TestShareCount_FollowsSharedActivities(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRepository(t)
	insertPost(t, store.db, "1", 0)
	post := types.NewSubjectRef("post", "1")

	first := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), About: post, Source: types.SourceUser, Action: types.ActionShared})
	second := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), About: post, Source: types.SourceUser, Action: types.ActionShared})
	mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), About: post, Source: types.SourceUser, Action: types.ActionCommented})
	require.Equal(t, 2, postShareCount(t, store.db, "1"))

	_, err := store.DeleteActivity(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, postShareCount(t, store.db, "1"))

	_, err = store.db.ExecContext(ctx, `UPDATE posts SET share_count = 0 WHERE id = ?`, "1")
	require.NoError(t, err)

	before := testutil.ToFloat64(counterClamps.WithLabelValues(counterShareCount))
	_, err = store.DeleteActivity(ctx, second.ID)
	require.NoError(t, err)
	require.Zero(t, postShareCount(t, store.db, "1"))
	require.Equal(t, before+1, testutil.ToFloat64(counterClamps.WithLabelValues(counterShareCount)))
}

func TestShareCount_IgnoresKindsWithoutCounter(t *testing.T) {
	store, _ := newTestRepository(t)
	photo := types.NewSubjectRef("photo", "9")
	act := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), About: photo, Source: types.SourceUser, Action: types.ActionShared})

	_, err := store.DeleteActivity(context.Background(), act.ID)
	require.NoError(t, err)
}
