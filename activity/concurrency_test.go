package activity

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"golang.org/x/sync/errgroup"
)

func TestReplyCount_ConcurrentAddAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRepositoryOn(t, newFileActivityDB(t))
	act := mustCreate(t, store, types.Activity{CreatedBy: uuid.New(), Source: types.SourceUser, Action: types.ActionCreated})

	var (
		mu  sync.Mutex
		ids []uuid.UUID
	)
	var g errgroup.Group
	for i := 0; i < 40; i++ {
		g.Go(func() error {
			reply, err := store.AddReply(ctx, types.Reply{ActivityID: act.ID, CreatedBy: uuid.New(), Text: "hi"})
			if err != nil {
				return err
			}
			mu.Lock()
			ids = append(ids, reply.ID)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	loaded, err := store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Equal(t, 40, loaded.ReplyCount)
	require.Len(t, loaded.Replies, 40)

	// every id is deleted twice at once; only one delete may count
	var deleted int
	for _, id := range ids[:15] {
		for j := 0; j < 2; j++ {
			g.Go(func() error {
				reply, err := store.DeleteReply(ctx, act.ID, id)
				if err != nil {
					return err
				}
				if reply != nil {
					mu.Lock()
					deleted++
					mu.Unlock()
				}
				return nil
			})
		}
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 15, deleted)

	loaded, err = store.GetActivity(ctx, act.ID)
	require.NoError(t, err)
	require.Equal(t, 25, loaded.ReplyCount)
	require.Len(t, loaded.Replies, loaded.ReplyCount)
}

func TestShareCount_ConcurrentShareAndUnshare(t *testing.T) {
	ctx := context.Background()
	db := newFileActivityDB(t)
	store, _ := newRepositoryOn(t, db)
	insertPost(t, db, "1", 0)
	post := types.NewSubjectRef("post", "1")

	var (
		mu     sync.Mutex
		shares []uuid.UUID
	)
	var g errgroup.Group
	for i := 0; i < 30; i++ {
		g.Go(func() error {
			created, err := store.CreateActivity(ctx, types.Activity{CreatedBy: uuid.New(), About: post, Source: types.SourceUser, Action: types.ActionShared})
			if err != nil {
				return err
			}
			mu.Lock()
			shares = append(shares, created.ID)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 30, postShareCount(t, db, "1"))

	for _, id := range shares[:10] {
		for j := 0; j < 2; j++ {
			g.Go(func() error {
				_, err := store.DeleteActivity(ctx, id)
				if err != nil && !types.IsNotFound(err) {
					return err
				}
				return nil
			})
		}
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 20, postShareCount(t, db, "1"))
}

func TestToggleShare_ConcurrentTogglesBySameUser(t *testing.T) {
	ctx := context.Background()
	db := newFileActivityDB(t)
	store, _ := newRepositoryOn(t, db)
	insertPost(t, db, "1", 0)
	post := types.NewSubjectRef("post", "1")
	actor := uuid.New()

	var g errgroup.Group
	for i := 0; i < 9; i++ {
		g.Go(func() error {
			_, _, err := store.ToggleShare(ctx, types.Activity{CreatedBy: actor, About: post, Source: types.SourceUser})
			return err
		})
	}
	require.NoError(t, g.Wait())

	// an odd number of toggles leaves exactly one share
	count, err := db.NewSelect().
		Model((*Activity)(nil)).
		Where("created_by = ?", actor).
		Where("action = ?", string(types.ActionShared)).
		Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 1, postShareCount(t, db, "1"))
}

// newFileActivityDB opens a file-backed database with several connections so
// writers contend the way they do in a server.
func newFileActivityDB(t *testing.T) *bun.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.db")
	sqldb, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(4)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}
