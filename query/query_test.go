package query

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fixture struct {
	store    *activity.Repository
	registry *subject.Registry
	posts    *subject.MemoryLoader
	users    *subject.MemoryLoader
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	require.NoError(t, activity.EnsureSchema(context.Background(), db))

	posts := subject.NewMemoryLoader(
		subject.Entity{Ref: types.NewSubjectRef("post", "1"), Name: "Launch notes", Href: "/posts/1"},
		subject.Entity{Ref: types.NewSubjectRef("post", "2"), Name: "Roadmap", Href: "/posts/2", ActivitiesHref: "/posts/2/feed"},
	)
	users := subject.NewMemoryLoader()
	registry := subject.NewRegistry()
	registry.MustRegister(subject.Kind{Name: "post", Label: "post", Loader: posts}).
		MustRegister(subject.Kind{Name: types.SubjectTypeUser, Label: "user", Loader: users})

	store, err := activity.NewRepository(activity.RepositoryConfig{
		DB:       db,
		Subjects: registry,
		Clock:    &tickingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	return fixture{store: store, registry: registry, posts: posts, users: users}
}

func (f fixture) config() Config {
	return Config{Repository: f.store, Subjects: f.registry}
}

func (f fixture) addUser(name string) types.ActorRef {
	actor := types.ActorRef{ID: uuid.New()}
	f.users.Put(subject.Entity{Ref: actor.Subject(), Name: name})
	return actor
}

func mustCreate(t *testing.T, store *activity.Repository, record types.Activity) *types.Activity {
	t.Helper()
	if record.Source == "" {
		record.Source = types.SourceUser
	}
	created, err := store.CreateActivity(context.Background(), record)
	require.NoError(t, err)
	return created
}
