package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-activities/command"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/service"
	"github.com/goliatone/go-activities/subject"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestService_ShareReplyAndFeed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	posts := subject.NewMemoryLoader(subject.Entity{Ref: types.NewSubjectRef("post", "1"), Name: "Launch notes", Href: "/posts/1"})
	users := subject.NewMemoryLoader()
	registry := subject.NewRegistry()
	registry.MustRegister(subject.Kind{Name: "post", Label: "post", Loader: posts, ShareCounter: subject.NewTableShareCounter("posts")}).
		MustRegister(subject.Kind{Name: types.SubjectTypeUser, Label: "user", Loader: users})

	svc := service.New(service.Config{DB: db, Subjects: registry})
	require.True(t, svc.Ready())
	require.NoError(t, svc.EnsureSchema(ctx))
	require.NoError(t, svc.HealthCheck(ctx))
	seedPosts(t, db, "1")

	ann := types.ActorRef{ID: uuid.New()}
	users.Put(subject.Entity{Ref: ann.Subject(), Name: "ann"})
	bob := types.ActorRef{ID: uuid.New()}
	users.Put(subject.Entity{Ref: bob.Subject(), Name: "bob"})

	var share command.ToggleShareResult
	require.NoError(t, svc.Commands().ToggleShare.Execute(ctx, command.ToggleShareInput{
		Actor:   ann,
		About:   types.NewSubjectRef("post", "1"),
		Privacy: types.PrivacyPublic,
		Result:  &share,
	}))
	require.False(t, share.Unshared)
	require.Equal(t, 1, postShares(t, db, "1"))

	var reply types.Reply
	require.NoError(t, svc.Commands().AddReply.Execute(ctx, command.AddReplyInput{
		Actor:      bob,
		ActivityID: share.Activity.ID,
		Text:       "congrats",
		Result:     &reply,
	}))

	view, err := svc.Queries().FeedAbout.Query(ctx, types.FeedAboutFilter{
		Viewer: types.Anonymous(),
		About:  []types.SubjectRef{types.NewSubjectRef("post", "1")},
		Params: types.FeedParams{Page: "0"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, view.Page.Page)
	require.Len(t, view.Page.Items, 1)
	item := view.Page.Items[0]
	require.Equal(t, 1, item.ReplyCount)
	require.Len(t, item.Replies, 1)
	require.Equal(t, "ann shared the post Launch notes", svc.Renderer().Text(item, view.Subjects))

	shared, err := svc.Queries().SharedObjects.Query(ctx, types.SharedLookup{
		Viewer:   ann,
		Subjects: []types.SubjectRef{types.NewSubjectRef("post", "1")},
	})
	require.NoError(t, err)
	require.True(t, shared.Has(types.NewSubjectRef("post", "1")))

	require.NoError(t, svc.Commands().ToggleShare.Execute(ctx, command.ToggleShareInput{
		Actor:  ann,
		About:  types.NewSubjectRef("post", "1"),
		Result: &share,
	}))
	require.True(t, share.Unshared)
	require.Zero(t, postShares(t, db, "1"))
}

func TestService_MultiTenantIsolation(t *testing.T) {
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()
	actorA := types.ActorRef{ID: uuid.New(), Type: "member"}
	actorB := types.ActorRef{ID: uuid.New(), Type: "member"}

	resolver := staticScopeResolver{
		scopes: map[uuid.UUID]types.ScopeFilter{
			actorA.ID: {TenantID: tenantA},
			actorB.ID: {TenantID: tenantB},
		},
	}
	policy := tenantPolicy{
		allowed: map[uuid.UUID]uuid.UUID{
			actorA.ID: tenantA,
			actorB.ID: tenantB,
		},
	}

	db := newTestDB(t)
	svc := service.New(service.Config{
		DB:                  db,
		ScopeResolver:       resolver,
		AuthorizationPolicy: policy,
	})
	require.NoError(t, svc.EnsureSchema(ctx))

	scopeTenantA := types.ScopeFilter{TenantID: tenantA}

	var created types.Activity
	err := svc.Commands().CreateActivity.Execute(ctx, command.CreateActivityInput{
		Actor:   actorA,
		Scope:   scopeTenantA,
		Action:  types.ActionCreated,
		Privacy: types.PrivacyPublic,
		Result:  &created,
	})
	require.NoError(t, err)

	// Tenant B actor attempting to target tenant A scope is rejected.
	err = svc.Commands().AddReply.Execute(ctx, command.AddReplyInput{
		Actor:      actorB,
		Scope:      scopeTenantA,
		ActivityID: created.ID,
		Text:       "hello",
	})
	require.ErrorIs(t, err, types.ErrUnauthorizedScope)

	_, err = svc.Queries().ActivityDetail.Query(ctx, types.ActivityLookup{
		Viewer:     actorB,
		Scope:      scopeTenantA,
		ActivityID: created.ID,
	})
	require.ErrorIs(t, err, types.ErrUnauthorizedScope)

	// Without an explicit scope the resolver falls back to the actor tenant.
	view, err := svc.Queries().ActivityDetail.Query(ctx, types.ActivityLookup{
		Viewer:     actorB,
		ActivityID: created.ID,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, view.Activity.ID)
}

func TestService_NotReadyWithoutStorage(t *testing.T) {
	svc := service.New(service.Config{})
	require.False(t, svc.Ready())
	require.ErrorIs(t, svc.HealthCheck(context.Background()), types.ErrMissingActivityRepository)
	require.ErrorIs(t, svc.EnsureSchema(context.Background()), types.ErrServiceNotReady)

	err := svc.Commands().CreateActivity.Execute(context.Background(), command.CreateActivityInput{
		Actor:  types.ActorRef{ID: uuid.New()},
		Action: types.ActionCreated,
	})
	require.ErrorIs(t, err, types.ErrMissingActivityRepository)
	require.NotNil(t, svc.ScopeGuard())
}

type staticScopeResolver struct {
	scopes map[uuid.UUID]types.ScopeFilter
}

func (r staticScopeResolver) ResolveScope(_ context.Context, actor types.ActorRef, requested types.ScopeFilter) (types.ScopeFilter, error) {
	if requested.TenantID != uuid.Nil || requested.OrgID != uuid.Nil {
		return requested, nil
	}
	if resolved, ok := r.scopes[actor.ID]; ok {
		return resolved, nil
	}
	return requested, nil
}

type tenantPolicy struct {
	allowed map[uuid.UUID]uuid.UUID
}

func (p tenantPolicy) Authorize(_ context.Context, check types.PolicyCheck) error {
	tenant := p.allowed[check.Actor.ID]
	if tenant == uuid.Nil || check.Scope.TenantID == uuid.Nil {
		return nil
	}
	if tenant != check.Scope.TenantID {
		return types.ErrUnauthorizedScope
	}
	return nil
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func seedPosts(t *testing.T, db *bun.DB, ids ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE posts (id TEXT PRIMARY KEY, share_count INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)
	for _, id := range ids {
		_, err = db.ExecContext(ctx, `INSERT INTO posts (id, share_count) VALUES (?, 0)`, id)
		require.NoError(t, err)
	}
}

func postShares(t *testing.T, db *bun.DB, id string) int {
	t.Helper()
	var count int
	require.NoError(t, db.NewSelect().TableExpr("posts").ColumnExpr("share_count").Where("id = ?", id).Scan(context.Background(), &count))
	return count
}
