package service

import (
	"context"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/command"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/query"
	"github.com/goliatone/go-activities/scope"
	"github.com/goliatone/go-activities/subject"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/uptrace/bun"
)

// Service is the entry point for go-activities. It wires the repository,
// subject registry, hooks and command/query facades supplied by the host
// application.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	activityRepo types.ActivityRepository
	subjects     *subject.Registry
	renderer     *activity.Renderer
	scopeGuard   scope.Guard
	initErr      error
}

// Commands exposes the service command handlers.
type Commands struct {
	CreateActivity *command.CreateActivityCommand
	DeleteActivity *command.DeleteActivityCommand
	AddReply       *command.AddReplyCommand
	DeleteReply    *command.DeleteReplyCommand
	ToggleShare    *command.ToggleShareCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	FeedAbout      *query.FeedAboutQuery
	FeedForUser    *query.FeedForUserQuery
	ActivityDetail *query.ActivityDetailQuery
	ReplyDetail    *query.ReplyDetailQuery
	SharedObjects  *query.SharedObjectsQuery
	Audience       *query.AudienceQuery
	ActionStats    *query.ActionStatsQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB, custom repositories, hooks, etc.). When
// ActivityRepository is nil the bun backed repository is built from DB.
type Config struct {
	DB                  *bun.DB
	ActivityRepository  types.ActivityRepository
	Subjects            *subject.Registry
	FeatureGate         featuregate.FeatureGate
	Hooks               types.Hooks
	Clock               types.Clock
	IDGenerator         types.IDGenerator
	Logger              types.Logger
	ScopeResolver       types.ScopeResolver
	AuthorizationPolicy types.AuthorizationPolicy
	Paging              query.PagingDefaults
	MaxReplyLength      int
	RendererOptions     []activity.RendererOption
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	s := &Service{
		cfg:          norm,
		activityRepo: norm.ActivityRepository,
		subjects:     norm.Subjects,
		scopeGuard:   scope.Ensure(scope.NewGuard(norm.ScopeResolver, types.ChainPolicies(types.RequireActorPolicy{}, norm.AuthorizationPolicy))),
	}
	if s.activityRepo == nil && norm.DB != nil {
		repo, err := activity.NewRepository(activity.RepositoryConfig{
			DB:          norm.DB,
			Subjects:    norm.Subjects,
			Clock:       norm.Clock,
			IDGen:       norm.IDGenerator,
			Logger:      norm.Logger,
			MaxPageSize: norm.Paging.MaxPageSize,
		})
		if err != nil {
			s.initErr = err
			norm.Logger.Error("go-activities: activity repository initialization failed", err)
		} else {
			s.activityRepo = repo
		}
	}
	s.renderer = activity.NewRenderer(norm.Subjects, norm.RendererOptions...)
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Subjects == nil {
		cfg.Subjects = subject.NewRegistry()
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Renderer returns the activity renderer bound to the subject registry.
func (s *Service) Renderer() *activity.Renderer {
	return s.renderer
}

// Subjects returns the subject registry used for batch resolution.
func (s *Service) Subjects() *subject.Registry {
	return s.subjects
}

// Repository returns the activity repository.
func (s *Service) Repository() types.ActivityRepository {
	return s.activityRepo
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil && s.initErr == nil && s.activityRepo != nil
}

// HealthCheck surfaces missing configuration so transports can fail fast.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.initErr != nil {
		return s.initErr
	}
	if s.activityRepo == nil {
		return types.ErrMissingActivityRepository
	}
	if s.cfg.DB != nil {
		return s.cfg.DB.PingContext(ctx)
	}
	return nil
}

// EnsureSchema creates the activity tables on the configured DB.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s == nil || s.cfg.DB == nil {
		return types.ErrServiceNotReady
	}
	return activity.EnsureSchema(ctx, s.cfg.DB)
}

// ScopeGuard exposes the guard instance used internally so transports can reuse
// the same resolver/policy combination for HTTP adapters.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

func (s *Service) buildCommands() Commands {
	cfg := command.Config{
		Repository:     s.activityRepo,
		Guard:          s.scopeGuard,
		FeatureGate:    s.cfg.FeatureGate,
		Hooks:          s.cfg.Hooks,
		Clock:          s.cfg.Clock,
		Logger:         s.cfg.Logger,
		MaxReplyLength: s.cfg.MaxReplyLength,
	}
	return Commands{
		CreateActivity: command.NewCreateActivityCommand(cfg),
		DeleteActivity: command.NewDeleteActivityCommand(cfg),
		AddReply:       command.NewAddReplyCommand(cfg),
		DeleteReply:    command.NewDeleteReplyCommand(cfg),
		ToggleShare:    command.NewToggleShareCommand(cfg),
	}
}

func (s *Service) buildQueries() Queries {
	cfg := query.Config{
		Repository: s.activityRepo,
		Subjects:   s.subjects,
		Guard:      s.scopeGuard,
		Logger:     s.cfg.Logger,
		Paging:     s.cfg.Paging,
	}
	return Queries{
		FeedAbout:      query.NewFeedAboutQuery(cfg),
		FeedForUser:    query.NewFeedForUserQuery(cfg),
		ActivityDetail: query.NewActivityDetailQuery(cfg),
		ReplyDetail:    query.NewReplyDetailQuery(cfg),
		SharedObjects:  query.NewSharedObjectsQuery(cfg),
		Audience:       query.NewAudienceQuery(cfg),
		ActionStats:    query.NewActionStatsQuery(cfg),
	}
}
