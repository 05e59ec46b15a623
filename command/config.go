package command

import (
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/scope"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// DefaultMaxReplyLength bounds reply text, counted in characters.
const DefaultMaxReplyLength = 500

// Config carries the dependencies shared by the activity command handlers.
type Config struct {
	Repository     types.ActivityRepository
	Guard          scope.Guard
	FeatureGate    featuregate.FeatureGate
	Hooks          types.Hooks
	Clock          types.Clock
	Logger         types.Logger
	MaxReplyLength int
}

type deps struct {
	repo    types.ActivityRepository
	guard   scope.Guard
	gate    featuregate.FeatureGate
	hooks   types.Hooks
	clock   types.Clock
	logger  types.Logger
	maxText int
}

func newDeps(cfg Config) deps {
	maxText := cfg.MaxReplyLength
	if maxText <= 0 {
		maxText = DefaultMaxReplyLength
	}
	return deps{
		repo:    cfg.Repository,
		guard:   safeScopeGuard(cfg.Guard),
		gate:    cfg.FeatureGate,
		hooks:   cfg.Hooks,
		clock:   safeClock(cfg.Clock),
		logger:  safeLogger(cfg.Logger),
		maxText: maxText,
	}
}

func (d deps) ready() error {
	if d.repo == nil {
		return ErrRepositoryRequired
	}
	return nil
}
