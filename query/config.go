package query

import (
	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/scope"
	"github.com/goliatone/go-activities/subject"
)

// Config carries the dependencies shared by the query handlers.
type Config struct {
	Repository types.ActivityRepository
	Subjects   *subject.Registry
	Guard      scope.Guard
	Logger     types.Logger
	Paging     PagingDefaults
}

type deps struct {
	repo     types.ActivityRepository
	subjects *subject.Registry
	guard    scope.Guard
	logger   types.Logger
	paging   PagingDefaults
}

func newDeps(cfg Config) deps {
	subjects := cfg.Subjects
	if subjects == nil {
		subjects = subject.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return deps{
		repo:     cfg.Repository,
		subjects: subjects,
		guard:    scope.Ensure(cfg.Guard),
		logger:   logger,
		paging:   cfg.Paging.withDefaults(),
	}
}

func (d deps) ready() error {
	if d.repo == nil {
		return types.ErrMissingActivityRepository
	}
	return nil
}

// PagingDefaults are the library level feed paging settings.
type PagingDefaults struct {
	Page        int
	PageSize    int
	MaxPageSize int
}

func (p PagingDefaults) withDefaults() PagingDefaults {
	if p.Page <= 0 {
		p.Page = activity.DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = activity.DefaultPageSize
	}
	if p.MaxPageSize <= 0 {
		p.MaxPageSize = activity.MaxPageSize
	}
	if p.PageSize > p.MaxPageSize {
		p.PageSize = p.MaxPageSize
	}
	return p
}
