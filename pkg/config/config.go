// Package config loads go-activities settings with go-config and builds the
// glog logger used by host binaries.
package config

import (
	"context"
	"time"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/command"
	"github.com/goliatone/go-activities/query"
	"github.com/goliatone/go-activities/service"
	gconfig "github.com/goliatone/go-config/config"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/microcosm-cc/bluemonday"
)

// Config holds the runtime settings of the activity service.
type Config struct {
	Feed        FeedConfig        `json:"feed"`
	Replies     RepliesConfig     `json:"replies"`
	Features    FeaturesConfig    `json:"features"`
	Render      RenderConfig      `json:"render"`
	Log         LogConfig         `json:"log"`
	Persistence PersistenceConfig `json:"persistence"`
}

// FeedConfig holds the library level paging defaults.
type FeedConfig struct {
	Page        int `json:"page" env:"ACTIVITIES_FEED_PAGE" default:"1"`
	PageSize    int `json:"page_size" env:"ACTIVITIES_FEED_PAGE_SIZE" default:"15"`
	MaxPageSize int `json:"max_page_size" env:"ACTIVITIES_FEED_MAX_PAGE_SIZE" default:"100"`
}

// RepliesConfig bounds reply text.
type RepliesConfig struct {
	MaxLength int `json:"max_length" env:"ACTIVITIES_REPLY_MAX_LENGTH" default:"500"`
}

// FeaturesConfig switches optional operations on or off.
type FeaturesConfig struct {
	Replies bool `json:"replies" env:"ACTIVITIES_FEATURE_REPLIES" default:"true"`
	Sharing bool `json:"sharing" env:"ACTIVITIES_FEATURE_SHARING" default:"true"`
}

// RenderConfig controls activity HTML output. Explicit text is emitted as
// stored unless SanitizeText is set.
type RenderConfig struct {
	SanitizeText bool `json:"sanitize_text" env:"ACTIVITIES_RENDER_SANITIZE_TEXT" default:"false"`
}

// LogConfig drives NewLogger.
type LogConfig struct {
	Name  string `json:"name" default:"activities"`
	Debug bool   `json:"debug" env:"ACTIVITIES_LOG_DEBUG" default:"false"`
}

// PersistenceConfig implements persistence.Config.
type PersistenceConfig struct {
	Debug          bool          `json:"debug" default:"false"`
	Driver         string        `json:"driver" default:"sqlite"`
	Server         string        `json:"server" env:"DB_SERVER" default:"file::memory:?cache=shared"`
	PingTimeout    time.Duration `json:"ping_timeout" default:"5s"`
	OtelIdentifier string        `json:"otel_identifier" default:"go-activities"`
}

func (c PersistenceConfig) GetDebug() bool                { return c.Debug }
func (c PersistenceConfig) GetDriver() string             { return c.Driver }
func (c PersistenceConfig) GetServer() string             { return c.Server }
func (c PersistenceConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c PersistenceConfig) GetOtelIdentifier() string     { return c.OtelIdentifier }

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		Feed: FeedConfig{
			Page:        activity.DefaultPage,
			PageSize:    activity.DefaultPageSize,
			MaxPageSize: activity.MaxPageSize,
		},
		Replies:  RepliesConfig{MaxLength: command.DefaultMaxReplyLength},
		Features: FeaturesConfig{Replies: true, Sharing: true},
		Log:      LogConfig{Name: "activities"},
		Persistence: PersistenceConfig{
			Driver:         "sqlite",
			Server:         "file::memory:?cache=shared",
			PingTimeout:    5 * time.Second,
			OtelIdentifier: "go-activities",
		},
	}
}

// Load resolves the configuration on top of cfg (Defaults when nil) with
// go-config.
func Load(ctx context.Context, cfg *Config, lgr glog.Logger) (*gconfig.Container[*Config], error) {
	if cfg == nil {
		cfg = Defaults()
	}
	container := gconfig.New(cfg)
	if lgr != nil {
		container = container.WithLogger(lgr)
	}
	if err := container.Load(ctx); err != nil {
		return nil, err
	}
	return container, nil
}

// GetPersistence returns persistence config.
func (c *Config) GetPersistence() persistence.Config {
	return c.Persistence
}

// Paging maps the feed settings onto the query defaults.
func (c *Config) Paging() query.PagingDefaults {
	return query.PagingDefaults{
		Page:        c.Feed.Page,
		PageSize:    c.Feed.PageSize,
		MaxPageSize: c.Feed.MaxPageSize,
	}
}

// Apply copies the settings into a service configuration.
func (c *Config) Apply(cfg service.Config) service.Config {
	cfg.Paging = c.Paging()
	cfg.MaxReplyLength = c.Replies.MaxLength
	if cfg.FeatureGate == nil {
		cfg.FeatureGate = c.Features.Gate()
	}
	if c.Render.SanitizeText {
		cfg.RendererOptions = append(cfg.RendererOptions, activity.WithPolicy(bluemonday.UGCPolicy()))
	}
	return cfg
}

// Validate implements config.Validable.
func (c *Config) Validate() error {
	switch {
	case c.Feed.Page < 1:
		return invalid("feed.page must be at least 1")
	case c.Feed.PageSize < 1:
		return invalid("feed.page_size must be at least 1")
	case c.Feed.MaxPageSize < c.Feed.PageSize:
		return invalid("feed.max_page_size must not be below feed.page_size")
	case c.Replies.MaxLength < 1:
		return invalid("replies.max_length must be at least 1")
	}
	return nil
}

func invalid(msg string) error {
	return goerrors.New("go-activities: "+msg, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("CONFIG_INVALID")
}
