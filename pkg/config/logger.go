package config

import (
	"github.com/goliatone/go-activities/pkg/types"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
)

// NewLogger builds the root glog logger. Rich go-errors are expanded into
// slog attributes. Debug switches to the pretty printer at trace level.
func NewLogger(cfg LogConfig) *glog.BaseLogger {
	name := cfg.Name
	if name == "" {
		name = "activities"
	}
	if cfg.Debug {
		return glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Trace),
			glog.WithName(name),
			glog.WithAddSource(false),
			glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
		)
	}
	return glog.NewLogger(
		glog.WithName(name),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
}

type leveledLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerAdapter adapts glog.Logger to types.Logger.
type LoggerAdapter struct {
	l leveledLogger
}

var _ types.Logger = (*LoggerAdapter)(nil)

// NewLoggerAdapter wraps l. A nil logger yields a no-op types.Logger.
func NewLoggerAdapter(l leveledLogger) types.Logger {
	if l == nil {
		return types.NopLogger{}
	}
	return &LoggerAdapter{l: l}
}

func (a *LoggerAdapter) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *LoggerAdapter) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *LoggerAdapter) Warn(msg string, args ...any) {
	a.l.Warn(msg, args...)
}

func (a *LoggerAdapter) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err}, args...)
	}
	a.l.Error(msg, args...)
}
