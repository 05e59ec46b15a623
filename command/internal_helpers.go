package command

import (
	"context"
	"time"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/scope"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func emitActivityCreated(ctx context.Context, hooks types.Hooks, event types.ActivityEvent) {
	if hooks.AfterActivityCreate == nil {
		return
	}
	hooks.AfterActivityCreate(ctx, event)
}

func emitActivityDeleted(ctx context.Context, hooks types.Hooks, event types.ActivityEvent) {
	if hooks.AfterActivityDelete == nil {
		return
	}
	hooks.AfterActivityDelete(ctx, event)
}

func emitReplyCreated(ctx context.Context, hooks types.Hooks, event types.ReplyEvent) {
	if hooks.AfterReplyCreate == nil {
		return
	}
	hooks.AfterReplyCreate(ctx, event)
}

func emitReplyDeleted(ctx context.Context, hooks types.Hooks, event types.ReplyEvent) {
	if hooks.AfterReplyDelete == nil {
		return
	}
	hooks.AfterReplyDelete(ctx, event)
}
