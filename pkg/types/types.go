package types

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScopeFilter carries tenant/org scoping fields used by commands/queries.
type ScopeFilter struct {
	TenantID uuid.UUID
	OrgID    uuid.UUID
	Labels   map[string]uuid.UUID
}

// Clone returns a copy of the scope filter with labels detached from the
// original map reference so callers can mutate safely.
func (s ScopeFilter) Clone() ScopeFilter {
	clone := ScopeFilter{
		TenantID: s.TenantID,
		OrgID:    s.OrgID,
	}
	if len(s.Labels) > 0 {
		clone.Labels = make(map[string]uuid.UUID, len(s.Labels))
		for k, v := range s.Labels {
			clone.Labels[k] = v
		}
	}
	return clone
}

// Label returns the identifier stored under the key (case insensitive).
func (s ScopeFilter) Label(key string) uuid.UUID {
	if len(s.Labels) == 0 {
		return uuid.Nil
	}
	return s.Labels[strings.ToLower(strings.TrimSpace(key))]
}

// ActorRef identifies the user performing a command or viewing a feed. A zero
// ID represents an anonymous viewer.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// IsAnonymous reports whether the reference carries no user identity.
func (a ActorRef) IsAnonymous() bool {
	return a.ID == uuid.Nil
}

// Subject returns the subject reference used to match the actor against
// audience entries.
func (a ActorRef) Subject() SubjectRef {
	if a.IsAnonymous() {
		return SubjectRef{}
	}
	return UserSubject(a.ID)
}

// Anonymous returns the actor reference used for unauthenticated viewers.
func Anonymous() ActorRef {
	return ActorRef{}
}

// Paging is the 1-based page request accepted by feed queries.
type Paging struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page.
func (p Paging) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

// ActivityEvent is emitted after an activity is created or deleted.
type ActivityEvent struct {
	Activity   Activity
	ActorID    uuid.UUID
	Operation  string
	OccurredAt time.Time
}

// ReplyEvent is emitted after a reply is added or removed.
type ReplyEvent struct {
	Reply      Reply
	ActorID    uuid.UUID
	Operation  string
	OccurredAt time.Time
}

const (
	EventOperationCreated = "created"
	EventOperationDeleted = "deleted"
)

// Hooks groups optional callbacks invoked after a mutation commits.
type Hooks struct {
	AfterActivityCreate func(context.Context, ActivityEvent)
	AfterActivityDelete func(context.Context, ActivityEvent)
	AfterReplyCreate    func(context.Context, ReplyEvent)
	AfterReplyDelete    func(context.Context, ReplyEvent)
}
