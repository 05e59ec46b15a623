package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity is the domain record of one action by one user.
type Activity struct {
	ID         uuid.UUID
	CreatedBy  uuid.UUID
	About      SubjectRef
	Text       string
	Source     Source
	Action     Action
	Privacy    Privacy
	GroupID    uuid.UUID
	ReplyCount int
	Audience   []SubjectRef
	Replies    []Reply
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPublic reports whether anyone may read the activity.
func (a Activity) IsPublic() bool {
	return a.Privacy == PrivacyPublic
}

// IsComment reports whether the activity records a comment.
func (a Activity) IsComment() bool {
	return a.Action == ActionCommented
}

// IsActivity reports whether the activity was generated by the system.
func (a Activity) IsActivity() bool {
	return a.Source == SourceSystem
}

// HasAbout reports whether the activity concerns a subject.
func (a Activity) HasAbout() bool {
	return !a.About.IsZero()
}

// Creator returns the creator as a user subject reference.
func (a Activity) Creator() SubjectRef {
	return UserSubject(a.CreatedBy)
}

// Reply is a threaded comment attached to an activity.
type Reply struct {
	ID         uuid.UUID
	ActivityID uuid.UUID
	CreatedBy  uuid.UUID
	Text       string
	ReplyToID  uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Author returns the reply author as a user subject reference.
func (r Reply) Author() SubjectRef {
	return UserSubject(r.CreatedBy)
}

// FeedFilter is the normalized repository filter behind every feed query.
// About and Audience are alternatives: About lists activities about any of the
// subjects, Audience lists activities whose audience contains the subject.
type FeedFilter struct {
	Viewer   ActorRef
	About    []SubjectRef
	Audience SubjectRef
	Source   Source
	Action   Action
	Paging   Paging
}

// FeedPage is one page of a feed. Page is the page actually served, which may
// be lower than the requested page when the request was past the end.
type FeedPage struct {
	Items      []Activity
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	HasMore    bool
}

// SharedMap reports, per subject, whether the viewer already shared it.
type SharedMap map[SubjectRef]bool

// Has reports whether the subject was shared.
func (m SharedMap) Has(ref SubjectRef) bool {
	return m[ref]
}

// ActionStats aggregates activity counts per action.
type ActionStats struct {
	Total    int
	ByAction map[Action]int
}

// ActivityRepository is the persistence contract consumed by commands and
// queries. Every mutation maintains the denormalized counters in the same
// transaction.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity Activity) (*Activity, error)
	GetActivity(ctx context.Context, id uuid.UUID) (*Activity, error)
	DeleteActivity(ctx context.Context, id uuid.UUID) (*Activity, error)
	FindShare(ctx context.Context, creator uuid.UUID, about SubjectRef) (*Activity, error)
	ToggleShare(ctx context.Context, share Activity) (activity *Activity, unshared bool, err error)

	AddReply(ctx context.Context, reply Reply) (*Reply, error)
	GetReply(ctx context.Context, activityID, replyID uuid.UUID) (*Reply, error)
	DeleteReply(ctx context.Context, activityID, replyID uuid.UUID) (*Reply, error)

	IsAudienceMember(ctx context.Context, activityID uuid.UUID, ref SubjectRef) (bool, error)
	ListAudience(ctx context.Context, activityID uuid.UUID) ([]SubjectRef, error)

	ListFeed(ctx context.Context, filter FeedFilter) (FeedPage, error)
	SharedBy(ctx context.Context, creator uuid.UUID, refs []SubjectRef) (SharedMap, error)
	ActionStats(ctx context.Context, viewer ActorRef, about []SubjectRef) (ActionStats, error)
}
