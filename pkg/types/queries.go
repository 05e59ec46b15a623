package types

import (
	"github.com/google/uuid"
)

// FeedParams carries the raw query-string values of a feed request. Invalid
// values never fail a request; they fall back to defaults or to "no filter".
type FeedParams struct {
	Page     string
	PageSize string
	Source   string
	Action   string
}

// FeedAboutFilter requests the feed of activities about one or more subjects.
type FeedAboutFilter struct {
	Viewer ActorRef
	Scope  ScopeFilter
	About  []SubjectRef
	Params FeedParams
}

// Type implements gocommand.Message for query inputs.
func (FeedAboutFilter) Type() string {
	return "query.activity.feed_about"
}

// Validate implements gocommand.Message.
func (filter FeedAboutFilter) Validate() error {
	if len(filter.About) == 0 {
		return ErrSubjectRequired
	}
	for _, ref := range filter.About {
		if ref.Type == "" || ref.ID == "" {
			return ErrInvalidSubject
		}
	}
	return nil
}

// FeedForUserFilter requests the activities whose audience includes a user.
type FeedForUserFilter struct {
	Viewer ActorRef
	Scope  ScopeFilter
	UserID uuid.UUID
	Params FeedParams
}

// Type implements gocommand.Message for query inputs.
func (FeedForUserFilter) Type() string {
	return "query.activity.feed_for_user"
}

// Validate implements gocommand.Message.
func (filter FeedForUserFilter) Validate() error {
	if filter.UserID == uuid.Nil && filter.Viewer.IsAnonymous() {
		return ErrUserIDRequired
	}
	return nil
}

// ActivityLookup resolves a single activity for a viewer.
type ActivityLookup struct {
	Viewer     ActorRef
	Scope      ScopeFilter
	ActivityID uuid.UUID
}

// Type implements gocommand.Message for query inputs.
func (ActivityLookup) Type() string {
	return "query.activity.detail"
}

// Validate implements gocommand.Message.
func (lookup ActivityLookup) Validate() error {
	if lookup.ActivityID == uuid.Nil {
		return ErrActivityIDRequired
	}
	return nil
}

// ReplyLookup resolves a single reply through its parent activity.
type ReplyLookup struct {
	Viewer     ActorRef
	Scope      ScopeFilter
	ActivityID uuid.UUID
	ReplyID    uuid.UUID
}

// Type implements gocommand.Message for query inputs.
func (ReplyLookup) Type() string {
	return "query.activity.reply"
}

// Validate implements gocommand.Message.
func (lookup ReplyLookup) Validate() error {
	if lookup.ActivityID == uuid.Nil {
		return ErrActivityIDRequired
	}
	if lookup.ReplyID == uuid.Nil {
		return ErrReplyIDRequired
	}
	return nil
}

// SharedLookup asks which of the subjects the viewer already shared.
type SharedLookup struct {
	Viewer   ActorRef
	Scope    ScopeFilter
	Subjects []SubjectRef
}

// Type implements gocommand.Message for query inputs.
func (SharedLookup) Type() string {
	return "query.activity.shared"
}

// Validate implements gocommand.Message.
func (SharedLookup) Validate() error {
	return nil
}

// ActionStatsFilter scopes the per-action aggregate of a subject feed.
type ActionStatsFilter struct {
	Viewer ActorRef
	Scope  ScopeFilter
	About  []SubjectRef
}

// Type implements gocommand.Message for query inputs.
func (ActionStatsFilter) Type() string {
	return "query.activity.stats"
}

// Validate implements gocommand.Message.
func (filter ActionStatsFilter) Validate() error {
	if len(filter.About) == 0 {
		return ErrSubjectRequired
	}
	return nil
}

// AudienceLookup resolves the audience of one activity.
type AudienceLookup struct {
	Viewer     ActorRef
	Scope      ScopeFilter
	ActivityID uuid.UUID
}

// Type implements gocommand.Message for query inputs.
func (AudienceLookup) Type() string {
	return "query.activity.audience"
}

// Validate implements gocommand.Message.
func (lookup AudienceLookup) Validate() error {
	if lookup.ActivityID == uuid.Nil {
		return ErrActivityIDRequired
	}
	return nil
}
