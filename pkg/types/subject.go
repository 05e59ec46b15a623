package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SubjectTypeUser is the kind tag used for user subjects (activity creators,
// reply authors and audience members).
const SubjectTypeUser = "user"

// SubjectRef is a weak (type, id) reference to any domain entity.
type SubjectRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewSubjectRef trims and builds a reference.
func NewSubjectRef(kind, id string) SubjectRef {
	return SubjectRef{
		Type: strings.ToLower(strings.TrimSpace(kind)),
		ID:   strings.TrimSpace(id),
	}
}

// UserSubject returns the reference that represents a user.
func UserSubject(id uuid.UUID) SubjectRef {
	return SubjectRef{Type: SubjectTypeUser, ID: id.String()}
}

// ParseSubjectRef parses the "type:id" form used by transports.
func ParseSubjectRef(raw string) (SubjectRef, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	ref := NewSubjectRef(kind, id)
	if !ok || ref.Type == "" || ref.ID == "" {
		return SubjectRef{}, fmt.Errorf("%w: %q", ErrInvalidSubject, raw)
	}
	return ref, nil
}

// IsZero reports whether the reference is unset.
func (r SubjectRef) IsZero() bool {
	return r.Type == "" && r.ID == ""
}

// String renders the "type:id" form.
func (r SubjectRef) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Type + ":" + r.ID
}

// Subject is a resolved entity behind a SubjectRef. Every other capability
// below is optional and discovered with a type assertion.
type Subject interface {
	SubjectRef() SubjectRef
}

// URLProvider exposes the canonical URL of a subject.
type URLProvider interface {
	URL() string
}

// ActivitiesURLProvider exposes the root URL of the subject's activity feed.
type ActivitiesURLProvider interface {
	ActivitiesURL() string
}

// Displayable exposes a human readable name.
type Displayable interface {
	DisplayName() string
}

// LinkProvider renders a ready-made HTML link for the subject.
type LinkProvider interface {
	LinkHTML() string
}

// ShareCountProvider exposes the denormalized share counter.
type ShareCountProvider interface {
	ShareCount() int
}

// ShareTermProvider overrides the wording of the shared action, for example
// "reposted".
type ShareTermProvider interface {
	SharedActionText() string
}

// ActionHTMLFormatter overrides the short action header of activities about
// the subject.
type ActionHTMLFormatter interface {
	ActivityActionHTML(activity Activity) string
}

// ActivityHTMLFormatter overrides the body HTML of activities about the
// subject. Returning ok=false falls back to the generic template.
type ActivityHTMLFormatter interface {
	ActivityHTML(activity Activity, viewer ActorRef) (html string, ok bool)
}

// DisplayName returns the subject display name, falling back to the
// reference itself.
func DisplayName(subject Subject) string {
	if subject == nil {
		return ""
	}
	if d, ok := subject.(Displayable); ok {
		if name := strings.TrimSpace(d.DisplayName()); name != "" {
			return name
		}
	}
	return subject.SubjectRef().String()
}

// SubjectURL returns the subject URL when the capability is present.
func SubjectURL(subject Subject) (string, bool) {
	if subject == nil {
		return "", false
	}
	if u, ok := subject.(URLProvider); ok {
		if url := strings.TrimSpace(u.URL()); url != "" {
			return url, true
		}
	}
	return "", false
}
