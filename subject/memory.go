package subject

import (
	"context"
	"sync"

	"github.com/goliatone/go-activities/pkg/types"
)

// Entity is a plain subject carrying every optional capability. Empty fields
// behave as if the capability were absent. Hosts use it for lightweight kinds
// (and tests use it for fixtures).
type Entity struct {
	Ref            types.SubjectRef
	Name           string
	Href           string
	ActivitiesHref string
	Shares         int
	ShareTerm      string
}

// SubjectRef implements types.Subject.
func (e Entity) SubjectRef() types.SubjectRef { return e.Ref }

// DisplayName implements types.Displayable.
func (e Entity) DisplayName() string { return e.Name }

// URL implements types.URLProvider.
func (e Entity) URL() string { return e.Href }

// ActivitiesURL implements types.ActivitiesURLProvider.
func (e Entity) ActivitiesURL() string { return e.ActivitiesHref }

// ShareCount implements types.ShareCountProvider.
func (e Entity) ShareCount() int { return e.Shares }

// SharedActionText implements types.ShareTermProvider.
func (e Entity) SharedActionText() string { return e.ShareTerm }

// MemoryLoader serves subjects from an in-process map.
type MemoryLoader struct {
	mu       sync.RWMutex
	entities map[string]types.Subject
	calls    int
}

// NewMemoryLoader seeds the loader with subjects keyed by their reference id.
func NewMemoryLoader(subjects ...types.Subject) *MemoryLoader {
	l := &MemoryLoader{entities: make(map[string]types.Subject, len(subjects))}
	for _, s := range subjects {
		l.Put(s)
	}
	return l
}

// Put adds or replaces a subject.
func (l *MemoryLoader) Put(subject types.Subject) {
	if subject == nil {
		return
	}
	l.mu.Lock()
	l.entities[subject.SubjectRef().ID] = subject
	l.mu.Unlock()
}

// Load implements Loader.
func (l *MemoryLoader) Load(_ context.Context, ids []string) (map[string]types.Subject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	out := make(map[string]types.Subject, len(ids))
	for _, id := range ids {
		if subject, ok := l.entities[id]; ok {
			out[id] = subject
		}
	}
	return out, nil
}

// Calls returns how many batch loads were served.
func (l *MemoryLoader) Calls() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.calls
}
