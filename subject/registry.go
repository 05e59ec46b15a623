package subject

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-activities/pkg/types"
)

// Loader batch-loads the entities of one kind. Missing ids are simply absent
// from the returned map.
type Loader interface {
	Load(ctx context.Context, ids []string) (map[string]types.Subject, error)
}

// LoaderFunc adapts bare functions to Loader.
type LoaderFunc func(ctx context.Context, ids []string) (map[string]types.Subject, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, ids []string) (map[string]types.Subject, error) {
	return f(ctx, ids)
}

// Kind describes one referencable entity type.
type Kind struct {
	// Name is the type tag stored on references.
	Name string
	// Label is the display noun used by the text templates ("photo").
	Label        string
	Loader       Loader
	ShareCounter ShareCounter
	// PageSize overrides the default feed page size for feeds about this kind.
	PageSize int
}

// Registry holds the registered kinds. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Kind
	logger types.Logger
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithLogger wires a logger for resolution diagnostics.
func WithLogger(logger types.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds a registry and registers the supplied kinds.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		kinds:  make(map[string]Kind),
		logger: types.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds or replaces a kind.
func (r *Registry) Register(kind Kind) error {
	kind.Name = strings.ToLower(strings.TrimSpace(kind.Name))
	if kind.Name == "" {
		return errors.New("subject: kind name required")
	}
	if kind.Label == "" {
		kind.Label = kind.Name
	}
	r.mu.Lock()
	r.kinds[kind.Name] = kind
	r.mu.Unlock()
	return nil
}

// MustRegister registers the kind and panics on invalid input.
func (r *Registry) MustRegister(kind Kind) *Registry {
	if err := r.Register(kind); err != nil {
		panic(err)
	}
	return r
}

// Kind returns the registered kind for the type tag.
func (r *Registry) Kind(name string) (Kind, bool) {
	if r == nil {
		return Kind{}, false
	}
	r.mu.RLock()
	kind, ok := r.kinds[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	return kind, ok
}

// Kinds lists the registered type tags.
func (r *Registry) Kinds() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Label returns the display noun of the reference kind, or the raw type tag.
func (r *Registry) Label(ref types.SubjectRef) string {
	if kind, ok := r.Kind(ref.Type); ok && kind.Label != "" {
		return kind.Label
	}
	return ref.Type
}

// ShareCounter returns the share counter of the reference kind, if any.
func (r *Registry) ShareCounter(ref types.SubjectRef) (ShareCounter, bool) {
	kind, ok := r.Kind(ref.Type)
	if !ok || kind.ShareCounter == nil {
		return nil, false
	}
	return kind.ShareCounter, true
}

// Resolve loads a single subject. Unknown kinds fail with
// types.ErrUnknownSubjectKind; unknown ids resolve to a Ref placeholder.
func (r *Registry) Resolve(ctx context.Context, ref types.SubjectRef) (types.Subject, error) {
	if ref.IsZero() {
		return nil, nil
	}
	if _, ok := r.Kind(ref.Type); !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownSubjectKind, ref.Type)
	}
	resolved, err := r.ResolveMany(ctx, []types.SubjectRef{ref})
	if err != nil {
		return nil, err
	}
	return resolved.Get(ref), nil
}

// ResolveMany loads every reference with one Load call per kind. References
// of unregistered kinds are skipped and resolve to placeholders.
func (r *Registry) ResolveMany(ctx context.Context, refs []types.SubjectRef) (Resolved, error) {
	out := make(Resolved, len(refs))
	if r == nil || len(refs) == 0 {
		return out, nil
	}
	byKind := groupByKind(refs)
	kinds := make([]string, 0, len(byKind))
	for name := range byKind {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)

	for _, name := range kinds {
		kind, ok := r.Kind(name)
		if !ok || kind.Loader == nil {
			r.logger.Debug("subject: skipping unresolvable kind", "kind", name)
			continue
		}
		loaded, err := kind.Loader.Load(ctx, byKind[name])
		if err != nil {
			return nil, fmt.Errorf("subject: load %s: %w", name, err)
		}
		for id, entity := range loaded {
			if entity == nil {
				continue
			}
			out[types.SubjectRef{Type: name, ID: id}] = entity
		}
	}
	return out, nil
}

// GroupByKind groups reference ids by type tag, dropping duplicates and zero
// references. Ids keep their first-seen order.
func GroupByKind(refs []types.SubjectRef) map[string][]string {
	return groupByKind(refs)
}

func groupByKind(refs []types.SubjectRef) map[string][]string {
	out := make(map[string][]string)
	seen := make(map[types.SubjectRef]struct{}, len(refs))
	for _, ref := range refs {
		if ref.Type == "" || ref.ID == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out[ref.Type] = append(out[ref.Type], ref.ID)
	}
	return out
}

// Resolved maps references to loaded subjects.
type Resolved map[types.SubjectRef]types.Subject

// Get returns the loaded subject or a Ref placeholder so renderers always have
// something to print. A zero reference returns nil.
func (r Resolved) Get(ref types.SubjectRef) types.Subject {
	if ref.IsZero() {
		return nil
	}
	if subject, ok := r[ref]; ok && subject != nil {
		return subject
	}
	return Ref(ref)
}

// Lookup reports whether the reference was actually loaded.
func (r Resolved) Lookup(ref types.SubjectRef) (types.Subject, bool) {
	subject, ok := r[ref]
	return subject, ok && subject != nil
}

// Ref is the placeholder subject for references that could not be loaded.
type Ref types.SubjectRef

// SubjectRef implements types.Subject.
func (r Ref) SubjectRef() types.SubjectRef {
	return types.SubjectRef(r)
}
