package migrations

import (
	"io/fs"
	"strings"
	"sync"
)

// CoreSource names the migrations shipped with go-activities.
const CoreSource = "activities"

// Source is a named migration filesystem. Hosts register their own sources for
// subject tables that carry a share counter column.
type Source struct {
	Name string
	FS   fs.FS
}

var (
	mu      sync.RWMutex
	sources []Source
)

// Register records a migration filesystem under name. Registering a name again
// replaces the earlier filesystem and keeps its position.
func Register(name string, fsys fs.FS) {
	name = strings.TrimSpace(name)
	if fsys == nil || name == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	for i := range sources {
		if sources[i].Name == name {
			sources[i].FS = fsys
			return
		}
	}
	sources = append(sources, Source{Name: name, FS: fsys})
}

// Sources returns the registered sources in registration order.
func Sources() []Source {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

// Filesystems returns the registered filesystems in registration order, ready
// for go-persistence-bun or any other runner.
func Filesystems() []fs.FS {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]fs.FS, 0, len(sources))
	for _, src := range sources {
		out = append(out, src.FS)
	}
	return out
}
