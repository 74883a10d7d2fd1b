package taxonomy

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// DefaultVersion is the taxonomy used when none is configured.
const DefaultVersion = "v1"

//go:embed versions/*.yaml
var builtin embed.FS

// Registry holds every known taxonomy version.
type Registry struct {
	mu       sync.RWMutex
	versions map[string]*Taxonomy
}

// NewRegistry returns a registry preloaded with the built-in versions.
func NewRegistry() (*Registry, error) {
	r := &Registry{versions: make(map[string]*Taxonomy)}
	if err := r.loadFS(builtin, "versions"); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDir adds every *.yaml / *.yml version found in dir.
func (r *Registry) LoadDir(dir string) error {
	return r.loadFS(os.DirFS(dir), ".")
}

func (r *Registry) loadFS(fsys fs.FS, dir string) error {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(dir, pattern)))
		if err != nil {
			return fmt.Errorf("glob taxonomy files: %w", err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)

	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read taxonomy %s: %w", name, err)
		}
		t, err := Parse(data)
		if err != nil {
			return fmt.Errorf("parse taxonomy %s: %w", name, err)
		}
		if err := r.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// Add registers a parsed version. Versions cannot be replaced.
func (r *Registry) Add(t *Taxonomy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.versions[t.Version]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateVersion, t.Version)
	}
	r.versions[t.Version] = t
	return nil
}

// Get returns the named version.
func (r *Registry) Get(version string) (*Taxonomy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	return t, nil
}

// Versions lists the registered versions in sorted order.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
