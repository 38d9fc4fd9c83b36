package extension

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds the extensions known to a host, keyed by descriptor id.
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]Extension
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extensions: make(map[string]Extension)}
}

// Register adds ext after checking its descriptor and API version. An id can
// only be registered once.
func (r *Registry) Register(ext Extension) error {
	if ext == nil {
		return errors.New("extension: register nil extension")
	}
	desc := ext.Descriptor()
	if err := desc.Validate(); err != nil {
		return err
	}
	if err := CheckAPIVersion(desc.ID, desc.APIVersion); err != nil {
		return err
	}

	id := strings.TrimSpace(desc.ID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.extensions[id]; exists {
		return fmt.Errorf("extension: duplicate extension %q", id)
	}
	r.extensions[id] = ext
	return nil
}

// Get returns the extension registered under id. The error wraps ErrNotFound
// when there is none.
func (r *Registry) Get(id string) (Extension, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.extensions[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return ext, nil
}

// List returns the registered descriptors sorted by id.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.extensions))
	for _, ext := range r.extensions {
		out = append(out, ext.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
