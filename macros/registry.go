package macros

import "sync"

// Registry resolves macro names for a translation. The overrides of the
// registry shadow the global table, which shadows the built-ins. A
// Registry is safe for concurrent use.
type Registry struct {
	global    *Table
	mu        sync.RWMutex
	overrides map[string]string
}

// New creates a registry on top of the process-wide Global table.
func New(overrides map[string]string) *Registry {
	return NewWithGlobal(Global, overrides)
}

// NewWithGlobal creates a registry on top of the given global tier. When
// global is nil, only the overrides and the built-ins are used.
func NewWithGlobal(global *Table, overrides map[string]string) *Registry {
	r := &Registry{global: global, overrides: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		r.overrides[k] = v
	}

	return r
}

// Get returns the pattern of a macro.
func (r *Registry) Get(name string) (string, error) {
	r.mu.RLock()
	p, ok := r.overrides[name]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	return lookupShared(r.global, name)
}

// Set adds or overwrites a macro scoped to this registry.
func (r *Registry) Set(name, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[name] = pattern
}

// Overrides returns a copy of the instance scoped macros.
func (r *Registry) Overrides() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := make(map[string]string, len(r.overrides))
	for k, v := range r.overrides {
		m[k] = v
	}

	return m
}
