// Package slots implements the secondary keyed store tag handlers use to
// signal each other across the tree without touching the user-visible
// variable scope. Entries are namespaced by the owning handler kind, so
// unrelated handlers can never collide on a slot name.
package slots

import (
	"reflect"
	"sync"
)

// Registry holds slot values for one render pass. It is reset between
// independent top-level renders. Access is guarded so that Take stays a
// single atomic read-and-clear even if an embedder ever shares a pass
// across goroutines.
type Registry struct {
	mu      sync.Mutex
	entries map[reflect.Type]map[string]any
}

// New creates an empty slot registry.
func New() *Registry {
	return &Registry{entries: make(map[reflect.Type]map[string]any)}
}

// Set stores a value in the owner's slot, replacing any previous value.
func (r *Registry) Set(owner reflect.Type, slot string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.entries[owner]
	if !ok {
		group = make(map[string]any)
		r.entries[owner] = group
	}
	group[slot] = v
}

// Get returns the value in the owner's slot without consuming it.
func (r *Registry) Get(owner reflect.Type, slot string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[owner][slot]
	return v, ok
}

// Exists reports whether the owner's slot holds a value.
func (r *Registry) Exists(owner reflect.Type, slot string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[owner][slot]
	return ok
}

// Take reads and clears the owner's slot in one step. This is the one-shot
// gate primitive: two competing takers can never both observe the value.
func (r *Registry) Take(owner reflect.Type, slot string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[owner][slot]
	if ok {
		delete(r.entries[owner], slot)
	}
	return v, ok
}

// Remove discards the owner's slot value, if any.
func (r *Registry) Remove(owner reflect.Type, slot string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries[owner], slot)
}

// Reset clears every entry, returning the registry to its initial state for
// the next top-level render.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[reflect.Type]map[string]any)
}
