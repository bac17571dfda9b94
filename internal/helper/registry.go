package helper

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Factory creates a fresh handler instance for one invocation.
type Factory func() Helper

// Kind ties a tag name to its handler factory and kind identity. Nodes
// reference kinds, not instances; instances are transient.
type Kind struct {
	Name string
	New  Factory

	kind reflect.Type
}

// Type returns the handler kind's identity.
func (k *Kind) Type() reflect.Type {
	return k.kind
}

// Registry maps tag names to handler kinds for one engine instance. It is
// populated during startup, before any rendering, and read-only afterwards.
type Registry struct {
	kinds map[string]*Kind
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register adds a handler kind under a tag name. Registering the same name
// twice is a programmer error and panics, like any broken engine setup.
func (r *Registry) Register(name string, factory Factory) *Kind {
	if _, exists := r.kinds[name]; exists {
		panic(fmt.Sprintf("tag handler with name '%s' already registered", name))
	}
	slog.Debug("Registering tag handler.", "name", name)
	k := &Kind{Name: name, New: factory, kind: kindOf(factory())}
	r.kinds[name] = k
	return k
}

// Lookup resolves a tag name to its kind.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}
