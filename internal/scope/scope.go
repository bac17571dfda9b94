// Package scope implements the layered variable store a render pass reads
// its data from. Identifiers are unique per provider; nested data is reached
// through dotted paths without ever mutating the underlying source.
package scope

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// RedeclaredError reports an Add for an identifier that is already bound.
// Silent overwrites would shadow caller-supplied variables, so rebinding
// requires an explicit Remove first.
type RedeclaredError struct {
	Name string
}

func (e *RedeclaredError) Error() string {
	return fmt.Sprintf("variable %q is already bound in this scope", e.Name)
}

// Provider is the variable scope for one render pass. It is not safe for
// concurrent use; each pass owns its own instance.
type Provider struct {
	vars map[string]cty.Value
}

// New creates an empty provider.
func New() *Provider {
	return &Provider{vars: make(map[string]cty.Value)}
}

// NewFrom creates a provider seeded with a copy of the given source, so
// later Add/Remove calls never write through to the caller's map.
func NewFrom(source map[string]cty.Value) *Provider {
	p := New()
	for name, v := range source {
		p.vars[name] = v
	}
	return p
}

// Add binds an identifier. Re-adding an existing identifier fails with a
// RedeclaredError.
func (p *Provider) Add(name string, v cty.Value) error {
	if _, exists := p.vars[name]; exists {
		return &RedeclaredError{Name: name}
	}
	p.vars[name] = v
	return nil
}

// Remove unbinds an identifier. Removing an absent identifier is a no-op.
func (p *Provider) Remove(name string) {
	delete(p.vars, name)
}

// Exists reports whether the identifier is bound.
func (p *Provider) Exists(name string) bool {
	_, ok := p.vars[name]
	return ok
}

// Get returns the value bound to a flat identifier.
func (p *Provider) Get(name string) (cty.Value, bool) {
	v, ok := p.vars[name]
	return v, ok
}

// Identifiers returns all bound identifiers in sorted order.
func (p *Provider) Identifiers() []string {
	out := make([]string, 0, len(p.vars))
	for name := range p.vars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of the scope's bindings.
func (p *Provider) All() map[string]cty.Value {
	out := make(map[string]cty.Value, len(p.vars))
	for name, v := range p.vars {
		out[name] = v
	}
	return out
}
