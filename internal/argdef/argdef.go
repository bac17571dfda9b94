// Package argdef holds the declared-argument contract between tag handlers
// and the rendering engine: immutable per-argument definitions, the ordered
// per-handler collection they live in, a process-wide resolution cache, and
// the runtime validation of bound values against declared types.
package argdef

import "github.com/zclconf/go-cty/cty"

// Definition describes one declared argument of a tag handler. It is built
// once when the handler kind's arguments are first resolved and never
// mutated afterwards.
type Definition struct {
	// Name is the argument name as written in templates.
	Name string

	// Type is the declared value type the bound value must satisfy.
	Type DeclaredType

	// Description is an optional human-readable summary, surfaced by tooling.
	Description string

	// Required marks arguments that must be bound explicitly. A required
	// argument never carries a default.
	Required bool

	// Default is the value used when the caller does not bind one. Only
	// meaningful when HasDefault is true; cty.NilVal is a representable
	// default, so presence needs its own flag.
	Default    cty.Value
	HasDefault bool
}

// Definitions is the ordered set of argument definitions for one handler
// kind. Names are unique; iteration order is declaration order.
type Definitions struct {
	order  []string
	byName map[string]Definition
}

// NewDefinitions creates an empty definition set.
func NewDefinitions() *Definitions {
	return &Definitions{byName: make(map[string]Definition)}
}

// Declare adds a new argument definition. Declaring a name twice for the same
// handler kind is a template-library authoring error.
func (d *Definitions) Declare(def Definition) error {
	if _, exists := d.byName[def.Name]; exists {
		return &DuplicateArgumentError{Name: def.Name}
	}
	d.order = append(d.order, def.Name)
	d.byName[def.Name] = def
	return nil
}

// Override replaces an existing definition in place, keeping its position in
// declaration order. Subclassed handlers use this to tighten or relax an
// inherited argument.
func (d *Definitions) Override(def Definition) error {
	if _, exists := d.byName[def.Name]; !exists {
		return &UndeclaredArgumentError{Name: def.Name}
	}
	d.byName[def.Name] = def
	return nil
}

// Get returns the definition for name, if declared.
func (d *Definitions) Get(name string) (Definition, bool) {
	def, ok := d.byName[name]
	return def, ok
}

// Has reports whether name is declared.
func (d *Definitions) Has(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// All returns the definitions in declaration order.
func (d *Definitions) All() []Definition {
	out := make([]Definition, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.byName[name])
	}
	return out
}

// Len returns the number of declared arguments.
func (d *Definitions) Len() int {
	return len(d.order)
}
