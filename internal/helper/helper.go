// Package helper implements the contract between tag handlers and the
// rendering engine: argument declaration and binding, the interpreted and
// compiled invocation paths, the post-parse hook, and the section handler
// built on top of them.
package helper

import (
	"context"
	"reflect"

	"github.com/vk/stencil/internal/argdef"
	"github.com/vk/stencil/internal/render"
	"github.com/vk/stencil/internal/scope"
	"github.com/zclconf/go-cty/cty"
)

// Helper is a tag handler: it declares its arguments once per kind and
// renders one invocation at a time. Implementations are created fresh for
// every invocation and must not keep state across renders.
type Helper interface {
	// DeclareArguments declares the handler's arguments into an empty set.
	// Called once per handler kind, on first use; the result is cached for
	// the process lifetime.
	DeclareArguments(defs *argdef.Definitions) error

	// Render produces the invocation's output. The default behavior, via
	// Base, is to render the children.
	Render(ctx context.Context, inv *Invocation) (cty.Value, error)
}

// Initializer is implemented by handlers that need pre-render setup after
// their arguments are bound and validated.
type Initializer interface {
	Initialize(inv *Invocation)
}

// PostParser is implemented by handlers that react to their node having been
// fully parsed, before any rendering occurs. The hook runs exactly once per
// node and may register state for later collaborators to find.
type PostParser interface {
	PostParse(node *Node, arguments map[string]render.Node, vars *scope.Provider) error
}

// EscapeConfigurer lets a handler opt out of output post-processing. The
// escaping interceptor layer reads these flags after rendering; handlers
// that do not implement the interface get both enabled.
type EscapeConfigurer interface {
	EscapingFlags() (children, output bool)
}

// EscapingFlags returns the handler kind's escaping configuration,
// defaulting to escaping both children and output.
func EscapingFlags(h Helper) (children, output bool) {
	if ec, ok := h.(EscapeConfigurer); ok {
		return ec.EscapingFlags()
	}
	return true, true
}

// Base provides the default handler behavior: no declared arguments, and
// rendering that evaluates the children in document order. Handlers embed it
// and override what they need.
type Base struct{}

// DeclareArguments declares nothing.
func (Base) DeclareArguments(*argdef.Definitions) error { return nil }

// Render falls back to rendering the invocation's children.
func (Base) Render(ctx context.Context, inv *Invocation) (cty.Value, error) {
	return inv.RenderChildren(ctx)
}

// kindOf is the identity of a handler kind: the concrete struct type behind
// the instance. It keys the definition cache and the slot registry.
func kindOf(h Helper) reflect.Type {
	t := reflect.TypeOf(h)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
