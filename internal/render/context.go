// Package render defines the rendering context shared by one render pass and
// the node contract both execution modes implement: a direct tree-walk
// evaluator and a compiled-closure evaluator, unified behind a single
// Evaluate capability so callers never branch on mode.
package render

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/stencil/internal/argdef"
	"github.com/vk/stencil/internal/scope"
	"github.com/vk/stencil/internal/slots"
	"github.com/zclconf/go-cty/cty"
)

// Context aggregates the services available during one render pass: the
// user-visible variable scope, the handler-to-handler slot registry, and the
// process-shared argument definition cache. One pass owns one Context;
// Definitions may be shared across passes.
type Context struct {
	Variables   *scope.Provider
	Slots       *slots.Registry
	Definitions *argdef.Cache
}

// NewContext creates a context with fresh per-pass state and its own
// definition cache. Embedders running many passes share a cache via
// NewContextWithCache.
func NewContext() *Context {
	return NewContextWithCache(argdef.NewCache())
}

// NewContextWithCache creates a per-pass context around a shared cache.
func NewContextWithCache(cache *argdef.Cache) *Context {
	return &Context{
		Variables:   scope.New(),
		Slots:       slots.New(),
		Definitions: cache,
	}
}

// EvalContext projects the variable scope into an HCL evaluation context for
// expression nodes. The snapshot is per call: expressions see the scope as it
// stands when they are evaluated.
func (c *Context) EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{Variables: c.Variables.All()}
}

// RenderFunc is a deferred rendering step: a continuation bound to its child
// nodes and context at compile time, invoked at most once per render of the
// owning node. The compiled path hands these to handlers in place of a
// walkable node tree.
type RenderFunc func(ctx context.Context, rc *Context) (cty.Value, error)
