package helper

import (
	"context"
	"fmt"

	"github.com/vk/stencil/internal/argdef"
	"github.com/vk/stencil/internal/ctxlog"
	"github.com/vk/stencil/internal/render"
	"github.com/zclconf/go-cty/cty"
)

// Invocation is the transient state of one tag invocation: the handler
// instance, its bound argument values, the rendering context, and one of two
// ways to render children. It exists for the duration of a single render of
// a single node.
type Invocation struct {
	Helper    Helper
	Arguments map[string]cty.Value
	Context   *render.Context

	defs     *argdef.Definitions
	node     *Node
	children render.RenderFunc
}

// Node returns the tag node being rendered, or nil on the compiled path
// where no tree exists anymore.
func (inv *Invocation) Node() *Node {
	return inv.node
}

// RenderChildren renders the invocation's children. On the compiled path it
// invokes the precompiled continuation; interpreted, it walks the node's
// child list. Handler code cannot tell the difference, which is the point.
func (inv *Invocation) RenderChildren(ctx context.Context) (cty.Value, error) {
	if inv.children != nil {
		return inv.children(ctx, inv.Context)
	}
	if inv.node == nil {
		return cty.StringVal(""), nil
	}
	return render.EvaluateSequence(ctx, inv.Context, inv.node.Children)
}

// Bind evaluates a node's argument expressions into concrete values, applies
// declared defaults, and enforces required arguments. Binding an argument
// the handler never declared fails immediately.
func Bind(ctx context.Context, h Helper, n *Node, rc *render.Context) (*Invocation, error) {
	defs, err := rc.Definitions.Resolve(kindOf(h), h.DeclareArguments)
	if err != nil {
		return nil, err
	}

	args := make(map[string]cty.Value, len(n.Arguments))
	for name, argNode := range n.Arguments {
		if !defs.Has(name) {
			return nil, fmt.Errorf("argument %q is not declared by handler %s", name, kindOf(h))
		}
		v, err := argNode.Evaluate(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("evaluating argument %q: %w", name, err)
		}
		args[name] = v
	}
	if err := finishBinding(defs, args); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Bound tag arguments.", "kind", kindOf(h).String(), "arguments", len(args))
	return &Invocation{Helper: h, Arguments: args, Context: rc, defs: defs, node: n}, nil
}

// finishBinding fills unbound arguments from defaults and rejects missing
// required ones. Shared verbatim by both invocation paths.
func finishBinding(defs *argdef.Definitions, args map[string]cty.Value) error {
	for _, def := range defs.All() {
		if _, ok := args[def.Name]; ok {
			continue
		}
		if def.HasDefault {
			args[def.Name] = def.Default
			continue
		}
		if def.Required {
			return &argdef.MissingRequiredArgumentError{Name: def.Name}
		}
	}
	return nil
}

// Invoke validates the bound arguments, runs the handler's initialize hook,
// and renders. Both execution modes end up here, so their observable
// behavior cannot drift apart.
func Invoke(ctx context.Context, inv *Invocation) (cty.Value, error) {
	if err := argdef.Validate(inv.defs, inv.Arguments); err != nil {
		return cty.NilVal, err
	}
	if init, ok := inv.Helper.(Initializer); ok {
		init.Initialize(inv)
	}
	return inv.Helper.Render(ctx, inv)
}

// RenderStatic is the compiled-path entry point. Generated code calls it
// with pre-evaluated argument values and a children continuation instead of
// a node tree; defaults, required checks, validation, and rendering are the
// same code the interpreted path runs.
func RenderStatic(ctx context.Context, h Helper, arguments map[string]cty.Value, renderChildren render.RenderFunc, rc *render.Context) (cty.Value, error) {
	defs, err := rc.Definitions.Resolve(kindOf(h), h.DeclareArguments)
	if err != nil {
		return cty.NilVal, err
	}

	args := make(map[string]cty.Value, len(arguments))
	for name, v := range arguments {
		if !defs.Has(name) {
			return cty.NilVal, fmt.Errorf("argument %q is not declared by handler %s", name, kindOf(h))
		}
		args[name] = v
	}
	if err := finishBinding(defs, args); err != nil {
		return cty.NilVal, err
	}

	inv := &Invocation{Helper: h, Arguments: args, Context: rc, defs: defs, children: renderChildren}
	return Invoke(ctx, inv)
}
