package helper

import (
	"context"

	"github.com/vk/stencil/internal/render"
	"github.com/vk/stencil/internal/scope"
	"github.com/zclconf/go-cty/cty"
)

// Node is a parsed tag invocation: a handler kind, its unevaluated argument
// nodes, and its child nodes in document order. Nodes are immutable once
// parsed and may be evaluated many times (sections are re-evaluated on every
// collaborator invocation).
type Node struct {
	Kind      *Kind
	Arguments map[string]render.Node
	Children  []render.Node
}

// NewNode builds a tag node.
func NewNode(kind *Kind, arguments map[string]render.Node, children ...render.Node) *Node {
	if arguments == nil {
		arguments = make(map[string]render.Node)
	}
	return &Node{Kind: kind, Arguments: arguments, Children: children}
}

// Evaluate runs the interpreted path: create a transient handler instance,
// bind and validate its arguments, then render.
func (n *Node) Evaluate(ctx context.Context, rc *render.Context) (cty.Value, error) {
	h := n.Kind.New()
	inv, err := Bind(ctx, h, n, rc)
	if err != nil {
		return cty.NilVal, err
	}
	return Invoke(ctx, inv)
}

// NotifyPostParse runs the handler kind's post-parse hook, if it has one.
// The parser layer calls this exactly once per node, immediately after the
// node's subtree is complete and before any rendering.
func NotifyPostParse(node *Node, vars *scope.Provider) error {
	h := node.Kind.New()
	if pp, ok := h.(PostParser); ok {
		return pp.PostParse(node, node.Arguments, vars)
	}
	return nil
}
