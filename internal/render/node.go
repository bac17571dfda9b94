package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/stencil/internal/ctyval"
	"github.com/zclconf/go-cty/cty"
)

// Node is anything the engine can evaluate against a rendering context:
// parsed text, an expression, a tag invocation, or a precompiled closure.
type Node interface {
	Evaluate(ctx context.Context, rc *Context) (cty.Value, error)
}

// Literal is implemented by nodes whose value is known without rendering.
// Section names must be resolvable at parse time, before any scope exists,
// so they are read through this interface rather than evaluated.
type Literal interface {
	LiteralString() (string, bool)
}

// TextNode is a run of literal template text.
type TextNode struct {
	Text string
}

// NewTextNode creates a text node.
func NewTextNode(text string) *TextNode {
	return &TextNode{Text: text}
}

// Evaluate returns the text unchanged.
func (n *TextNode) Evaluate(_ context.Context, _ *Context) (cty.Value, error) {
	return cty.StringVal(n.Text), nil
}

// LiteralString returns the text; a text node is always literal.
func (n *TextNode) LiteralString() (string, bool) {
	return n.Text, true
}

// ExpressionNode wraps an HCL expression produced by the parser layer and
// evaluates it against the active variable scope.
type ExpressionNode struct {
	Expr hcl.Expression
}

// ParseExpression builds an ExpressionNode from HCL expression source. It
// exists for embedders (and tests) that feed expressions in directly rather
// than through a parsed template.
func ParseExpression(src string) (*ExpressionNode, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "inline", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing expression %q: %w", src, diags)
	}
	return &ExpressionNode{Expr: expr}, nil
}

// Evaluate resolves the expression against the scope as it stands now.
func (n *ExpressionNode) Evaluate(_ context.Context, rc *Context) (cty.Value, error) {
	v, diags := n.Expr.Value(rc.EvalContext())
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, nil
}

// LiteralString extracts the expression's compile-time string value, if it
// has one: a bare keyword or a literal that evaluates without any scope.
func (n *ExpressionNode) LiteralString() (string, bool) {
	if kw := hcl.ExprAsKeyword(n.Expr); kw != "" {
		return kw, true
	}
	v, diags := n.Expr.Value(nil)
	if diags.HasErrors() || v.IsNull() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}

// CompiledNode is the compiled-closure evaluator: a node whose rendering was
// precomputed into a continuation. It satisfies the same contract as the
// tree-walking nodes, which is what keeps the two modes interchangeable.
type CompiledNode struct {
	Fn RenderFunc
}

// Evaluate invokes the precompiled continuation.
func (n *CompiledNode) Evaluate(ctx context.Context, rc *Context) (cty.Value, error) {
	return n.Fn(ctx, rc)
}

// EvaluateSequence evaluates nodes in document order and combines their
// results: no nodes yield the empty string, a single node passes its value
// through unconverted, and several nodes concatenate their textual forms.
// Passing a single value through preserves non-string results (a tag whose
// only child is an expression returns the expression's value, not its
// rendering).
func EvaluateSequence(ctx context.Context, rc *Context, nodes []Node) (cty.Value, error) {
	switch len(nodes) {
	case 0:
		return cty.StringVal(""), nil
	case 1:
		return nodes[0].Evaluate(ctx, rc)
	}

	var sb strings.Builder
	for _, n := range nodes {
		v, err := n.Evaluate(ctx, rc)
		if err != nil {
			return cty.NilVal, err
		}
		s, err := ctyval.Stringify(v)
		if err != nil {
			return cty.NilVal, err
		}
		sb.WriteString(s)
	}
	return cty.StringVal(sb.String()), nil
}
