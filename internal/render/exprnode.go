package render

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/vk/stencil/internal/ctyval"
	"github.com/zclconf/go-cty/cty"
)

// ExprNode is an alternative expression adapter for embedders whose template
// dialect is not HCL: it wraps a precompiled expr program evaluated over the
// native projection of the variable scope. Either adapter can back a tag's
// argument nodes; the invocation layer only sees the Node interface.
type ExprNode struct {
	src  string
	prog *vm.Program
}

// CompileExpr compiles expression source once; the returned node is reusable
// across renders. Undefined variables are allowed at compile time because the
// scope is only known at render time.
func CompileExpr(src string) (*ExprNode, error) {
	prog, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", src, err)
	}
	return &ExprNode{src: src, prog: prog}, nil
}

// Evaluate runs the program against a snapshot of the scope and lifts the
// result back into the engine's value universe.
func (n *ExprNode) Evaluate(_ context.Context, rc *Context) (cty.Value, error) {
	env := ctyval.NativeMap(rc.Variables.All())
	out, err := expr.Run(n.prog, env)
	if err != nil {
		return cty.NilVal, fmt.Errorf("evaluating expression %q: %w", n.src, err)
	}
	return ctyval.ToCty(out)
}
