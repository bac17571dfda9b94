package helper

import (
	"fmt"
	"strings"
)

// CompileState accumulates one-time setup code a handler needs emitted ahead
// of its render call. The codegen layer owns the surrounding unit; handlers
// only append fragments.
type CompileState struct {
	setup []string
}

// Emit appends a setup fragment.
func (s *CompileState) Emit(code string) {
	s.setup = append(s.setup, code)
}

// Setup returns the accumulated fragments joined in emission order.
func (s *CompileState) Setup() string {
	return strings.Join(s.setup, "\n")
}

// Compiler is implemented by handlers that produce their own code fragment
// at template-compile time. Compile runs once per distinct node, never per
// render. argsRef and childrenRef name, in the generated code, the bound
// argument map and the children continuation; the returned fragment must
// evaluate to exactly what Render would have produced at that point in the
// tree. Handlers whose render path is provably invariant may return a
// constant and skip runtime work entirely.
type Compiler interface {
	Compile(argsRef, childrenRef string, state *CompileState, node *Node) string
}

// Compile returns the code fragment for a handler's node, using the
// handler's own compile step when it has one and the static-call default
// otherwise.
func Compile(h Helper, argsRef, childrenRef string, state *CompileState, node *Node) string {
	if c, ok := h.(Compiler); ok {
		return c.Compile(argsRef, childrenRef, state, node)
	}
	return DefaultCompile(h, argsRef, childrenRef, state, node)
}

// DefaultCompile delegates to the static render entry point, which performs
// the same validation and rendering as the interpreted path. This is what
// keeps compiled and interpreted output observably identical for handlers
// that do not opt into their own fragment.
func DefaultCompile(h Helper, argsRef, childrenRef string, _ *CompileState, _ *Node) string {
	return fmt.Sprintf("helper.RenderStatic(ctx, new(%s), %s, %s, renderingContext)", kindOf(h).String(), argsRef, childrenRef)
}
