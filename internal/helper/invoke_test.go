package helper

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stencil/internal/argdef"
	"github.com/vk/stencil/internal/ctyval"
	"github.com/vk/stencil/internal/render"
	"github.com/zclconf/go-cty/cty"
)

// badgeHelper wraps its rendered children in a labelled badge, repeated a
// configurable number of times. It exercises required arguments, defaults,
// and child rendering in both execution modes.
type badgeHelper struct {
	Base
	initialized bool
}

func newBadgeHelper() Helper { return &badgeHelper{} }

func (h *badgeHelper) DeclareArguments(defs *argdef.Definitions) error {
	if err := defs.Declare(argdef.Definition{Name: "label", Type: argdef.TypeString, Required: true}); err != nil {
		return err
	}
	return defs.Declare(argdef.Definition{
		Name:       "repeat",
		Type:       argdef.TypeInteger,
		Default:    cty.NumberIntVal(1),
		HasDefault: true,
	})
}

func (h *badgeHelper) Initialize(_ *Invocation) {
	h.initialized = true
}

func (h *badgeHelper) Render(ctx context.Context, inv *Invocation) (cty.Value, error) {
	if !h.initialized {
		return cty.NilVal, assert.AnError
	}

	children, err := inv.RenderChildren(ctx)
	if err != nil {
		return cty.NilVal, err
	}
	body, err := ctyval.Stringify(children)
	if err != nil {
		return cty.NilVal, err
	}

	label := inv.Arguments["label"].AsString()
	repeat, _ := inv.Arguments["repeat"].AsBigFloat().Int64()
	return cty.StringVal(strings.Repeat("["+label+":"+body+"]", int(repeat))), nil
}

func mustExpr(t *testing.T, src string) render.Node {
	t.Helper()
	n, err := render.ParseExpression(src)
	require.NoError(t, err)
	return n
}

func badgeNode(t *testing.T, args map[string]render.Node, children ...render.Node) *Node {
	t.Helper()
	reg := NewRegistry()
	kind := reg.Register("badge", newBadgeHelper)
	return NewNode(kind, args, children...)
}

func TestInvokeInterpreted(t *testing.T) {
	rc := render.NewContext()
	node := badgeNode(t,
		map[string]render.Node{"label": mustExpr(t, `"info"`)},
		render.NewTextNode("body"),
	)

	v, err := node.Evaluate(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, "[info:body]", v.AsString())
}

func TestInvokeAppliesDefaults(t *testing.T) {
	rc := render.NewContext()
	node := badgeNode(t, map[string]render.Node{
		"label":  mustExpr(t, `"x"`),
		"repeat": mustExpr(t, "3"),
	}, render.NewTextNode("."))

	v, err := node.Evaluate(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, "[x:.][x:.][x:.]", v.AsString())
}

func TestBindMissingRequired(t *testing.T) {
	rc := render.NewContext()
	node := badgeNode(t, nil)

	_, err := node.Evaluate(context.Background(), rc)
	var missing *argdef.MissingRequiredArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "label", missing.Name)
}

func TestBindUndeclaredArgument(t *testing.T) {
	rc := render.NewContext()
	node := badgeNode(t, map[string]render.Node{
		"label": mustExpr(t, `"x"`),
		"nope":  mustExpr(t, `"y"`),
	})

	_, err := node.Evaluate(context.Background(), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared")
}

func TestInvokeValidatesTypes(t *testing.T) {
	rc := render.NewContext()
	node := badgeNode(t, map[string]render.Node{"label": mustExpr(t, "42")})

	_, err := node.Evaluate(context.Background(), rc)
	var typeErr *argdef.ArgumentTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "label", typeErr.Name)
	assert.Equal(t, "string", typeErr.Declared)
}

func TestCompiledAndInterpretedAgree(t *testing.T) {
	// The mandatory invariant of the dual-mode design: same node, same
	// arguments, same context, byte-identical output.
	cache := argdef.NewCache()

	interpretedCtx := render.NewContextWithCache(cache)
	node := badgeNode(t,
		map[string]render.Node{
			"label":  mustExpr(t, `"dual"`),
			"repeat": mustExpr(t, "2"),
		},
		render.NewTextNode("same"),
	)
	interpreted, err := node.Evaluate(context.Background(), interpretedCtx)
	require.NoError(t, err)

	compiledCtx := render.NewContextWithCache(cache)
	children := func(_ context.Context, _ *render.Context) (cty.Value, error) {
		return cty.StringVal("same"), nil
	}
	compiled, err := RenderStatic(context.Background(), newBadgeHelper(), map[string]cty.Value{
		"label":  cty.StringVal("dual"),
		"repeat": cty.NumberIntVal(2),
	}, children, compiledCtx)
	require.NoError(t, err)

	assert.Equal(t, interpreted.AsString(), compiled.AsString())
}

func TestRenderStaticValidatesLikeInterpreted(t *testing.T) {
	rc := render.NewContext()

	_, err := RenderStatic(context.Background(), newBadgeHelper(), map[string]cty.Value{
		"label": cty.NumberIntVal(42),
	}, nil, rc)
	var typeErr *argdef.ArgumentTypeError
	require.ErrorAs(t, err, &typeErr)

	_, err = RenderStatic(context.Background(), newBadgeHelper(), map[string]cty.Value{}, nil, rc)
	var missing *argdef.MissingRequiredArgumentError
	require.ErrorAs(t, err, &missing)

	_, err = RenderStatic(context.Background(), newBadgeHelper(), map[string]cty.Value{
		"label": cty.StringVal("ok"),
		"nope":  cty.True,
	}, nil, rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared")
}

func TestBaseRendersChildren(t *testing.T) {
	reg := NewRegistry()
	kind := reg.Register("group", func() Helper { return &struct{ Base }{} })

	rc := render.NewContext()
	node := NewNode(kind, nil, render.NewTextNode("a"), render.NewTextNode("b"))

	v, err := node.Evaluate(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, "ab", v.AsString())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	reg.Register("badge", newBadgeHelper)

	assert.Panics(t, func() {
		reg.Register("badge", newBadgeHelper)
	})

	k, ok := reg.Lookup("badge")
	require.True(t, ok)
	assert.Equal(t, "badge", k.Name)
}

func TestEscapingFlags(t *testing.T) {
	children, output := EscapingFlags(&badgeHelper{})
	assert.True(t, children)
	assert.True(t, output)

	children, output = EscapingFlags(&SectionHelper{})
	assert.True(t, children)
	assert.False(t, output)
}

func TestCompileDefaultsToStaticCall(t *testing.T) {
	state := &CompileState{}
	fragment := Compile(&badgeHelper{}, "args0", "children0", state, nil)

	assert.Contains(t, fragment, "RenderStatic")
	assert.Contains(t, fragment, "args0")
	assert.Contains(t, fragment, "children0")
	assert.Empty(t, state.Setup())
}

func TestCompileState(t *testing.T) {
	state := &CompileState{}
	state.Emit("a := setup()")
	state.Emit("b := more()")
	assert.Equal(t, "a := setup()\nb := more()", state.Setup())
}
