package helper

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/stencil/internal/argdef"
	"github.com/vk/stencil/internal/ctyval"
	"github.com/vk/stencil/internal/render"
	"github.com/vk/stencil/internal/scope"
	"github.com/vk/stencil/internal/slots"
	"github.com/zclconf/go-cty/cty"
)

// SectionsVariable is the scope variable holding the name → node mapping of
// every section registered so far. It lives in the ordinary variable scope,
// not the slot registry, so lookups during rendering (including recursive
// ones) can reach it like any other variable.
const SectionsVariable = "sections"

// renderingGateSlot is the one-shot flag a render collaborator sets before
// evaluating a section node. Without it the section suppresses its output.
const renderingGateSlot = "isCurrentlyRenderingSection"

// sectionKind is the slot-registry owner identity for all section gating.
var sectionKind = reflect.TypeOf(SectionHelper{})

// SectionHelper defines a named, reusable subtree. Its body produces no
// output where it appears; content is rendered only when a collaborating
// tag invokes the section by name.
type SectionHelper struct {
	Base
}

// NewSectionHelper is the registration factory for the section tag.
func NewSectionHelper() Helper {
	return &SectionHelper{}
}

// DeclareArguments declares the section's single argument.
func (s *SectionHelper) DeclareArguments(defs *argdef.Definitions) error {
	return defs.Declare(argdef.Definition{
		Name:        "name",
		Type:        argdef.TypeString,
		Description: "Name of the section",
		Required:    true,
	})
}

// PostParse registers the freshly parsed node under its declared name. The
// name comes from the literal text of the argument, not a runtime
// expression: sections must be addressable before any rendering occurs.
// Registration happens once per parse, never at render time; a later
// section with the same name replaces the earlier one.
func (s *SectionHelper) PostParse(node *Node, arguments map[string]render.Node, vars *scope.Provider) error {
	nameNode, ok := arguments["name"]
	if !ok {
		return &argdef.MissingRequiredArgumentError{Name: "name"}
	}
	lit, ok := nameNode.(render.Literal)
	if !ok {
		return fmt.Errorf("section names must be literal, got %T", nameNode)
	}
	name, ok := lit.LiteralString()
	if !ok {
		return fmt.Errorf("section names must be literal strings")
	}

	if existing, exists := vars.Get(SectionsVariable); exists {
		native, ok := ctyval.Unwrap(existing)
		if !ok {
			return fmt.Errorf("variable %q is already bound to a non-section value", SectionsVariable)
		}
		sections, ok := native.(*map[string]render.Node)
		if !ok {
			return fmt.Errorf("variable %q is already bound to a non-section value", SectionsVariable)
		}
		(*sections)[name] = node
		return nil
	}

	sections := map[string]render.Node{name: node}
	return vars.Add(SectionsVariable, ctyval.Wrap(sections))
}

// Render checks the rendering gate: only a collaborator that set the flag
// immediately before evaluating this node gets the children; a direct
// top-down encounter of the section yields nothing. Take consumes the flag,
// so each collaborator invocation unlocks exactly one render.
func (s *SectionHelper) Render(ctx context.Context, inv *Invocation) (cty.Value, error) {
	if _, ok := inv.Context.Slots.Take(sectionKind, renderingGateSlot); ok {
		return inv.RenderChildren(ctx)
	}
	return cty.StringVal(""), nil
}

// Compile emits the constant empty string. A section's own position in the
// tree is never the gated rendering path, so its compiled form carries no
// runtime work at all; only collaborator invocations produce its content.
func (s *SectionHelper) Compile(_, _ string, _ *CompileState, _ *Node) string {
	return `""`
}

// EscapingFlags keeps children escaping on but disables output escaping;
// section output is whatever the collaborator's invocation produced.
func (s *SectionHelper) EscapingFlags() (children, output bool) {
	return true, false
}

// MarkSectionRendering arms the rendering gate. A render collaborator calls
// this immediately before evaluating the node it looked up in the sections
// mapping. Each recursive render cycle re-arms the gate before re-evaluating
// the same node.
func MarkSectionRendering(reg *slots.Registry) {
	reg.Set(sectionKind, renderingGateSlot, true)
}

// ClearSectionRendering disarms the gate; collaborators call it after
// evaluation in case the section was never reached.
func ClearSectionRendering(reg *slots.Registry) {
	reg.Remove(sectionKind, renderingGateSlot)
}

// LookupSection resolves a registered section node by name from the active
// scope. The false return is the unresolved-reference condition collaborators
// report in their own terms.
func LookupSection(vars *scope.Provider, name string) (render.Node, bool) {
	v, ok := vars.Get(SectionsVariable)
	if !ok {
		return nil, false
	}
	native, ok := ctyval.Unwrap(v)
	if !ok {
		return nil, false
	}
	sections, ok := native.(*map[string]render.Node)
	if !ok {
		return nil, false
	}
	node, ok := (*sections)[name]
	return node, ok
}
