package argdef

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
)

// manifestSchema is the HCL schema for a handler's argument manifest body.
var manifestSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "argument", LabelNames: []string{"name"}},
	},
}

// argumentBodySchema is the HCL schema for the body of an `argument` block.
var argumentBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "description"},
		{Name: "required"},
		{Name: "default"},
	},
}

// DecodeManifest decodes `argument` blocks into a definition set, letting a
// tag library describe its arguments declaratively instead of in Go:
//
//	argument "name" {
//	  type        = "string"
//	  description = "section name"
//	  required    = true
//	}
//
// Problems are reported as diagnostics with source ranges rather than a
// single opaque error, matching how embedders surface template-library
// authoring mistakes.
func DecodeManifest(body hcl.Body) (*Definitions, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	defs := NewDefinitions()

	content, contentDiags := body.Content(manifestSchema)
	diags = append(diags, contentDiags...)

	for _, block := range content.Blocks.OfType("argument") {
		// The schema guarantees us one label.
		name := block.Labels[0]

		if defs.Has(name) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate argument definition",
				Detail:   fmt.Sprintf("An argument named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}

		bodyContent, bodyDiags := block.Body.Content(argumentBodySchema)
		diags = append(diags, bodyDiags...)
		if bodyDiags.HasErrors() {
			continue
		}

		typeAttr, exists := bodyContent.Attributes["type"]
		if !exists {
			missingItemRange := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all argument blocks.",
				Subject:  &missingItemRange,
			})
			continue
		}

		var keyword string
		evalDiags := gohcl.DecodeExpression(typeAttr.Expr, nil, &keyword)
		diags = append(diags, evalDiags...)
		if evalDiags.HasErrors() {
			continue
		}
		declared, err := ParseType(keyword)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown argument type",
				Detail:   err.Error(),
				Subject:  typeAttr.Expr.Range().Ptr(),
			})
			continue
		}

		def := Definition{Name: name, Type: declared}

		if descAttr, exists := bodyContent.Attributes["description"]; exists {
			evalDiags := gohcl.DecodeExpression(descAttr.Expr, nil, &def.Description)
			diags = append(diags, evalDiags...)
		}
		if reqAttr, exists := bodyContent.Attributes["required"]; exists {
			evalDiags := gohcl.DecodeExpression(reqAttr.Expr, nil, &def.Required)
			diags = append(diags, evalDiags...)
		}

		if defaultAttr, exists := bodyContent.Attributes["default"]; exists {
			// A nil eval context is used because defaults must be literal values.
			val, valDiags := defaultAttr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}

			// A vetted default is the one value exempt from runtime
			// validation, so it must conform here.
			if !declared.IsMixed() {
				if err := checkValue(def, val); err != nil {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagError,
						Summary:  "Invalid default value type",
						Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s'.", name, declared.FriendlyName()),
						Subject:  defaultAttr.Expr.Range().Ptr(),
					})
					continue
				}
			}
			def.Default = val
			def.HasDefault = true
		}

		if err := defs.Declare(def); err != nil {
			// Duplicates were filtered above; anything else is unexpected.
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid argument declaration",
				Detail:   err.Error(),
				Subject:  &block.DefRange,
			})
		}
	}

	return defs, diags
}
