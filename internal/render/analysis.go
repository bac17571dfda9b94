package render

import (
	"sort"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Analysis gathers the HCL expressions under a node and reports which
// variables they reference and which functions they call. The codegen layer
// uses this to decide what scope a compiled unit must be handed, without
// re-walking the tree at render time.
type Analysis struct {
	// analyzeOnce ensures the extraction logic runs exactly once per
	// expression set; Add resets it.
	analyzeOnce sync.Once

	mu          sync.RWMutex
	expressions []hcl.Expression

	references      []string
	calledFunctions []string
}

// NewAnalysis creates an empty analysis.
func NewAnalysis() *Analysis {
	return &Analysis{}
}

// Add records expressions for analysis, ignoring nils. All Adds happen while
// the compile step walks a node, which is single-threaded; only the result
// getters may be called concurrently.
func (a *Analysis) Add(exprs ...hcl.Expression) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analyzeOnce = sync.Once{}
	for _, expr := range exprs {
		if expr != nil {
			a.expressions = append(a.expressions, expr)
		}
	}
}

// AddNode records the expression of an expression-backed node; other node
// kinds carry nothing analyzable and are skipped.
func (a *Analysis) AddNode(n Node) {
	if en, ok := n.(*ExpressionNode); ok {
		a.Add(en.Expr)
	}
}

// References returns the canonical form of every variable traversal the
// expressions reference, sorted and de-duplicated (e.g. "user.name").
func (a *Analysis) References() []string {
	a.analyze()
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.references
}

// CalledFunctions returns every function name the expressions call, sorted
// and de-duplicated.
func (a *Analysis) CalledFunctions() []string {
	a.analyze()
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.calledFunctions
}

func (a *Analysis) analyze() {
	a.analyzeOnce.Do(func() {
		a.mu.RLock()
		refs, funcs := extractReferencesAndFunctions(a.expressions)
		a.mu.RUnlock()

		a.mu.Lock()
		a.references = refs
		a.calledFunctions = funcs
		a.mu.Unlock()
	})
}

// traversalKey generates a stable, canonical string for an hcl.Traversal,
// suitable for use as a map key.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

func extractReferencesAndFunctions(exprs []hcl.Expression) ([]string, []string) {
	traversals := make(map[string]struct{})
	functions := make(map[string]struct{})

	for _, expr := range exprs {
		// Variables() gives robust traversal collection for any expression.
		for _, traversal := range expr.Variables() {
			traversals[traversalKey(traversal)] = struct{}{}
		}
		// Function calls need a syntax-tree walk.
		if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
			hclsyntax.VisitAll(syntaxExpr, func(node hclsyntax.Node) hcl.Diagnostics {
				if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
					functions[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	return sortedKeys(traversals), sortedKeys(functions)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
