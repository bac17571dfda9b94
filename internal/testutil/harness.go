package testutil

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/stencil/internal/ctxlog"
	"github.com/vk/stencil/internal/ctyval"
	"github.com/vk/stencil/internal/helper"
	"github.com/vk/stencil/internal/render"
	"github.com/vk/stencil/internal/scope"
	"github.com/zclconf/go-cty/cty"
)

// HarnessResult holds the outcomes of a full render pass.
type HarnessResult struct {
	Value     cty.Value
	Output    string
	LogOutput string
	Err       error
}

// RenderPass provides a standardized harness for end-to-end rendering tests:
// it runs the post-parse notification over the whole tree, evaluates it in
// document order, and captures debug-level log output for assertions.
func RenderPass(t *testing.T, rc *render.Context, nodes ...render.Node) *HarnessResult {
	t.Helper()

	var buf SafeBuffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	result := &HarnessResult{}
	result.Err = NotifyPostParseTree(nodes, rc.Variables)
	if result.Err == nil {
		result.Value, result.Err = render.EvaluateSequence(ctx, rc, nodes)
	}
	if result.Err == nil {
		if s, err := ctyval.Stringify(result.Value); err == nil {
			result.Output = s
		}
	}
	result.LogOutput = buf.String()
	return result
}

// NotifyPostParseTree runs the post-parse hook over every tag node in the
// tree, children before parents, the way a parser would as each subtree
// completes.
func NotifyPostParseTree(nodes []render.Node, vars *scope.Provider) error {
	for _, n := range nodes {
		tag, ok := n.(*helper.Node)
		if !ok {
			continue
		}
		if err := NotifyPostParseTree(tag.Children, vars); err != nil {
			return err
		}
		if err := helper.NotifyPostParse(tag, vars); err != nil {
			return err
		}
	}
	return nil
}

// AssertLogged checks the captured log output within a HarnessResult for a
// substring. It keeps tests resilient to changes in log attribute formatting.
func AssertLogged(t *testing.T, result *HarnessResult, substring string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.LogOutput, substring),
		"expected log output to contain %q, got:\n%s", substring, result.LogOutput,
	)
}
