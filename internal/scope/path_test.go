package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stencil/internal/ctyval"
	"github.com/zclconf/go-cty/cty"
)

type profile struct {
	Name string
	Tags []string
}

func nestedProvider(t *testing.T) *Provider {
	t.Helper()
	p := New()
	require.NoError(t, p.Add("a", cty.ObjectVal(map[string]cty.Value{
		"b": cty.ObjectVal(map[string]cty.Value{
			"c": cty.NumberIntVal(42),
		}),
	})))
	require.NoError(t, p.Add("items", cty.ListVal([]cty.Value{
		cty.StringVal("first"),
		cty.StringVal("second"),
	})))
	require.NoError(t, p.Add("lookup", cty.MapVal(map[string]cty.Value{
		"key": cty.StringVal("value"),
	})))
	require.NoError(t, p.Add("user", ctyval.Wrap(profile{Name: "ada", Tags: []string{"x", "y"}})))
	require.NoError(t, p.Add("rows", ctyval.Wrap([]map[string]int{{"n": 7}})))
	return p
}

func TestGetByPath(t *testing.T) {
	p := nestedProvider(t)

	testCases := []struct {
		name     string
		path     string
		expected cty.Value
		absent   bool
	}{
		{name: "nested objects", path: "a.b.c", expected: cty.NumberIntVal(42)},
		{name: "single segment", path: "a.b", expected: cty.ObjectVal(map[string]cty.Value{"c": cty.NumberIntVal(42)})},
		{name: "list index", path: "items.1", expected: cty.StringVal("second")},
		{name: "map key", path: "lookup.key", expected: cty.StringVal("value")},
		{name: "struct field via exported spelling", path: "user.Name", expected: cty.StringVal("ada")},
		{name: "struct field via template spelling", path: "user.name", expected: cty.StringVal("ada")},
		{name: "slice inside struct", path: "user.tags.0", expected: cty.StringVal("x")},
		{name: "map inside native slice", path: "rows.0.n", expected: cty.NumberIntVal(7)},

		{name: "missing leaf", path: "a.b.missing", absent: true},
		{name: "missing root", path: "nope.b", absent: true},
		{name: "descend through scalar", path: "a.b.c.deeper", absent: true},
		{name: "list index out of range", path: "items.9", absent: true},
		{name: "non-numeric list segment", path: "items.first", absent: true},
		{name: "empty segment", path: "a..c", absent: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := p.GetByPath(tc.path)
			if tc.absent {
				// Absence is a normal outcome, not an error: the call
				// returns cleanly with ok=false.
				assert.False(t, ok)
				assert.Equal(t, cty.NilVal, v)
				return
			}
			require.True(t, ok)
			assert.True(t, v.RawEquals(tc.expected), "got %#v", v)
		})
	}
}

func TestGetByPathDoesNotMutateSource(t *testing.T) {
	p := nestedProvider(t)

	before, _ := p.Get("a")
	_, _ = p.GetByPath("a.b.c")
	_, _ = p.GetByPath("a.b.missing")
	after, _ := p.Get("a")

	assert.True(t, before.RawEquals(after))
}
