package argdef

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct{}
type otherHandler struct{}

func TestCacheResolve(t *testing.T) {
	cache := NewCache()
	kind := reflect.TypeOf(fakeHandler{})

	calls := 0
	declare := func(defs *Definitions) error {
		calls++
		return defs.Declare(Definition{Name: "name", Type: TypeString, Required: true})
	}

	first, err := cache.Resolve(kind, declare)
	require.NoError(t, err)
	require.Equal(t, 1, first.Len())

	second, err := cache.Resolve(kind, declare)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls, "declaration must run once per kind")
}

func TestCacheResolveDeclareErrorNotPublished(t *testing.T) {
	cache := NewCache()
	kind := reflect.TypeOf(fakeHandler{})

	boom := errors.New("boom")
	_, err := cache.Resolve(kind, func(*Definitions) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, cache.Known(kind), "a failed declaration must not be published")

	// A later, successful declaration still works.
	defs, err := cache.Resolve(kind, func(defs *Definitions) error {
		return defs.Declare(Definition{Name: "a", Type: TypeMixed})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, defs.Len())
}

func TestCacheResolveConcurrentFirstUse(t *testing.T) {
	cache := NewCache()
	kind := reflect.TypeOf(fakeHandler{})
	declare := func(defs *Definitions) error {
		if err := defs.Declare(Definition{Name: "a", Type: TypeString}); err != nil {
			return err
		}
		return defs.Declare(Definition{Name: "b", Type: TypeInteger})
	}

	const workers = 32
	results := make([]*Definitions, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			defs, err := cache.Resolve(kind, declare)
			assert.NoError(t, err)
			results[i] = defs
		}(i)
	}
	wg.Wait()

	// No reader may ever observe a partially populated set, and all callers
	// converge on the one published set.
	for _, defs := range results {
		require.NotNil(t, defs)
		assert.Equal(t, 2, defs.Len())
		assert.Same(t, results[0], defs)
	}
}

func TestCacheIsolatesKinds(t *testing.T) {
	cache := NewCache()

	a, err := cache.Resolve(reflect.TypeOf(fakeHandler{}), func(defs *Definitions) error {
		return defs.Declare(Definition{Name: "a", Type: TypeString})
	})
	require.NoError(t, err)

	b, err := cache.Resolve(reflect.TypeOf(otherHandler{}), func(defs *Definitions) error {
		return defs.Declare(Definition{Name: "b", Type: TypeString})
	})
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.True(t, a.Has("a"))
	assert.False(t, a.Has("b"))
	assert.True(t, b.Has("b"))
}
