package argdef

import (
	"log/slog"
	"reflect"
	"sync"
)

// Cache resolves a handler kind's argument definitions exactly once per
// process. Render passes running on concurrent goroutines share one Cache,
// so a definition set is fully built before it is published: readers either
// see nothing and populate, or see the complete set. Racing populators are
// harmless because declaration is deterministic per kind; the first
// published set wins.
type Cache struct {
	mu   sync.RWMutex
	defs map[reflect.Type]*Definitions
}

// NewCache creates an empty definition cache. The cache is an explicit
// object owned by the rendering context, not package state, so embedders
// control its lifetime and sharing.
func NewCache() *Cache {
	return &Cache{defs: make(map[reflect.Type]*Definitions)}
}

// Resolve returns the definitions for the given handler kind, invoking
// declare to populate them on first use. The declare callback receives an
// empty set and must fully declare the kind's arguments; its error aborts
// resolution without publishing anything.
func (c *Cache) Resolve(kind reflect.Type, declare func(*Definitions) error) (*Definitions, error) {
	c.mu.RLock()
	defs, ok := c.defs[kind]
	c.mu.RUnlock()
	if ok {
		return defs, nil
	}

	// Build outside the lock so slow declarations never block readers of
	// other kinds, then publish atomically.
	defs = NewDefinitions()
	if err := declare(defs); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.defs[kind]; ok {
		defs = existing
	} else {
		c.defs[kind] = defs
	}
	c.mu.Unlock()

	slog.Debug("Resolved argument definitions.", "kind", kind.String(), "arguments", defs.Len())
	return defs, nil
}

// Known reports whether the kind's definitions have been populated.
func (c *Cache) Known(kind reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.defs[kind]
	return ok
}
