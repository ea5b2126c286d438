package schema

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Introspector fetches column metadata for a table.
// Implementations issue whatever metadata query their database supports.
type Introspector interface {
	Introspect(ctx context.Context, database, table string) ([]ColumnDefinition, error)
}

// IntrospectorFunc adapts a function to Introspector.
type IntrospectorFunc func(ctx context.Context, database, table string) ([]ColumnDefinition, error)

// Introspect calls f.
func (f IntrospectorFunc) Introspect(ctx context.Context, database, table string) ([]ColumnDefinition, error) {
	return f(ctx, database, table)
}

// Cache memoizes table definitions per "database.table".
//
// Entries live until invalidated. Concurrent first requests for the same
// key share one introspection call. Failed introspections are not cached.
//
// Thread-safety: all methods are safe for concurrent use.
type Cache struct {
	introspector Introspector

	mu   sync.RWMutex
	defs map[string]*TableDefinition
	// gen is bumped on every invalidation so an introspection that started
	// before it cannot repopulate the cache with stale data.
	gen uint64

	inflight singleflight.Group
}

// NewCache creates an empty cache backed by introspector.
func NewCache(introspector Introspector) *Cache {
	return &Cache{
		introspector: introspector,
		defs:         make(map[string]*TableDefinition),
	}
}

// Definition returns the cached definition, introspecting on first use.
func (c *Cache) Definition(ctx context.Context, database, table string) (*TableDefinition, error) {
	key := Path(database, table)

	c.mu.RLock()
	def, ok := c.defs[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return def, nil
	}

	// Requests started before an invalidation are not shared with callers
	// arriving after it. The shared call outlives any single caller's
	// cancellation; each caller still stops waiting on its own ctx.
	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(flightKey, func() (any, error) {
		columns, err := c.introspector.Introspect(shared, database, table)
		if err != nil {
			return nil, err
		}
		def := NewTableDefinition(database, table, columns)

		c.mu.Lock()
		if c.gen == gen {
			c.defs[key] = def
		}
		c.mu.Unlock()
		return def, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("introspect %s: %w", key, res.Err)
		}
		return res.Val.(*TableDefinition), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cached returns the definition only if it is already cached.
func (c *Cache) Cached(database, table string) (*TableDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[Path(database, table)]
	return def, ok
}

// Invalidate drops one cached definition.
func (c *Cache) Invalidate(database, table string) {
	key := Path(database, table)
	c.mu.Lock()
	delete(c.defs, key)
	c.gen++
	c.mu.Unlock()
}

// InvalidateAll drops every cached definition.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.defs = make(map[string]*TableDefinition)
	c.gen++
	c.mu.Unlock()
}

// Len returns the number of cached definitions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
