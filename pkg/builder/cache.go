package builder

import (
	"reflect"
	"sync"

	"github.com/blockberries/mulberry/pkg/schema"
)

// Cache is a delegate cache across builds (spec §5): a mapping from
// (target type, schema) to an already-compiled reader. When supplied to
// Build, the dispatcher consults it before invoking cases. It is populated
// only when a record reader's body is fulfilled (Context.Fulfill); readers
// for non-record schemas are never stored in it. Building a record reader
// for the same type repeatedly (e.g. once per incoming connection) therefore
// does not re-run the dispatch pipeline for that record. It is distinct from Context's per-build references,
// which exist only to break cycles within one top-level build.
type Cache interface {
	Get(t reflect.Type, s schema.Schema) (ReadFunc, bool)
	Put(t reflect.Type, s schema.Schema, fn ReadFunc)
}

type cacheKey struct {
	typ    reflect.Type
	schema schema.Schema
}

// MapCache is a Cache backed by a map guarded by a mutex, safe for
// concurrent use across multiple builds sharing one cache instance.
type MapCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]ReadFunc
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[cacheKey]ReadFunc)}
}

func (c *MapCache) Get(t reflect.Type, s schema.Schema) (ReadFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.entries[cacheKey{t, s}]
	return fn, ok
}

func (c *MapCache) Put(t reflect.Type, s schema.Schema, fn ReadFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{t, s}] = fn
}
