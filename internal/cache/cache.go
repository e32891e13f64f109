// Package cache keeps recently compiled expressions so that the playground
// and the REPL do not re-parse the same source for every request.
//
// Entries are keyed by the source text together with the ordered input
// names, because the same text compiled against different names yields a
// different expression. Failed compiles are never cached.
package cache

import (
	"container/list"
	"strconv"
	"strings"
	"sync"

	"github.com/specialistvlad/exprbridge/internal/compiler"
)

// Observer receives cache events. *metrics.Collector implements it.
type Observer interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheEviction()
	SetCacheEntries(n int)
}

type entry struct {
	key  string
	expr *compiler.Expression
}

// Cache is an LRU of compiled expressions. A nil *Cache is a valid cache
// that holds nothing. Safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	observer Observer
}

// New creates a cache holding up to capacity expressions. A negative
// capacity returns nil, which disables caching; zero selects 256.
func New(capacity int, observer Observer) *Cache {
	if capacity < 0 {
		return nil
	}
	if capacity == 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		observer: observer,
	}
}

// Key builds the cache key for src compiled against names. Every component
// is length-prefixed, so no two (src, names) pairs share a key even when
// they contain separator bytes.
func Key(src string, names []string) string {
	var b strings.Builder
	writeComponent(&b, src)
	for _, n := range names {
		writeComponent(&b, n)
	}
	return b.String()
}

func writeComponent(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

// Get returns the cached expression for key and marks it most recently used.
func (c *Cache) Get(key string) (*compiler.Expression, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	el, ok := c.items[key]
	atFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		c.notify(func(o Observer) { o.RecordCacheMiss() })
		return nil, false
	}

	if !atFront {
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()
		if !ok {
			c.notify(func(o Observer) { o.RecordCacheMiss() })
			return nil, false
		}
	}
	c.notify(func(o Observer) { o.RecordCacheHit() })
	return el.Value.(*entry).expr, true
}

// Set stores expr under key, evicting the least recently used entry when full.
func (c *Cache) Set(key string, expr *compiler.Expression) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry).expr = expr
		c.ll.MoveToFront(el)
		c.mu.Unlock()
		return
	}

	evicted := false
	if c.ll.Len() >= c.capacity {
		evicted = c.evictLocked()
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, expr: expr})
	n := len(c.items)
	c.mu.Unlock()

	c.notify(func(o Observer) {
		if evicted {
			o.RecordCacheEviction()
		}
		o.SetCacheEntries(n)
	})
}

// GetOrCompile returns the cached expression for src and names, compiling
// and caching it on a miss. Concurrent misses on one key may each compile.
func (c *Cache) GetOrCompile(src string, names []string, compile func() (*compiler.Expression, error)) (*compiler.Expression, error) {
	key := Key(src, names)
	if expr, ok := c.Get(key); ok {
		return expr, nil
	}
	expr, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, expr)
	return expr, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the maximum number of cached expressions.
func (c *Cache) Capacity() int {
	if c == nil {
		return 0
	}
	return c.capacity
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.mu.Unlock()
	c.notify(func(o Observer) { o.SetCacheEntries(0) })
}

// evictLocked must be called with c.mu held for writing.
func (c *Cache) evictLocked() bool {
	el := c.ll.Back()
	if el == nil {
		return false
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	return true
}

func (c *Cache) notify(fn func(Observer)) {
	if c.observer != nil {
		fn(c.observer)
	}
}
