// Package handlestore provides an arena of values addressed by opaque,
// generation-checked handles.
//
// # Purpose
//
// Foreign callers never hold Go pointers. Instead they hold a Handle: a
// 64-bit integer that names a slot in a Table. The Table owns the value
// until the handle is taken or released.
//
// # Handle Layout
//
//   - Low 32 bits: slot index + 1, so the zero Handle is always null
//   - High 32 bits: slot generation, bumped every time the slot is freed
//
// A handle whose generation no longer matches its slot is stale. Stale,
// unknown and null handles are rejected with an error instead of touching
// whatever value now occupies the slot, so double release and use after
// release fail fast.
//
// # Concurrency Model
//
// Unlike a sync.Map keyed by handle, the Table uses a single mutex over a
// slice of slots. Handles are issued and retired at the same rate as they
// are looked up, slot reuse needs the free list and the generation bump to
// change atomically, and lookups are a bounds check plus two comparisons.
package handlestore

import (
	"errors"
	"fmt"
	"sync"
)

// Handle is an opaque reference to a value in a Table. The zero Handle is null.
type Handle uint64

var (
	// ErrNullHandle is returned for the zero Handle.
	ErrNullHandle = errors.New("null handle")
	// ErrStaleHandle is returned for a handle that was already released or
	// was never issued by the table.
	ErrStaleHandle = errors.New("stale or unknown handle")
)

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool {
	return h == 0
}

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) split() (index, gen uint32) {
	return uint32(h) - 1, uint32(h >> 32)
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// Table is an arena of T values addressed by Handle.
type Table[T any] struct {
	name string

	mu    sync.Mutex
	slots []slot[T]
	free  []uint32
	live  int
}

// New creates an empty table. name labels errors and metrics.
func New[T any](name string) *Table[T] {
	return &Table[T]{name: name}
}

// Name returns the label the table was created with.
func (t *Table[T]) Name() string {
	return t.name
}

// Insert stores v and returns a fresh handle for it.
func (t *Table[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot[T]{gen: 1})
		index = uint32(len(t.slots) - 1)
	}

	s := &t.slots[index]
	s.live = true
	s.val = v
	t.live++
	return makeHandle(index, s.gen)
}

// Get returns the value behind h without changing ownership.
func (t *Table[T]) Get(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.val, nil
}

// Take removes the value behind h and returns it. h is stale afterwards.
func (t *Table[T]) Take(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, err := t.lookup(h)
	if err != nil {
		return zero, err
	}

	v := s.val
	s.val = zero
	s.live = false
	s.gen++
	index, _ := h.split()
	t.free = append(t.free, index)
	t.live--
	return v, nil
}

// Release drops the value behind h.
func (t *Table[T]) Release(h Handle) error {
	_, err := t.Take(h)
	return err
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// lookup must be called with t.mu held.
func (t *Table[T]) lookup(h Handle) (*slot[T], error) {
	if h.IsNull() {
		return nil, fmt.Errorf("%s: %w", t.name, ErrNullHandle)
	}
	index, gen := h.split()
	if int(index) >= len(t.slots) {
		return nil, fmt.Errorf("%s handle %#x: %w", t.name, uint64(h), ErrStaleHandle)
	}
	s := &t.slots[index]
	if !s.live || s.gen != gen {
		return nil, fmt.Errorf("%s handle %#x: %w", t.name, uint64(h), ErrStaleHandle)
	}
	return s, nil
}
