package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/exprbridge/internal/compiler"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses, evictions, entries atomic.Int64
}

func (o *countingObserver) RecordCacheHit()       { o.hits.Add(1) }
func (o *countingObserver) RecordCacheMiss()      { o.misses.Add(1) }
func (o *countingObserver) RecordCacheEviction()  { o.evictions.Add(1) }
func (o *countingObserver) SetCacheEntries(n int) { o.entries.Store(int64(n)) }

func compileFn(t *testing.T, src string, names []string, calls *int) func() (*compiler.Expression, error) {
	t.Helper()
	return func() (*compiler.Expression, error) {
		*calls++
		return compiler.Compile(context.Background(), src, names)
	}
}

func TestCache_GetOrCompileCompilesOnce(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	obs := &countingObserver{}
	c := New(4, obs)
	names := []string{"a", "b"}
	calls := 0

	// --- Act ---
	first, err := c.GetOrCompile("a + b", names, compileFn(t, "a + b", names, &calls))
	require.NoError(t, err)
	second, err := c.GetOrCompile("a + b", names, compileFn(t, "a + b", names, &calls))
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, 1, calls)
	require.Same(t, first, second)
	require.EqualValues(t, 1, obs.hits.Load())
	require.EqualValues(t, 1, obs.misses.Load())
	require.EqualValues(t, 1, obs.entries.Load())
}

func TestCache_KeyIncludesInputNames(t *testing.T) {
	t.Parallel()

	require.NotEqual(t, Key("a", []string{"a", "b"}), Key("a", []string{"b", "a"}))
	require.NotEqual(t, Key("ab", nil), Key("a", []string{"b"}))
}

func TestCache_KeySeparatorBytesDoNotCollide(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		src1, src2 string
		names1     []string
		names2     []string
	}{
		{"NUL in source", "a + b", "a + b\x00a", []string{"a", "b"}, []string{"b"}},
		{"NUL in name", "x", "x", []string{"a", "b"}, []string{"a\x00b"}},
		{"digits and colon", "1:a", "1", nil, []string{"a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NotEqual(t, Key(tc.src1, tc.names1), Key(tc.src2, tc.names2))
		})
	}
}

func TestCache_CollidingRequestStillCompiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c := New(4, nil)
	calls := 0
	_, err := c.GetOrCompile("a + b", []string{"a", "b"}, compileFn(t, "a + b", []string{"a", "b"}, &calls))
	require.NoError(t, err)

	// --- Act ---
	src, names := "a + b\x00a", []string{"b"}
	_, err = c.GetOrCompile(src, names, compileFn(t, src, names, &calls))

	// --- Assert ---
	require.Error(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	c := New(2, obs)
	expr, err := compiler.Compile(context.Background(), "1", nil)
	require.NoError(t, err)

	c.Set("x", expr)
	c.Set("y", expr)
	_, ok := c.Get("x")
	require.True(t, ok)
	c.Set("z", expr)

	_, ok = c.Get("y")
	require.False(t, ok, "y was least recently used")
	_, ok = c.Get("x")
	require.True(t, ok)
	require.Equal(t, 2, c.Len())
	require.EqualValues(t, 1, obs.evictions.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	c := New(2, nil)
	calls := 0
	failing := func() (*compiler.Expression, error) {
		calls++
		return nil, errors.New("boom")
	}

	_, err := c.GetOrCompile("x", nil, failing)
	require.Error(t, err)
	_, err = c.GetOrCompile("x", nil, failing)
	require.Error(t, err)

	require.Equal(t, 2, calls)
	require.Zero(t, c.Len())
}

func TestCache_NilIsDisabled(t *testing.T) {
	t.Parallel()

	c := New(-1, nil)
	require.Nil(t, c)

	calls := 0
	for range 2 {
		_, err := c.GetOrCompile("1", nil, compileFn(t, "1", nil, &calls))
		require.NoError(t, err)
	}
	require.Equal(t, 2, calls)
	require.Zero(t, c.Len())
	require.Zero(t, c.Capacity())
	c.Clear()
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New(8, &countingObserver{})
	expr, err := compiler.Compile(context.Background(), "1", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := Key("k", []string{string(rune('a' + i%12))})
			c.Set(key, expr)
			c.Get(key)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 8)
}
