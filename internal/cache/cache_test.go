package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func frozen[K comparable, V any](c *TTLCache[K, V]) *time.Time {
	base := time.Now()
	c.now = func() time.Time { return base }
	return &base
}

func TestTTLCache_SetGet_NoTTL(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, c.Len())
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New[string, string]()
	clock := frozen(c)

	c.Set("k", "v", time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	*clock = clock.Add(2 * time.Second)
	_, ok = c.Get("k")
	require.False(t, ok)
	require.Zero(t, c.Len())
}

func TestTTLCache_DeleteClear(t *testing.T) {
	c := New[int, int]()
	c.Set(1, 10, 0)
	c.Set(2, 20, 0)
	c.Delete(1)
	_, ok := c.Get(1)
	require.False(t, ok)
	require.Equal(t, 1, c.Len())
	c.Clear()
	require.Zero(t, c.Len())
}

func TestTTLCache_Concurrent(t *testing.T) {
	c := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				c.Set(i, r, 0)
				_, _ = c.Get(i)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, c.Len())
}

func TestLoader(t *testing.T) {
	calls := 0
	fail := false
	l := NewLoader(time.Minute, func(ctx context.Context) ([]string, error) {
		calls++
		if fail {
			return nil, errors.New("boom")
		}
		return []string{"alice"}, nil
	})
	clock := frozen(l.cache)

	v, err := l.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, v)
	_, err = l.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	*clock = clock.Add(2 * time.Minute)
	fail = true
	_, err = l.Get(context.Background())
	require.Error(t, err)
	require.Equal(t, 2, calls)

	fail = false
	_, err = l.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	l.Invalidate()
	_, err = l.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, calls)
}
