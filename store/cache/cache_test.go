package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, v)

	c.Delete("k")
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL("short", "v", 10*time.Millisecond)
	v, ok := c.Get("short")
	require.True(t, ok)
	require.Equal(t, "v", v)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("short")
	require.False(t, ok, "expired entries drop lazily on Get")
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL("forever", "v", 0)
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("forever")
	require.True(t, ok)
}

func TestCacheLRUEviction(t *testing.T) {
	evicted := []string{}
	c := New(Config{
		MaxItems:   2,
		OnEviction: func(key string, _ any) { evicted = append(evicted, key) },
	})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the least recently used.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)
	require.Equal(t, []string{"b"}, evicted)
	require.Equal(t, 2, c.Len())

	_, ok = c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("b")
	require.False(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestCacheOverwriteKeepsSingleEntry(t *testing.T) {
	c := New(Config{MaxItems: 2})
	defer c.Close()

	c.Set("k", 1)
	c.Set("k", 2)
	require.Equal(t, 1, c.Len())

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestCacheJanitorSweepsExpired(t *testing.T) {
	c := New(Config{
		DefaultTTL:      5 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer c.Close()

	c.Set("k", 1)
	require.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}
