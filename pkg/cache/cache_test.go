package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// runCacheTests exercises the behaviour every backend shares.
func runCacheTests(t *testing.T, c Cache) {
	ctx := context.Background()

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "order:a", []byte(`{"sorted":["a"]}`), time.Hour); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		data, hit, err := c.Get(ctx, "order:a")
		if err != nil || !hit {
			t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
		}
		if string(data) != `{"sorted":["a"]}` {
			t.Errorf("Get data = %s", data)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		_, hit, err := c.Get(ctx, "never-set")
		if err != nil || hit {
			t.Errorf("Get(never-set) = hit %v, err %v; want miss", hit, err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "k", []byte("one"), 0)
		_ = c.Set(ctx, "k", []byte("two"), 0)
		data, _, _ := c.Get(ctx, "k")
		if string(data) != "two" {
			t.Errorf("Get after overwrite = %s, want two", data)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "gone", []byte("x"), 0)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "gone"); hit {
			t.Error("Get after Delete should miss")
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Errorf("Delete of missing key error: %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		cl, ok := c.(Clearer)
		if !ok {
			t.Skip("backend cannot clear")
		}
		_ = c.Set(ctx, "c1", []byte("1"), 0)
		_ = c.Set(ctx, "c2", []byte("2"), 0)
		if err := cl.Clear(ctx); err != nil {
			t.Fatalf("Clear error: %v", err)
		}
		for _, k := range []string{"c1", "c2"} {
			if _, hit, _ := c.Get(ctx, k); hit {
				t.Errorf("Get(%s) after Clear should miss", k)
			}
		}
	})
}

func TestFileCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	runCacheTests(t, c)

	if c.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", c.Dir(), dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache directory should survive Clear: %v", err)
	}
}

func TestFileCache_ExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}

	if err := os.MkdirAll(filepath.Dir(c.path("bad")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("bad"), []byte("{garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want silent miss", hit, err)
	}
	if _, err := os.Stat(c.path("bad")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	runCacheTests(t, c)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "a", []byte("a"), 0)
	_ = c.Set(ctx, "b", []byte("b"), 0)
	_, _, _ = c.Get(ctx, "a") // a is now most recent
	_ = c.Set(ctx, "c", []byte("c"), 0)

	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestMemoryCache_TTLAndIsolation(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	buf := []byte("value")
	_ = c.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'X'
	data, hit, _ := c.Get(ctx, "k")
	if !hit || string(data) != "value" {
		t.Errorf("Get = %s, %v; want stored copy", data, hit)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry past its TTL should miss")
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "test:")
	defer c.Close()

	runCacheTests(t, c)

	ctx := context.Background()
	_ = c.Set(ctx, "ttl", []byte("x"), time.Minute)
	if !mr.Exists("test:ttl") {
		t.Fatal("key should be stored under the prefix")
	}
	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "ttl"); hit {
		t.Error("entry past its TTL should miss")
	}
}

func TestRedisCache_ClearKeepsOtherPrefixes(t *testing.T) {
	mr := miniredis.RunT(t)
	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatal(err)
	}
	c, err := DialRedis(context.Background(), mr.Addr(), "")
	if err != nil {
		t.Fatalf("DialRedis error: %v", err)
	}
	defer c.Close()

	_ = c.Set(context.Background(), "k", []byte("v"), 0)
	if err := c.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("other:key") {
		t.Error("Clear removed a key outside the cache prefix")
	}
	if mr.Exists(DefaultRedisPrefix + "k") {
		t.Error("Clear left a cache key behind")
	}
}

func TestDialRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := DialRedis(ctx, "127.0.0.1:1", ""); err == nil {
		t.Error("DialRedis() to a closed port should fail")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := k.QueryKey("abc123", "order", "app")
	if !strings.HasPrefix(base, "query:order:abc123:") {
		t.Errorf("QueryKey unexpected: %s", base)
	}
	if base != k.QueryKey("abc123", "order", "app") {
		t.Error("QueryKey should be deterministic")
	}

	distinct := []string{
		k.QueryKey("def456", "order", "app"),
		k.QueryKey("abc123", "impact", "app"),
		k.QueryKey("abc123", "order", "lib"),
		k.QueryKey("abc123", "order"),
	}
	for _, other := range distinct {
		if other == base {
			t.Errorf("QueryKey collision: %s", other)
		}
	}

	if k.QueryKey("g", "q", "a", "bc") == k.QueryKey("g", "q", "ab", "c") {
		t.Error("argument boundaries must affect the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "ws:123:")
	key := scoped.QueryKey("abc", "cycles")
	if !strings.HasPrefix(key, "ws:123:query:cycles:abc:") {
		t.Errorf("ScopedKeyer QueryKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.QueryKey("g", "order"); !strings.HasPrefix(key, "prefix:query:order:g:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
