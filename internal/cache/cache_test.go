package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"clusterdash/internal/config"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 0)

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss")
	}

	value := []byte("svg")
	if err := c.Set(ctx, "k", value); err != nil {
		t.Fatal(err)
	}

	value[0] = 'X'

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "svg" {
		t.Fatalf("Get = %q, %v, %v; want stored copy", got, ok, err)
	}

	got[0] = 'Y'
	if again, _, _ := c.Get(ctx, "k"); string(again) != "svg" {
		t.Error("returned value must be a copy")
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)

	_ = c.Set(ctx, "a", []byte("1"))
	_ = c.Set(ctx, "b", []byte("2"))
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("3"))

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Error("b should have been evicted")
	}

	for _, k := range []string{"a", "c"} {
		if _, ok, _ := c.Get(ctx, k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 50*time.Millisecond)

	_ = c.Set(ctx, "k", []byte("v"))

	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("entry should still be live")
	}

	time.Sleep(120 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
}

func TestMemoryCache_Close(t *testing.T) {
	c := NewMemoryCache(0, 0)
	_ = c.Set(context.Background(), "k", []byte("v"))

	if err := c.Close(); err != nil || c.Len() != 0 {
		t.Errorf("Close = %v, Len = %d", err, c.Len())
	}
}

// failingCache errors on every call.
type failingCache struct{ sets int }

var errBroken = errors.New("broken")

func (f *failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBroken
}
func (f *failingCache) Set(context.Context, string, []byte) error {
	f.sets++
	return errBroken
}
func (f *failingCache) Close() error { return nil }

func TestMemo_Do(t *testing.T) {
	ctx := context.Background()
	memo := NewMemo(NewMemoryCache(10, 0), nil)

	calls := 0
	fn := func() ([]byte, error) {
		calls++
		return []byte("rendered"), nil
	}

	for range 3 {
		got, err := memo.Do(ctx, "key", fn)
		if err != nil || string(got) != "rendered" {
			t.Fatalf("Do = %q, %v", got, err)
		}
	}

	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestMemo_Do_PropagatesError(t *testing.T) {
	memo := NewMemo(NewMemoryCache(10, 0), nil)
	wantErr := errors.New("render failed")

	if _, err := memo.Do(context.Background(), "key", func() ([]byte, error) { return nil, wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("Do error = %v, want %v", err, wantErr)
	}

	if _, ok, _ := memo.cache.Get(context.Background(), "key"); ok {
		t.Error("failed computations must not be cached")
	}
}

func TestMemo_Do_BrokenCacheFallsBack(t *testing.T) {
	broken := &failingCache{}
	memo := NewMemo(broken, nil)

	got, err := memo.Do(context.Background(), "key", func() ([]byte, error) { return []byte("v"), nil })
	if err != nil || string(got) != "v" {
		t.Fatalf("Do = %q, %v; want computed value", got, err)
	}

	if broken.sets != 1 {
		t.Errorf("Set called %d times, want 1", broken.sets)
	}
}

func TestKey(t *testing.T) {
	got := Key("abc123", "treemap", "week 1", "a:b")
	want := "clusterdash:abc123:treemap:week+1:a%3Ab"

	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		wantErr bool
	}{
		{"memory", config.CacheConfig{Backend: config.CacheMemory, MaxEntries: 4}, false},
		{"none", config.CacheConfig{Backend: config.CacheNone}, false},
		{"unknown", config.CacheConfig{Backend: "memcached"}, true},
		{"unreachable redis", config.CacheConfig{Backend: config.CacheRedis, RedisAddr: "127.0.0.1:1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				if c != nil {
					t.Errorf("New returned a non-nil cache %T alongside the error", c)
				}

				return
			}

			if err := c.Close(); err != nil {
				t.Errorf("Close failed: %v", err)
			}
		})
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("CLUSTERDASH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLUSTERDASH_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()

	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisCache failed: %v", err)
	}
	defer c.Close()

	key := Key("test", t.Name(), time.Now().String())

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get before Set = %v, %v; want miss", ok, err)
	}

	if err := c.Set(ctx, key, []byte("svg")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(got) != "svg" {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}
}
