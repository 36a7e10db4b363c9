package infra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache[string](1 * time.Second)

	c.Set("key1", "value1")
	v, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v != "value1" {
		t.Fatalf("got %v, want value1", v)
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache[int](1 * time.Second)
	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache[string](time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("key", "val")

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("key"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}

	c.Cleanup()
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed, got %d entries", c.Len())
	}
}

func TestCacheNoExpiry(t *testing.T) {
	c := NewCache[string](0)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("key", "val")

	now = now.Add(24 * 365 * time.Hour)
	if _, ok := c.Get("key"); !ok {
		t.Fatal("expected entry without TTL to survive")
	}
}

func TestCacheInvalidateFlush(t *testing.T) {
	c := NewCache[int](time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected cache miss after invalidation")
	}
	c.Flush()
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected all entries flushed")
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c := NewCache[int](time.Hour)
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(context.Background(), "k", load)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Errorf("GetOrLoad: got %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls: got %d, want 1", calls)
	}

	boom := errors.New("boom")
	_, err := c.GetOrLoad(context.Background(), "bad", func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Errorf("GetOrLoad error: got %v, want %v", err, boom)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors must not be cached")
	}
}

func TestRateLimiterWait(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	ctx := context.Background()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("third wait: got %v, want deadline exceeded", err)
	}
}

func TestRateLimiterTryAcquire(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if !rl.TryAcquire() {
		t.Fatal("expected first token")
	}
	if rl.TryAcquire() {
		t.Fatal("expected bucket to be empty")
	}
}

func TestPerSecond(t *testing.T) {
	rl := PerSecond(5)
	if rl.maxTokens != 5 {
		t.Errorf("maxTokens: got %d, want 5", rl.maxTokens)
	}
	if rl.refillRate != 200*time.Millisecond {
		t.Errorf("refillRate: got %v, want 200ms", rl.refillRate)
	}
}
