package services

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit with v, got %q ok=%v", got, ok)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCacheKeyStableAndCaseInsensitive(t *testing.T) {
	a := cacheKey("quote", "finnhub", "TSLA")
	b := cacheKey("quote", "finnhub", "tsla")
	if a != b {
		t.Fatalf("expected case-insensitive keys, got %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "quote:v1:") {
		t.Fatalf("unexpected key shape %q", a)
	}
	if c := cacheKey("news", "finnhub", "TSLA"); c == a {
		t.Fatal("different capabilities must not collide")
	}
}

func TestCacheGetJSONNilCacheIsMiss(t *testing.T) {
	var out int
	if cacheGetJSON(context.Background(), nil, "k", &out) {
		t.Fatal("nil cache must read as a miss")
	}
	// And writes are a no-op rather than a panic.
	cacheSetJSON(context.Background(), nil, "k", 42, time.Minute)
}
