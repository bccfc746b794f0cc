package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "resources:list:v1:page=1", []byte(`[1]`))

	if v, ok, _ := c.Get(ctx, "resources:list:v1:page=1"); !ok || string(v) != "[1]" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "resources:list:v1:page=1"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read")
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	_ = c.Set(ctx, "resources:list:v1:page=1", []byte("a"))
	_ = c.Set(ctx, "resources:list:v1:page=2", []byte("b"))
	_ = c.Set(ctx, "other:key", []byte("c"))

	if err := c.DeletePrefix(ctx, "resources:list:"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}

	if c.Len() != 1 {
		t.Fatalf("expected only the unrelated key to survive, got %d", c.Len())
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	type page struct {
		Total int `json:"total"`
	}

	if err := SetJSON(ctx, c, "k", page{Total: 7}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got page
	ok, err := GetJSON(ctx, c, "k", &got)
	if err != nil || !ok || got.Total != 7 {
		t.Fatalf("got %+v ok=%v err=%v", got, ok, err)
	}

	_ = c.Set(ctx, "broken", []byte("{"))
	if ok, err := GetJSON(ctx, c, "broken", &got); ok || err != nil {
		t.Fatalf("undecodable value should be a miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis test")
	}

	ctx := context.Background()
	r := NewRedis(RedisConfig{Addr: addr, TTL: time.Minute})
	defer r.Close()

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	_ = r.Set(ctx, "campushub:test:a", []byte("1"))
	_ = r.Set(ctx, "campushub:test:b", []byte("2"))

	if v, ok, err := r.Get(ctx, "campushub:test:a"); err != nil || !ok || string(v) != "1" {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}

	if err := r.DeletePrefix(ctx, "campushub:test:"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}

	if _, ok, _ := r.Get(ctx, "campushub:test:b"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestRedisHitCountsWithinWindow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis test")
	}

	ctx := context.Background()
	r := NewRedis(RedisConfig{Addr: addr})
	defer r.Close()

	key := "campushub:test:rl:" + time.Now().Format(time.RFC3339Nano)
	defer func() { _ = r.DeletePrefix(ctx, key) }()

	for want := 1; want <= 3; want++ {
		n, resetIn, err := r.Hit(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("hit: %v", err)
		}
		if n != want {
			t.Fatalf("count = %d, want %d", n, want)
		}
		if resetIn <= 0 || resetIn > time.Minute {
			t.Fatalf("resetIn = %v", resetIn)
		}
	}
}
