package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"skincare-recommender/internal/infrastructure/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(maxSize int, ttl time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newManager(maxSize, ttl, clock.Now), clock
}

func TestManagerGetSet(t *testing.T) {
	m, _ := newTestManager(10, time.Minute)
	ctx := context.Background()

	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := m.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want v1", got)
	}

	// 回傳值為複本
	got[0] = 'x'
	again, _ := m.Get(ctx, "k")
	if string(again) != "v1" {
		t.Errorf("stored value mutated: %q", again)
	}

	stats := m.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestManagerExpiry(t *testing.T) {
	m, clock := newTestManager(10, time.Minute)
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("v"))
	clock.t = clock.t.Add(30 * time.Second)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("entry should still be live: %v", err)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
	if stats := m.GetStats(); stats.Size != 0 || stats.Evictions != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m, clock := newTestManager(2, time.Hour)
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"))
	clock.t = clock.t.Add(time.Second)
	_ = m.Set(ctx, "b", []byte("2"))
	_, _ = m.Get(ctx, "a")

	clock.t = clock.t.Add(time.Second)
	if err := m.Set(ctx, "c", []byte("3")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := m.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("least used entry should be evicted, got %v", err)
	}
	for _, k := range []string{"a", "c"} {
		if _, err := m.Get(ctx, k); err != nil {
			t.Errorf("%s should survive eviction: %v", k, err)
		}
	}
}

func TestManagerCleanupPrefersExpired(t *testing.T) {
	m, clock := newTestManager(2, time.Minute)
	ctx := context.Background()

	_ = m.Set(ctx, "old", []byte("1"))
	clock.t = clock.t.Add(50 * time.Second)
	_ = m.Set(ctx, "fresh", []byte("2"))
	clock.t = clock.t.Add(20 * time.Second)

	if err := m.Set(ctx, "new", []byte("3")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry should remain: %v", err)
	}
	if _, err := m.Get(ctx, "old"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry should be gone, got %v", err)
	}
}

func TestManagerOverwriteAtCapacity(t *testing.T) {
	m, _ := newTestManager(1, time.Hour)
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"))
	if err := m.Set(ctx, "a", []byte("2")); err != nil {
		t.Fatalf("overwrite should not evict: %v", err)
	}
	got, _ := m.Get(ctx, "a")
	if string(got) != "2" {
		t.Errorf("Get = %q, want 2", got)
	}
}

func TestManagerClose(t *testing.T) {
	m := NewManager(config.CacheConfig{MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Millisecond})
	ctx := context.Background()
	_ = m.Set(ctx, "k", []byte("v"))

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("closed cache should be empty, got %v", err)
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(config.CacheConfig{Enabled: false})
	if err != nil || s != nil {
		t.Fatalf("disabled cache should return nil store, got %v, %v", s, err)
	}

	s, err = NewStore(config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 1, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Manager); !ok {
		t.Errorf("expected *Manager, got %T", s)
	}

	if _, err := NewStore(config.CacheConfig{Enabled: true, Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	s, err := NewRedisStore(config.CacheConfig{TTL: time.Minute, Redis: config.RedisConfig{Addr: addr}})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := s.Set(ctx, key, []byte(`[[1,0]]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil || string(got) != `[[1,0]]` {
		t.Fatalf("Get = %q, %v", got, err)
	}
}
