package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"bgloop/background"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Hour), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "public/subway_surfers.mp4"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	want := 10*time.Second + 33*time.Millisecond
	if err := cache.Set(ctx, "public/subway_surfers.mp4", want); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, err := cache.Get(ctx, "public/subway_surfers.mp4")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != want {
		t.Fatalf("Get = %v; want %v", got, want)
	}

	key := cache.key("public/subway_surfers.mp4")
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("TTL = %v; want 1h", ttl)
	}

	mr.FastForward(time.Hour + time.Second)
	if _, err := cache.Get(ctx, "public/subway_surfers.mp4"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired entry should miss, got %v", err)
	}
}

func TestRedisCacheCorruptValue(t *testing.T) {
	cache, mr := newTestRedisCache(t)

	if err := mr.Set(cache.key("clip.mp4"), "ten seconds"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := cache.Get(context.Background(), "clip.mp4")
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected a decode error, got %v", err)
	}
}

func TestRedisCacheServerDown(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "clip.mp4")
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}

func TestCachedProberWithRedis(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	prober := &fakeProber{infos: map[background.SourceAsset]*Info{
		"clip.mp4": {Duration: 7 * time.Second},
	}}
	cp := NewCachedProber(prober, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := cp.Duration(ctx, "clip.mp4")
		if err != nil {
			t.Fatalf("Duration error: %v", err)
		}
		if d != 7*time.Second {
			t.Fatalf("Duration = %v", d)
		}
	}
	if prober.calls != 1 {
		t.Fatalf("probed %d times; want 1", prober.calls)
	}
}
