package probe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"bgloop/background"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no duration is cached for an asset
var ErrCacheMiss = errors.New("duration not cached")

// DurationCache stores decoded source durations keyed by asset
type DurationCache interface {
	Get(ctx context.Context, asset background.SourceAsset) (time.Duration, error)
	Set(ctx context.Context, asset background.SourceAsset, d time.Duration) error
}

// RedisCache is a DurationCache backed by plain Redis string keys
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. Keys live under bgloop:duration:.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "bgloop:duration:",
		ttl:    ttl,
	}
}

func (c *RedisCache) key(asset background.SourceAsset) string {
	sum := sha256.Sum256([]byte(asset))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached duration or ErrCacheMiss
func (c *RedisCache) Get(ctx context.Context, asset background.SourceAsset) (time.Duration, error) {
	v, err := c.client.Get(ctx, c.key(asset)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	ns, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt cached duration %q: %w", v, err)
	}
	return time.Duration(ns), nil
}

// Set stores the duration in nanoseconds with the cache TTL
func (c *RedisCache) Set(ctx context.Context, asset background.SourceAsset, d time.Duration) error {
	if err := c.client.Set(ctx, c.key(asset), strconv.FormatInt(int64(d), 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// CachedProber answers duration lookups from the cache and probes on a miss
type CachedProber struct {
	prober Prober
	cache  DurationCache
}

// NewCachedProber combines a prober with a cache. A nil cache disables caching.
func NewCachedProber(prober Prober, cache DurationCache) *CachedProber {
	return &CachedProber{prober: prober, cache: cache}
}

// Duration returns the decoded length of the asset.
// Cache failures are logged and never fail the lookup.
func (p *CachedProber) Duration(ctx context.Context, asset background.SourceAsset) (time.Duration, error) {
	if p.cache != nil {
		d, err := p.cache.Get(ctx, asset)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("⚠️  Duration cache lookup failed for %s: %v", asset, err)
		}
	}

	info, err := p.prober.Probe(asset)
	if err != nil {
		return 0, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, asset, info.Duration); err != nil {
			log.Printf("⚠️  Failed to cache duration for %s: %v", asset, err)
		}
	}
	return info.Duration, nil
}
