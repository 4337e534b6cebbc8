// Package redis adds a cache-aside decorator over the URL repository for the
// hot redirect path.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shortlink/internal/domain"
	"shortlink/internal/metrics"
	"shortlink/internal/repository"
)

// Cache stores URL records in Redis keyed by short code.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with the record TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(shortCode string) string {
	return fmt.Sprintf("url:%s", shortCode)
}

// GetURL returns the cached record for a code, or (nil, nil) on a miss.
func (c *Cache) GetURL(ctx context.Context, shortCode string) (*domain.URL, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, cacheKey(shortCode)).Result()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	metrics.RecordCacheHit()

	var url domain.URL
	if err := json.Unmarshal([]byte(data), &url); err != nil {
		return nil, fmt.Errorf("unmarshal cached url: %w", err)
	}
	return &url, nil
}

// SetURL stores a record with the configured TTL.
func (c *Cache) SetURL(ctx context.Context, url *domain.URL) error {
	data, err := json.Marshal(url)
	if err != nil {
		return fmt.Errorf("marshal url: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(url.ShortCode), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteURL drops a record from the cache.
func (c *Cache) DeleteURL(ctx context.Context, shortCode string) error {
	if err := c.client.Del(ctx, cacheKey(shortCode)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InitRedis creates and pings a Redis client.
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// CachedURLRepository is a cache-aside repository.URLRepository. Cache
// failures degrade to the underlying store; they never fail the request.
// Cached ClickCount values can lag the store by up to the TTL; the stats
// path reads the click log directly and is unaffected.
type CachedURLRepository struct {
	next  repository.URLRepository
	cache *Cache
}

// NewCachedURLRepository decorates next with the cache.
func NewCachedURLRepository(next repository.URLRepository, cache *Cache) *CachedURLRepository {
	return &CachedURLRepository{next: next, cache: cache}
}

func (r *CachedURLRepository) Create(ctx context.Context, url *domain.URL) error {
	if err := r.next.Create(ctx, url); err != nil {
		return err
	}
	_ = r.cache.SetURL(ctx, url)
	return nil
}

func (r *CachedURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	if cached, err := r.cache.GetURL(ctx, shortCode); err == nil && cached != nil {
		return cached, nil
	}

	url, err := r.next.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	_ = r.cache.SetURL(ctx, url)
	return url, nil
}

func (r *CachedURLRepository) GetByID(ctx context.Context, id string) (*domain.URL, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedURLRepository) Delete(ctx context.Context, id string) error {
	// Resolve the code first so the cache entry can be invalidated.
	url, err := r.next.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.DeleteURL(ctx, url.ShortCode)
	return nil
}

func (r *CachedURLRepository) List(ctx context.Context) ([]*domain.URL, error) {
	return r.next.List(ctx)
}

var _ repository.URLRepository = (*CachedURLRepository)(nil)
