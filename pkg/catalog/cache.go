package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no catalog snapshot is present in Redis.
var ErrCacheMiss = errors.New("catalog snapshot not in cache")

// snapshotKey is the Redis key holding the serialized catalog.
const snapshotKey = "ssb:catalog"

// Cache stores catalog snapshots in Redis with a TTL so that validation
// works against reasonably fresh inventory without hitting vCenter on every
// request.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a cache backed by the Redis instance at addr.
func NewCache(addr, password string, db int, ttl time.Duration) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Get returns the cached snapshot, or ErrCacheMiss when the key is absent
// or expired.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("corrupt catalog snapshot: %w", err)
	}
	return &cat, nil
}

// Put stores a snapshot with the configured TTL.
func (c *Cache) Put(ctx context.Context, cat *Catalog) error {
	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store catalog snapshot: %w", err)
	}
	return nil
}

// Ping reports whether the Redis backend is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Repair drops the snapshot key so the next read repopulates it. Used when
// a snapshot is left behind that no longer unmarshals.
func (c *Cache) Repair(ctx context.Context) error {
	if err := c.rdb.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("failed to drop catalog snapshot: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
