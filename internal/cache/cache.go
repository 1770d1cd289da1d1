// Package cache is a best-effort redis snapshot cache for truck read
// projections. Every operation degrades to a no-op when no redis client is
// configured, so the engine runs fine without one.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/foodtruckhq/truck-tracker/internal/models"
)

const keyPrefix = "trucks:"

// TruckCache caches truck snapshots as JSON with a TTL.
type TruckCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// New returns a cache over the given client, which may be nil to disable
// caching entirely.
func New(client *goredis.Client, ttl time.Duration) *TruckCache {
	return &TruckCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for a truck, or nil on miss or when the
// cache is disabled.
func (c *TruckCache) Get(ctx context.Context, truckID string) (*models.Truck, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, truckKey(truckID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get truck %s: %w", truckID, err)
	}
	var truck models.Truck
	if err := json.Unmarshal(data, &truck); err != nil {
		return nil, fmt.Errorf("cache decode truck %s: %w", truckID, err)
	}
	return &truck, nil
}

// Set stores a truck snapshot under the cache TTL.
func (c *TruckCache) Set(ctx context.Context, truckID string, truck *models.Truck) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(truck)
	if err != nil {
		return fmt.Errorf("cache encode truck %s: %w", truckID, err)
	}
	return c.client.Set(ctx, truckKey(truckID), data, c.ttl).Err()
}

// Invalidate drops one truck's snapshot.
func (c *TruckCache) Invalidate(ctx context.Context, truckID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, truckKey(truckID)).Err()
}

// InvalidateAll drops every truck snapshot, scanning in batches.
func (c *TruckCache) InvalidateAll(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 200 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

func truckKey(id string) string {
	return keyPrefix + id
}
