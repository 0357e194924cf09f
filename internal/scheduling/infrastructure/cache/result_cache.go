// Package cache provides a Redis-backed memo of produced solutions, keyed
// by the same config digest the audit log records. A recruiting
// coordinator re-running solve on an unchanged config (common once a day
// is "locked in" and just needs re-printing) gets the prior solution back
// without re-invoking CP-SAT.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridianhire/panelsched/internal/scheduling/domain"
)

// DefaultTTL is how long a cached solution survives before a re-solve is
// forced. Long enough to cover a single interview day's worth of re-prints,
// short enough that a stale cache never outlives the config it was keyed on.
const DefaultTTL = 6 * time.Hour

// ResultCache memoizes domain.Solution values by config digest.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache wraps an already-connected redis.Client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

func namespacedKey(digest string) string {
	return fmt.Sprintf("panelsched:solve:%s", digest)
}

// Get returns the cached Solution for digest, or (nil, false) on a miss.
func (c *ResultCache) Get(ctx context.Context, digest string) (*domain.Solution, bool, error) {
	raw, err := c.client.Get(ctx, namespacedKey(digest)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}

	var sol domain.Solution
	if err := json.Unmarshal(raw, &sol); err != nil {
		return nil, false, fmt.Errorf("cache: decode cached solution: %w", err)
	}
	return &sol, true, nil
}

// Put stores sol under digest, overwriting any prior entry.
func (c *ResultCache) Put(ctx context.Context, digest string, sol *domain.Solution) error {
	raw, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("cache: encode solution: %w", err)
	}
	if err := c.client.Set(ctx, namespacedKey(digest), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Invalidate removes a cached entry, so the next lookup of that digest
// misses and the solver runs again. No caller in this module uses it.
func (c *ResultCache) Invalidate(ctx context.Context, digest string) error {
	if err := c.client.Del(ctx, namespacedKey(digest)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}
