// Package cache provides the redis backed user cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/redis/go-redis/v9"
)

// UserCache caches user records in Redis as JSON under a per-id key.
type UserCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string

	// Statistics
	hits   int64
	misses int64
	errors int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// NewUserCache creates a user cache. A zero ttl keeps entries until they are invalidated.
func NewUserCache(client redis.UniversalClient, ttl time.Duration) *UserCache {
	return &UserCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: "usersapi:user:",
	}
}

func (c *UserCache) key(id string) string {
	return c.keyPrefix + id
}

// Get returns the cached user and whether it was found.
func (c *UserCache) Get(ctx context.Context, id string) (*models.User, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			c.miss()
			return nil, false, nil
		}
		c.fail()
		return nil, false, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.fail()
		return nil, false, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	atomic.AddInt64(&c.hits, 1)
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &user, true, nil
}

// Set stores the user.
func (c *UserCache) Set(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := c.client.Set(ctx, c.key(user.ID.String()), data, c.ttl).Err(); err != nil {
		c.fail()
		return fmt.Errorf("failed to cache user: %w", err)
	}
	return nil
}

// Delete invalidates the cached user.
func (c *UserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.fail()
		return fmt.Errorf("failed to invalidate cached user: %w", err)
	}
	return nil
}

// Stats returns the current counters.
func (c *UserCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Errors: atomic.LoadInt64(&c.errors),
	}
}

func (c *UserCache) miss() {
	atomic.AddInt64(&c.misses, 1)
	metrics.CacheLookups.WithLabelValues("miss").Inc()
}

func (c *UserCache) fail() {
	atomic.AddInt64(&c.errors, 1)
	metrics.CacheLookups.WithLabelValues("error").Inc()
}
