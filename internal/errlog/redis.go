package errlog

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisTTL expires the transient buffer with the browsing session it
// belongs to.
const DefaultRedisTTL = 24 * time.Hour

// RedisCell stores the encoded buffer in a single Redis string key with a
// TTL. It backs the transient tier: less durable than the database, more
// durable than process memory.
type RedisCell struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCell creates a cell over the given Redis client and key.
func NewRedisCell(client *redis.Client, key string, ttl time.Duration) *RedisCell {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisCell{client: client, key: key, ttl: ttl}
}

// Get returns the stored value; a missing key is an empty value.
func (c *RedisCell) Get(ctx context.Context) (string, error) {
	value, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set replaces the stored value and refreshes the TTL.
func (c *RedisCell) Set(ctx context.Context, value string) error {
	return c.client.Set(ctx, c.key, value, c.ttl).Err()
}
