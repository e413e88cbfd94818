package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "processed:"

// Redis records processed message ids as TTL-bounded keys, so markers
// survive process restarts and the set cannot grow without bound.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. ttl bounds how long a marker is kept.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Seen reports whether a marker exists for the id.
func (r *Redis) Seen(ctx context.Context, messageID string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+messageID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark writes the marker with the configured TTL.
func (r *Redis) Mark(ctx context.Context, messageID string) error {
	return r.client.Set(ctx, keyPrefix+messageID, "1", r.ttl).Err()
}
