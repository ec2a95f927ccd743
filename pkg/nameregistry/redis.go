package nameregistry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const takenNamesKeyPrefix = "formation:taken_names:"

// Redis is a registry backed by a Redis set per state, maintained by the
// registry-sync process that mirrors state filing records.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed registry from a connection URL.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Redis{client: redis.NewClient(opts)}, nil
}

// Available checks the state's taken-name set.
func (r *Redis) Available(ctx context.Context, state, companyName string) (bool, error) {
	taken, err := r.client.SIsMember(ctx, takenNamesKeyPrefix+state, Normalize(companyName)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query name registry: %w", err)
	}

	return !taken, nil
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
