// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tablehunt/internal/game"
)

// MatchQueueName is the Redis list the historian consumer drains.
const MatchQueueName = "tablehunt_matches"

// Connect builds a Redis client and verifies it with a ping.
func Connect(addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// PublishMatchRecord pushes a finished-match record onto the queue. A quick
// network send is the only cost to the caller.
func PublishMatchRecord(ctx context.Context, rdb *redis.Client, rec game.MatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling match record: %w", err)
	}
	if err := rdb.RPush(ctx, MatchQueueName, data).Err(); err != nil {
		return fmt.Errorf("pushing to Redis list %q: %w", MatchQueueName, err)
	}
	return nil
}
