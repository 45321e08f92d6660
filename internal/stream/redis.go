package stream

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
	ctx = context.Background()
)

// InitRedis initializes the Redis client. Redis is optional; when it is not
// configured, publishing is skipped and fanout stays in-process.
func InitRedis(addr string, password string, db int) error {
	opt := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}

	rdb = redis.NewClient(opt)

	// Test connection
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		rdb = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return nil
}

// GetRedisClient returns the Redis client instance, nil when not configured.
func GetRedisClient() *redis.Client {
	return rdb
}

// GetContext returns the default context
func GetContext() context.Context {
	return ctx
}

func streamKey(roomID string) string {
	return fmt.Sprintf("room:%s:events", roomID)
}

// PublishEvent publishes a room event to the Redis Stream so other instances
// can forward it to their connected spectators.
func PublishEvent(roomID string, event *Event) error {
	if rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	eventData, err := MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Add to stream with MAXLEN to bound history
	_, err = rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(roomID),
		Values: map[string]interface{}{
			"data": eventData,
		},
		MaxLen: 10000,
		Approx: true,
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
