package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper suppresses replayed webhook deliveries. Callers check before
// handling and mark only after handling succeeded, so a retry of a failed
// delivery is processed again instead of being swallowed.
type Deduper interface {
	// AlreadyProcessed reports whether the message id was handled before.
	AlreadyProcessed(ctx context.Context, messageID string) (bool, error)
	// MarkProcessed records the message id as handled.
	MarkProcessed(ctx context.Context, messageID string) error
}

// RedisDeduper tracks processed Twilio message SIDs in Redis so that
// provider retries do not drive the conversation twice.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper with the given retention window.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if client == nil {
		panic("messaging: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// AlreadyProcessed implements Deduper.
func (d *RedisDeduper) AlreadyProcessed(ctx context.Context, messageID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupeKey(messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("messaging: check webhook id: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed implements Deduper.
func (d *RedisDeduper) MarkProcessed(ctx context.Context, messageID string) error {
	if err := d.client.Set(ctx, dedupeKey(messageID), 1, d.ttl).Err(); err != nil {
		return fmt.Errorf("messaging: record webhook id: %w", err)
	}
	return nil
}

func dedupeKey(messageID string) string {
	return "webhook:sid:" + messageID
}
