package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const attemptPrefix = "swipe_attempt:"

// IdempotencyRepo caches the serialized outcome of a swipe attempt so a
// client retrying after a timeout replays the prior result instead of
// charging quota twice.
type IdempotencyRepo struct {
	client *goredis.Client
}

func NewIdempotencyRepo(client *goredis.Client) *IdempotencyRepo {
	return &IdempotencyRepo{client: client}
}

// Lookup returns the cached outcome for an attempt key, if any.
func (r *IdempotencyRepo) Lookup(ctx context.Context, attemptID string) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	if attemptID == "" {
		return nil, false, fmt.Errorf("attempt id is required")
	}

	payload, err := r.client.Get(ctx, attemptKey(attemptID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get attempt outcome: %w", err)
	}

	return payload, true, nil
}

// Remember stores the outcome for an attempt key. First writer wins, so a
// concurrent duplicate cannot overwrite the recorded outcome.
func (r *IdempotencyRepo) Remember(ctx context.Context, attemptID string, payload []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if attemptID == "" || len(payload) == 0 {
		return fmt.Errorf("invalid attempt outcome payload")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	if err := r.client.SetNX(ctx, attemptKey(attemptID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("remember attempt outcome: %w", err)
	}

	return nil
}

func attemptKey(attemptID string) string {
	return attemptPrefix + attemptID
}
