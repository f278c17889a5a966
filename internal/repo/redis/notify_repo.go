package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// NotifyRepo fans match events out over redis pub/sub. Delivery workers
// (push, email) subscribe on the other side; this core never waits for
// them.
type NotifyRepo struct {
	client *goredis.Client
}

func NewNotifyRepo(client *goredis.Client) *NotifyRepo {
	return &NotifyRepo{client: client}
}

func (r *NotifyRepo) Publish(ctx context.Context, channel string, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if channel == "" || len(payload) == 0 {
		return fmt.Errorf("invalid publish payload")
	}

	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}
