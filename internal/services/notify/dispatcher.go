package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// MatchCreatedEvent is emitted exactly once per created match, by the
// request that actually inserted the row.
type MatchCreatedEvent struct {
	MatchID   int64     `json:"match_id"`
	UserA     int64     `json:"user_a"`
	UserB     int64     `json:"user_b"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispatcher publishes domain events without blocking the request that
// produced them. Publish failures are logged and dropped; match creation
// never rolls back because a notification could not go out.
type Dispatcher struct {
	publisher Publisher
	channel   string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewDispatcher(publisher Publisher, channel string, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if strings.TrimSpace(channel) == "" {
		channel = "events:match_created"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		publisher: publisher,
		channel:   channel,
		timeout:   timeout,
		logger:    logger,
	}
}

// MatchCreated dispatches the event on a detached goroutine with its own
// deadline, so the swipe response does not wait on redis.
func (d *Dispatcher) MatchCreated(event MatchCreatedEvent) {
	if d.publisher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.publish(ctx, event); err != nil {
			d.logger.Warn("dispatch match created event",
				zap.Int64("match_id", event.MatchID),
				zap.Error(err))
		}
	}()
}

// MatchCreatedSync publishes on the caller's context. Used by tests and
// by callers that already run detached.
func (d *Dispatcher) MatchCreatedSync(ctx context.Context, event MatchCreatedEvent) error {
	if d.publisher == nil {
		return fmt.Errorf("notify publisher is nil")
	}
	return d.publish(ctx, event)
}

func (d *Dispatcher) publish(ctx context.Context, event MatchCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal match created event: %w", err)
	}
	return d.publisher.Publish(ctx, d.channel, payload)
}
