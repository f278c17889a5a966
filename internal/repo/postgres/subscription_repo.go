package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gomeet-app/backend/internal/domain/model"
)

// SubscriptionRepo owns the subscriptions table backing tier resolution
// and boost state. Purchases are written by the payment surface, which is
// an external collaborator of this core.
type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// GetByUserID returns the user's subscription row. A missing row is not an
// error: the caller resolves it to the registered tier.
func (r *SubscriptionRepo) GetByUserID(ctx context.Context, userID int64) (model.Subscription, bool, error) {
	if userID <= 0 {
		return model.Subscription{}, false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Subscription{}, false, fmt.Errorf("postgres pool is nil")
	}

	var sub model.Subscription
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	COALESCE(tier, ''),
	expires_at,
	boost_until,
	updated_at
FROM subscriptions
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&sub.UserID,
		&sub.Tier,
		&sub.ExpiresAt,
		&sub.BoostUntil,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscription{}, false, nil
		}
		return model.Subscription{}, false, fmt.Errorf("get subscription: %w", err)
	}

	return sub, true, nil
}

// SetBoostUntil records an activated boost window.
func (r *SubscriptionRepo) SetBoostUntil(ctx context.Context, tx pgx.Tx, userID int64, until time.Time) error {
	if userID <= 0 || until.IsZero() {
		return fmt.Errorf("invalid boost payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO subscriptions (
	user_id,
	tier,
	boost_until,
	updated_at
) VALUES ($1, 'registered', $2, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	boost_until = EXCLUDED.boost_until,
	updated_at = NOW()
`, userID, until.UTC()); err != nil {
		return fmt.Errorf("set boost until: %w", err)
	}

	return nil
}
