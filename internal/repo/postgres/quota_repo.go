package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gomeet-app/backend/internal/domain/enums"
)

var ErrUsageLimitReached = errors.New("usage limit reached")

// QuotaRepo owns the usage_counters table. Counters are keyed by
// (user_id, action, window_key); a new window produces a new key, so
// rollover never requires an in-place reset, and the conditional
// ON CONFLICT update makes check-and-increment a single atomic statement.
type QuotaRepo struct {
	pool *pgxpool.Pool
}

func NewQuotaRepo(pool *pgxpool.Pool) *QuotaRepo {
	return &QuotaRepo{pool: pool}
}

// ConsumeWithLimit atomically increments the counter for the given window
// unless the increment would exceed limit. Returns the used count after
// the increment, or ErrUsageLimitReached without mutating the row.
// Two concurrent calls against one remaining slot admit exactly one.
func (r *QuotaRepo) ConsumeWithLimit(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, windowKey string, limit int) (int, error) {
	if userID <= 0 || strings.TrimSpace(windowKey) == "" || limit <= 0 {
		return 0, fmt.Errorf("invalid quota consume payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var used int
	err := tx.QueryRow(ctx, `
INSERT INTO usage_counters (
	user_id,
	action,
	window_key,
	used,
	updated_at
) VALUES ($1, $2, $3, 1, NOW())
ON CONFLICT (user_id, action, window_key) DO UPDATE SET
	used = usage_counters.used + 1,
	updated_at = NOW()
WHERE usage_counters.used < $4
RETURNING used
`, userID, string(action), windowKey, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUsageLimitReached
		}
		return 0, fmt.Errorf("consume usage quota with limit: %w", err)
	}

	return used, nil
}

// GetUsed reads the counter without consuming. A missing row means the
// window has not been touched yet.
func (r *QuotaRepo) GetUsed(ctx context.Context, userID int64, action enums.ActionKind, windowKey string) (int, error) {
	if userID <= 0 || strings.TrimSpace(windowKey) == "" {
		return 0, fmt.Errorf("invalid quota lookup payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var used int
	err := r.pool.QueryRow(ctx, `
SELECT used
FROM usage_counters
WHERE user_id = $1 AND action = $2 AND window_key = $3
LIMIT 1
`, userID, string(action), windowKey).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get usage quota: %w", err)
	}

	return used, nil
}

// Refund returns one reservation to the window. Used counts never go
// negative; refunding an untouched window is a no-op.
func (r *QuotaRepo) Refund(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, windowKey string) error {
	if userID <= 0 || strings.TrimSpace(windowKey) == "" {
		return fmt.Errorf("invalid quota refund payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
UPDATE usage_counters
SET
	used = GREATEST(used - 1, 0),
	updated_at = NOW()
WHERE user_id = $1 AND action = $2 AND window_key = $3
`, userID, string(action), windowKey); err != nil {
		return fmt.Errorf("refund usage quota: %w", err)
	}

	return nil
}

// DeleteClosedBefore purges counters whose window key sorts before the
// cutoff for its own kind. Keys are discriminated by length: daily keys
// are "2006-01-02" (10 chars), monthly "2006-01" (7 chars). A monthly key
// must never be compared against a daily cutoff: "2026-08" sorts before
// "2026-08-24" while the August window is still open.
func (r *QuotaRepo) DeleteClosedBefore(ctx context.Context, dayCutoffKey, monthCutoffKey string, olderThan time.Time) (int64, error) {
	if strings.TrimSpace(dayCutoffKey) == "" || strings.TrimSpace(monthCutoffKey) == "" {
		return 0, fmt.Errorf("cutoff keys are required")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM usage_counters
WHERE updated_at < $3
	AND (
		(length(window_key) = 10 AND window_key < $1)
		OR (length(window_key) = 7 AND window_key < $2)
	)
`, dayCutoffKey, monthCutoffKey, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete closed usage counters: %w", err)
	}

	return result.RowsAffected(), nil
}
