package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gomeet-app/backend/internal/domain/enums"
)

var (
	ErrSwipeAlreadyRecorded = errors.New("swipe already recorded")
	ErrSwipeNotFound        = errors.New("swipe not found")
)

// SwipeRepo owns the append-only swipes table. A row is never updated or
// deleted; a rewind writes a compensating tombstone instead.
type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID           int64
	ActorUserID  int64
	TargetUserID int64
	Decision     enums.Decision
	CreatedAt    time.Time
}

// Create inserts the decision if the ordered pair has not decided yet.
// The UNIQUE(actor_user_id, target_user_id) constraint turns a repeat into
// ErrSwipeAlreadyRecorded instead of a second row or an overwrite.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, decision enums.Decision, now time.Time) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 || decision == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	var decisionRaw string
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	decision,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_user_id, target_user_id) DO NOTHING
RETURNING id, actor_user_id, target_user_id, decision, created_at
`, actorUserID, targetUserID, string(decision), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&decisionRaw,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeAlreadyRecorded
		}
		return SwipeRecord{}, fmt.Errorf("create swipe: %w", err)
	}

	rec.Decision = enums.Decision(decisionRaw)
	return rec, nil
}

// ReversePositive reports whether the reverse ordered pair holds an active
// like or super-like. Tombstoned swipes do not count.
func (r *SwipeRepo) ReversePositive(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid reverse lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes s
WHERE s.actor_user_id = $1
	AND s.target_user_id = $2
	AND s.decision IN ('LIKE', 'SUPER_LIKE')
	AND NOT EXISTS (
		SELECT 1
		FROM swipe_tombstones t
		WHERE t.swipe_id = s.id
	)
LIMIT 1
`, targetUserID, actorUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reverse swipe: %w", err)
	}

	return true, nil
}

// GetLastActiveByActor returns the actor's most recent untombstoned swipe.
func (r *SwipeRepo) GetLastActiveByActor(ctx context.Context, tx pgx.Tx, actorUserID int64) (SwipeRecord, error) {
	if actorUserID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid actor user id")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}

	var rec SwipeRecord
	var decisionRaw string
	err := tx.QueryRow(ctx, `
SELECT s.id, s.actor_user_id, s.target_user_id, s.decision, s.created_at
FROM swipes s
WHERE s.actor_user_id = $1
	AND NOT EXISTS (
		SELECT 1
		FROM swipe_tombstones t
		WHERE t.swipe_id = s.id
	)
ORDER BY s.created_at DESC, s.id DESC
LIMIT 1
`, actorUserID).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&decisionRaw,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get last active swipe: %w", err)
	}

	rec.Decision = enums.Decision(decisionRaw)
	return rec, nil
}

// Tombstone marks a swipe as rewound. History stays intact; the unique
// constraint on swipe_id makes a double rewind of the same row harmless.
func (r *SwipeRepo) Tombstone(ctx context.Context, tx pgx.Tx, swipeID int64, now time.Time) error {
	if swipeID <= 0 {
		return fmt.Errorf("invalid swipe id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO swipe_tombstones (
	swipe_id,
	created_at
) VALUES ($1, $2)
ON CONFLICT (swipe_id) DO NOTHING
`, swipeID, now.UTC()); err != nil {
		return fmt.Errorf("tombstone swipe: %w", err)
	}

	return nil
}

// ListDecidedTargets returns target ids the actor has already decided on,
// tombstoned rewinds excluded. Used to keep decided cards out of the feed.
func (r *SwipeRepo) ListDecidedTargets(ctx context.Context, actorUserID int64) (map[int64]struct{}, error) {
	if actorUserID <= 0 {
		return nil, fmt.Errorf("invalid actor user id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT s.target_user_id
FROM swipes s
WHERE s.actor_user_id = $1
	AND NOT EXISTS (
		SELECT 1
		FROM swipe_tombstones t
		WHERE t.swipe_id = s.id
	)
`, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("list decided targets: %w", err)
	}
	defer rows.Close()

	decided := make(map[int64]struct{})
	for rows.Next() {
		var targetID int64
		if err := rows.Scan(&targetID); err != nil {
			return nil, fmt.Errorf("scan decided target: %w", err)
		}
		decided[targetID] = struct{}{}
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate decided targets: %w", rows.Err())
	}

	return decided, nil
}
