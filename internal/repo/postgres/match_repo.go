package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepo owns the matches table. The pair is normalized so that
// user_a_id < user_b_id; the unique constraint on that ordered pair is
// what serializes concurrent match creation across processes.
type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchOutcome struct {
	Matched    bool
	CreatedNow bool
	MatchID    int64
}

type ActiveMatchRecord struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	Age          int
	City         string
	CreatedAt    time.Time
}

// CreateIfMutualLike checks that both directions hold an active
// like/super-like and, if so, inserts the match for the normalized pair.
// Checking both sides matters on the retry path: the caller's stored
// swipe may be a pass or already tombstoned. When both sides race here,
// the ON CONFLICT DO NOTHING loser still gets Matched=true: the match
// exists regardless of who created the row. Only the creator gets
// CreatedNow, so the match event fires once.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchOutcome, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return MatchOutcome{}, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchOutcome{}, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes f
JOIN swipes r
	ON r.actor_user_id = f.target_user_id
	AND r.target_user_id = f.actor_user_id
WHERE f.actor_user_id = $1
	AND f.target_user_id = $2
	AND f.decision IN ('LIKE', 'SUPER_LIKE')
	AND r.decision IN ('LIKE', 'SUPER_LIKE')
	AND NOT EXISTS (
		SELECT 1
		FROM swipe_tombstones t
		WHERE t.swipe_id = f.id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM swipe_tombstones t
		WHERE t.swipe_id = r.id
	)
LIMIT 1
`, userID, targetID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchOutcome{}, nil
		}
		return MatchOutcome{}, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	userA := userID
	userB := targetID
	if userA > userB {
		userA, userB = userB, userA
	}

	var matchID int64
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	status,
	created_at
) VALUES ($1, $2, 'active', NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchOutcome{Matched: true}, nil
		}
		return MatchOutcome{}, fmt.Errorf("create match: %w", err)
	}

	return MatchOutcome{Matched: true, CreatedNow: true, MatchID: matchID}, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]ActiveMatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	COALESCE(p.display_name, ''),
	COALESCE(p.age, 0),
	COALESCE(p.city, ''),
	m.created_at
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'active'
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]ActiveMatchRecord, 0, limit)
	for rows.Next() {
		var item ActiveMatchRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.DisplayName,
			&item.Age,
			&item.City,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}

// Deactivate flips the match to unmatched. The row is kept: the
// at-most-one-match-per-pair invariant survives unmatch-then-relike.
func (r *MatchRepo) Deactivate(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match deactivate payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA := userID
	userB := targetID
	if userA > userB {
		userA, userB = userB, userA
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET status = 'unmatched'
WHERE user_a_id = $1 AND user_b_id = $2 AND status = 'active'
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("deactivate match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
