package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
	"github.com/gomeet-app/backend/internal/domain/rules"
	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
	quotasvc "github.com/gomeet-app/backend/internal/services/quota"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrQuotaExceeded = errors.New("quota exceeded")
)

type SubscriptionStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Subscription, bool, error)
	SetBoostUntil(ctx context.Context, tx pgx.Tx, userID int64, until time.Time) error
}

type QuotaReserver interface {
	Reserve(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, tier enums.Tier) (quotasvc.Reservation, error)
}

type Service struct {
	subs  SubscriptionStore
	quota QuotaReserver
	pool  *pgxpool.Pool
	now   func() time.Time
}

// Snapshot reports the resolved tier and active boost for one user.
type Snapshot struct {
	UserID     int64
	Tier       enums.Tier
	TierSource string
	ExpiresAt  *time.Time
	BoostUntil *time.Time
	Policy     rules.TierPolicy
}

type BoostResult struct {
	BoostUntil     time.Time
	BoostsLeft     int
	Unlimited      bool
	MonthlyResetAt time.Time
}

func NewService(subs SubscriptionStore, quota QuotaReserver, pool *pgxpool.Pool) *Service {
	return &Service{
		subs:  subs,
		quota: quota,
		pool:  pool,
		now:   time.Now,
	}
}

// ResolveTier maps a user to an effective tier. Missing subscriptions,
// expired subscriptions and unrecognized tier labels all resolve to the
// registered tier so a broken row never grants paid entitlements.
func (s *Service) ResolveTier(ctx context.Context, userID int64) (enums.Tier, error) {
	snap, err := s.Get(ctx, userID)
	if err != nil {
		return enums.TierRegistered, err
	}
	return snap.Tier, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if s.subs == nil {
		return Snapshot{}, fmt.Errorf("subscription store is nil")
	}

	now := s.now().UTC()

	sub, found, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		UserID:     userID,
		Tier:       enums.TierRegistered,
		TierSource: "default",
	}

	if found {
		snap.ExpiresAt = sub.ExpiresAt
		if sub.BoostUntil != nil && sub.BoostUntil.After(now) {
			snap.BoostUntil = sub.BoostUntil
		}

		expired := sub.ExpiresAt != nil && !sub.ExpiresAt.After(now)
		if !expired {
			snap.Tier = enums.ParseTier(sub.Tier)
			snap.TierSource = "subscription"
		} else {
			snap.TierSource = "expired"
		}
	}

	snap.Policy = rules.PolicyFor(snap.Tier)
	return snap, nil
}

// ActivateBoost consumes one monthly boost slot and opens a boost window
// of the tier's duration. Reservation and the boost_until write commit in
// one transaction so a failed write releases the slot.
func (s *Service) ActivateBoost(ctx context.Context, userID int64) (BoostResult, error) {
	if userID <= 0 {
		return BoostResult{}, ErrValidation
	}
	if s.subs == nil || s.quota == nil || s.pool == nil {
		return BoostResult{}, fmt.Errorf("entitlements dependencies are not configured")
	}

	snap, err := s.Get(ctx, userID)
	if err != nil {
		return BoostResult{}, err
	}
	if snap.Policy.BoostDuration <= 0 || snap.Policy.MonthlyBoostLimit == 0 {
		return BoostResult{}, ErrQuotaExceeded
	}

	now := s.now().UTC()
	until := now.Add(snap.Policy.BoostDuration)

	var result BoostResult
	err = pgrepo.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		reservation, err := s.quota.Reserve(ctx, tx, userID, enums.ActionBoost, snap.Tier)
		if err != nil {
			if errors.Is(err, quotasvc.ErrQuotaExceeded) {
				return ErrQuotaExceeded
			}
			return err
		}

		if err := s.subs.SetBoostUntil(ctx, tx, userID, until); err != nil {
			return err
		}

		result = BoostResult{
			BoostUntil:     until,
			BoostsLeft:     reservation.Remaining,
			Unlimited:      reservation.Unlimited,
			MonthlyResetAt: reservation.ResetAt,
		}
		return nil
	})
	if err != nil {
		return BoostResult{}, err
	}

	return result, nil
}
