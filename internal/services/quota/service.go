package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/rules"
	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrQuotaExceeded = errors.New("quota exceeded")
)

type CounterStore interface {
	ConsumeWithLimit(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, windowKey string, limit int) (int, error)
	GetUsed(ctx context.Context, userID int64, action enums.ActionKind, windowKey string) (int, error)
	Refund(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, windowKey string) error
}

// Reservation is the admission decision for one metered action.
// Remaining is rules.Unlimited when the tier has no cap on the action.
type Reservation struct {
	Allowed   bool
	Unlimited bool
	Remaining int
	ResetAt   time.Time
}

// ActionState is the read-only counterpart of Reservation, reported by
// the quota endpoint without consuming anything.
type ActionState struct {
	Action    enums.ActionKind
	Limit     int
	Used      int
	Remaining int
	Unlimited bool
	ResetAt   time.Time
}

type Service struct {
	store CounterStore
	now   func() time.Time
}

func NewService(store CounterStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Reserve consumes one unit of the action's window inside the caller's
// transaction. A zero limit is denied here without touching storage:
// the first insert for a window would otherwise record used=1 for an
// action the tier does not have at all.
func (s *Service) Reserve(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, tier enums.Tier) (Reservation, error) {
	if userID <= 0 {
		return Reservation{}, ErrValidation
	}
	if s.store == nil {
		return Reservation{}, fmt.Errorf("quota store is not configured")
	}

	now := s.now().UTC()
	limit := rules.PolicyFor(tier).LimitFor(action)
	resetAt := rules.ResetAtFor(action, now)

	if limit == rules.Unlimited {
		return Reservation{
			Allowed:   true,
			Unlimited: true,
			Remaining: rules.Unlimited,
			ResetAt:   resetAt,
		}, nil
	}
	if limit <= 0 {
		return Reservation{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
		}, ErrQuotaExceeded
	}

	used, err := s.store.ConsumeWithLimit(ctx, tx, userID, action, rules.WindowKeyFor(action, now), limit)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUsageLimitReached) {
			return Reservation{
				Allowed:   false,
				Remaining: 0,
				ResetAt:   resetAt,
			}, ErrQuotaExceeded
		}
		return Reservation{}, err
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return Reservation{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Refund returns one unit to the action's current window. Used after a
// rewind of a metered swipe.
func (s *Service) Refund(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, tier enums.Tier) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("quota store is not configured")
	}

	limit := rules.PolicyFor(tier).LimitFor(action)
	if limit == rules.Unlimited || limit <= 0 {
		return nil
	}

	now := s.now().UTC()
	return s.store.Refund(ctx, tx, userID, action, rules.WindowKeyFor(action, now))
}

// Check reports the current state of every metered action for the tier
// without consuming anything.
func (s *Service) Check(ctx context.Context, userID int64, tier enums.Tier) ([]ActionState, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("quota store is not configured")
	}

	now := s.now().UTC()
	policy := rules.PolicyFor(tier)
	actions := []enums.ActionKind{enums.ActionLike, enums.ActionSuperLike, enums.ActionBoost}

	states := make([]ActionState, 0, len(actions))
	for _, action := range actions {
		limit := policy.LimitFor(action)
		state := ActionState{
			Action:  action,
			Limit:   limit,
			ResetAt: rules.ResetAtFor(action, now),
		}

		if limit == rules.Unlimited {
			state.Unlimited = true
			state.Remaining = rules.Unlimited
			states = append(states, state)
			continue
		}

		used, err := s.store.GetUsed(ctx, userID, action, rules.WindowKeyFor(action, now))
		if err != nil {
			return nil, err
		}

		state.Used = used
		state.Remaining = limit - used
		if state.Remaining < 0 {
			state.Remaining = 0
		}
		states = append(states, state)
	}

	return states, nil
}
