package swipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
	"github.com/gomeet-app/backend/internal/domain/rules"
	"github.com/gomeet-app/backend/internal/pkg/validate"
	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
	notifysvc "github.com/gomeet-app/backend/internal/services/notify"
	quotasvc "github.com/gomeet-app/backend/internal/services/quota"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDependenciesNil    = errors.New("swipes dependencies are not configured")
	ErrTargetNotAvailable = errors.New("target profile is not available")
	ErrRewindNotAllowed   = errors.New("rewind is not included in the tier")
	ErrNothingToRewind    = errors.New("nothing to rewind")
)

// TooFastError reports a short-window burst block with the seconds the
// client should wait before retrying.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type Status string

const (
	StatusOK              Status = "ok"
	StatusAlreadyRecorded Status = "already_recorded"
	StatusSelfSwipe       Status = "self_swipe_rejected"
	StatusQuotaExceeded   Status = "quota_exceeded"
)

// Result is the terminal outcome of one swipe attempt. It is what gets
// cached under the attempt id, so a replayed retry returns exactly this.
type Result struct {
	Status       Status         `json:"status"`
	Decision     enums.Decision `json:"decision"`
	TargetUserID int64          `json:"target_user_id"`
	MatchCreated bool           `json:"match_created"`
	MatchID      int64          `json:"match_id,omitempty"`
	Remaining    int            `json:"remaining"`
	Unlimited    bool           `json:"unlimited"`
	ResetAt      time.Time      `json:"reset_at"`
	Replayed     bool           `json:"-"`
}

type RewindResult struct {
	TargetUserID   int64
	Decision       enums.Decision
	MatchRemoved   bool
	QuotaRefunded  bool
	RewoundSwipeID int64
}

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, decision enums.Decision, now time.Time) (pgrepo.SwipeRecord, error)
	GetLastActiveByActor(ctx context.Context, tx pgx.Tx, actorUserID int64) (pgrepo.SwipeRecord, error)
	Tombstone(ctx context.Context, tx pgx.Tx, swipeID int64, now time.Time) error
}

type MatchStore interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchOutcome, error)
	Deactivate(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
}

type QuotaManager interface {
	Reserve(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, tier enums.Tier) (quotasvc.Reservation, error)
	Refund(ctx context.Context, tx pgx.Tx, userID int64, action enums.ActionKind, tier enums.Tier) error
}

type TierResolver interface {
	ResolveTier(ctx context.Context, userID int64) (enums.Tier, error)
}

type AttemptStore interface {
	Lookup(ctx context.Context, attemptID string) ([]byte, bool, error)
	Remember(ctx context.Context, attemptID string, payload []byte, ttl time.Duration) error
}

type BurstLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

type EventDispatcher interface {
	MatchCreated(event notifysvc.MatchCreatedEvent)
}

type Config struct {
	AttemptTTL          time.Duration
	UnlimitedBurstGuard bool
}

type Service struct {
	pool       *pgxpool.Pool
	swipeStore SwipeStore
	matchStore MatchStore
	profiles   ProfileStore
	quota      QuotaManager
	tiers      TierResolver
	attempts   AttemptStore
	limiter    BurstLimiter
	dispatcher EventDispatcher
	cfg        Config
	now        func() time.Time
	runTx      func(context.Context, *pgxpool.Pool, func(context.Context, pgx.Tx) error) error
}

func NewService(
	pool *pgxpool.Pool,
	swipeStore SwipeStore,
	matchStore MatchStore,
	profiles ProfileStore,
	quota QuotaManager,
	tiers TierResolver,
	cfg Config,
) *Service {
	if cfg.AttemptTTL <= 0 {
		cfg.AttemptTTL = 24 * time.Hour
	}

	return &Service{
		pool:       pool,
		swipeStore: swipeStore,
		matchStore: matchStore,
		profiles:   profiles,
		quota:      quota,
		tiers:      tiers,
		cfg:        cfg,
		now:        time.Now,
		runTx:      pgrepo.WithTx,
	}
}

// AttachAttemptCache enables idempotent retries. Without it every attempt
// is processed fresh.
func (s *Service) AttachAttemptCache(attempts AttemptStore) {
	s.attempts = attempts
}

// AttachBurstLimiter enables the anti-burst guard for unlimited tiers.
func (s *Service) AttachBurstLimiter(limiter BurstLimiter) {
	s.limiter = limiter
}

// AttachDispatcher enables match event fan-out.
func (s *Service) AttachDispatcher(dispatcher EventDispatcher) {
	s.dispatcher = dispatcher
}

// Swipe records one directional decision. Quota reservation and the
// ledger insert commit in one transaction: a rejected insert rolls back
// the reservation, so a duplicate swipe never burns quota and a quota
// denial never leaks a ledger row. Match evaluation runs in a second
// transaction, strictly after the swipe commit: a concurrent reciprocal
// like is only guaranteed visible to the later committer, so evaluating
// inside the insert transaction could miss it on both sides.
func (s *Service) Swipe(ctx context.Context, actorUserID, targetUserID int64, decisionRaw, attemptID string) (Result, error) {
	if s.swipeStore == nil || s.matchStore == nil || s.quota == nil || s.tiers == nil {
		return Result{}, ErrDependenciesNil
	}
	if actorUserID <= 0 || targetUserID <= 0 {
		return Result{}, fmt.Errorf("invalid user ids: %w", ErrValidation)
	}
	if actorUserID == targetUserID {
		return Result{Status: StatusSelfSwipe, TargetUserID: targetUserID}, nil
	}

	decision, err := enums.ParseDecision(decisionRaw)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", decisionRaw, ErrValidation)
	}

	attemptID = strings.TrimSpace(attemptID)
	if !validate.AttemptID(attemptID) {
		return Result{}, fmt.Errorf("malformed attempt id: %w", ErrValidation)
	}

	if cached, ok, err := s.lookupAttempt(ctx, attemptID); err == nil && ok {
		cached.Replayed = true
		return cached, nil
	}

	if s.profiles != nil {
		target, err := s.profiles.GetByUserID(ctx, targetUserID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrProfileNotFound) {
				return Result{}, ErrTargetNotAvailable
			}
			return Result{}, err
		}
		if !target.Approved {
			return Result{}, ErrTargetNotAvailable
		}
	}

	tier, err := s.tiers.ResolveTier(ctx, actorUserID)
	if err != nil {
		return Result{}, err
	}

	metered := decision.Metered()
	action := decision.ActionKind()
	limit := rules.PolicyFor(tier).LimitFor(action)

	if metered && limit == rules.Unlimited && s.cfg.UnlimitedBurstGuard && s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowSwipe(ctx, actorUserID)
		if err != nil {
			return Result{}, err
		}
		if !allowed {
			return Result{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	result := Result{
		Status:       StatusOK,
		Decision:     decision,
		TargetUserID: targetUserID,
		ResetAt:      rules.ResetAtFor(action, now),
	}

	txErr := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		if metered {
			reservation, err := s.quota.Reserve(ctx, tx, actorUserID, action, tier)
			if err != nil {
				return err
			}
			result.Remaining = reservation.Remaining
			result.Unlimited = reservation.Unlimited
			result.ResetAt = reservation.ResetAt
		}

		_, err := s.swipeStore.Create(ctx, tx, actorUserID, targetUserID, decision, now)
		return err
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, pgrepo.ErrSwipeAlreadyRecorded):
			result = Result{
				Status:       StatusAlreadyRecorded,
				Decision:     decision,
				TargetUserID: targetUserID,
				ResetAt:      rules.ResetAtFor(action, now),
			}
		case errors.Is(txErr, quotasvc.ErrQuotaExceeded):
			result = Result{
				Status:       StatusQuotaExceeded,
				Decision:     decision,
				TargetUserID: targetUserID,
				ResetAt:      rules.ResetAtFor(action, now),
			}
		default:
			return Result{}, txErr
		}
	}

	// A duplicate is evaluated too: if the first attempt committed its
	// swipe but died before evaluation, the retry completes the match.
	if decision.Positive() && result.Status != StatusQuotaExceeded {
		var outcome pgrepo.MatchOutcome
		evalErr := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
			var err error
			outcome, err = s.matchStore.CreateIfMutualLike(ctx, tx, actorUserID, targetUserID)
			return err
		})
		if evalErr != nil {
			return Result{}, evalErr
		}
		result.MatchCreated = outcome.Matched
		result.MatchID = outcome.MatchID
		if outcome.CreatedNow && s.dispatcher != nil {
			s.dispatcher.MatchCreated(notifysvc.MatchCreatedEvent{
				MatchID:   outcome.MatchID,
				UserA:     actorUserID,
				UserB:     targetUserID,
				CreatedAt: now,
			})
		}
	}

	s.rememberAttempt(ctx, attemptID, result)
	return result, nil
}

// Rewind tombstones the actor's most recent active swipe. Refund and
// match removal commit together with the tombstone.
func (s *Service) Rewind(ctx context.Context, actorUserID int64) (RewindResult, error) {
	if s.swipeStore == nil || s.matchStore == nil || s.quota == nil || s.tiers == nil {
		return RewindResult{}, ErrDependenciesNil
	}
	if actorUserID <= 0 {
		return RewindResult{}, fmt.Errorf("invalid actor user id: %w", ErrValidation)
	}

	tier, err := s.tiers.ResolveTier(ctx, actorUserID)
	if err != nil {
		return RewindResult{}, err
	}
	if !rules.PolicyFor(tier).Rewind {
		return RewindResult{}, ErrRewindNotAllowed
	}

	now := s.now().UTC()

	var result RewindResult
	err = s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		last, err := s.swipeStore.GetLastActiveByActor(ctx, tx, actorUserID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSwipeNotFound) {
				return ErrNothingToRewind
			}
			return err
		}

		if err := s.swipeStore.Tombstone(ctx, tx, last.ID, now); err != nil {
			return err
		}

		result = RewindResult{
			TargetUserID:   last.TargetUserID,
			Decision:       last.Decision,
			RewoundSwipeID: last.ID,
		}

		if last.Decision.Metered() {
			action := last.Decision.ActionKind()
			limit := rules.PolicyFor(tier).LimitFor(action)
			// Only refund windows that actually metered the swipe, and
			// only when the swipe was charged to the still-open window.
			if limit > 0 && rules.WindowKeyFor(action, last.CreatedAt) == rules.WindowKeyFor(action, now) {
				if err := s.quota.Refund(ctx, tx, actorUserID, action, tier); err != nil {
					return err
				}
				result.QuotaRefunded = true
			}
		}

		if last.Decision.Positive() {
			removed, err := s.matchStore.Deactivate(ctx, tx, actorUserID, last.TargetUserID)
			if err != nil {
				return err
			}
			result.MatchRemoved = removed
		}

		return nil
	})
	if err != nil {
		return RewindResult{}, err
	}

	return result, nil
}

func (s *Service) lookupAttempt(ctx context.Context, attemptID string) (Result, bool, error) {
	if s.attempts == nil || attemptID == "" {
		return Result{}, false, nil
	}

	payload, found, err := s.attempts.Lookup(ctx, attemptID)
	if err != nil || !found {
		return Result{}, false, err
	}

	var cached Result
	if err := json.Unmarshal(payload, &cached); err != nil {
		return Result{}, false, nil
	}
	return cached, true, nil
}

func (s *Service) rememberAttempt(ctx context.Context, attemptID string, result Result) {
	if s.attempts == nil || attemptID == "" {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	// Best effort: a failed cache write only costs the retry replay.
	_ = s.attempts.Remember(ctx, attemptID, payload, s.cfg.AttemptTTL)
}
