package entitlements

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
)

type stubSubscriptionStore struct {
	sub   model.Subscription
	found bool
	err   error
}

func (s *stubSubscriptionStore) GetByUserID(_ context.Context, _ int64) (model.Subscription, bool, error) {
	return s.sub, s.found, s.err
}

func (s *stubSubscriptionStore) SetBoostUntil(_ context.Context, _ pgx.Tx, _ int64, _ time.Time) error {
	return nil
}

func newFixedClockService(store SubscriptionStore, at time.Time) *Service {
	svc := NewService(store, nil, nil)
	svc.now = func() time.Time { return at }
	return svc
}

func timePtr(t time.Time) *time.Time { return &t }

func TestResolveTierMissingRowIsRegistered(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newFixedClockService(&stubSubscriptionStore{found: false}, at)

	tier, err := svc.ResolveTier(context.Background(), 7)
	if err != nil {
		t.Fatalf("resolve tier: %v", err)
	}
	if tier != enums.TierRegistered {
		t.Fatalf("expected registered tier, got %s", tier)
	}
}

func TestResolveTierExpiredSubscriptionFallsBack(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &stubSubscriptionStore{
		found: true,
		sub: model.Subscription{
			UserID:    7,
			Tier:      "gold",
			ExpiresAt: timePtr(at.Add(-time.Hour)),
		},
	}
	svc := newFixedClockService(store, at)

	snap, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap.Tier != enums.TierRegistered {
		t.Fatalf("expected registered tier for expired subscription, got %s", snap.Tier)
	}
	if snap.TierSource != "expired" {
		t.Fatalf("expected expired tier source, got %s", snap.TierSource)
	}
}

func TestResolveTierUnknownLabelFailsClosed(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &stubSubscriptionStore{
		found: true,
		sub: model.Subscription{
			UserID:    7,
			Tier:      "diamond",
			ExpiresAt: timePtr(at.Add(time.Hour)),
		},
	}
	svc := newFixedClockService(store, at)

	tier, err := svc.ResolveTier(context.Background(), 7)
	if err != nil {
		t.Fatalf("resolve tier: %v", err)
	}
	if tier != enums.TierRegistered {
		t.Fatalf("unknown tier label must resolve to registered, got %s", tier)
	}
}

func TestGetActiveSubscriptionAndBoost(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	boostUntil := at.Add(30 * time.Minute)
	store := &stubSubscriptionStore{
		found: true,
		sub: model.Subscription{
			UserID:     7,
			Tier:       "silver",
			ExpiresAt:  timePtr(at.Add(24 * time.Hour)),
			BoostUntil: timePtr(boostUntil),
		},
	}
	svc := newFixedClockService(store, at)

	snap, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap.Tier != enums.TierSilver {
		t.Fatalf("expected silver tier, got %s", snap.Tier)
	}
	if snap.BoostUntil == nil || !snap.BoostUntil.Equal(boostUntil) {
		t.Fatalf("expected active boost until %v, got %v", boostUntil, snap.BoostUntil)
	}
	if snap.Policy.DailyLikeLimit != 50 {
		t.Fatalf("expected silver policy attached, got %+v", snap.Policy)
	}
}

func TestGetFiltersElapsedBoost(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &stubSubscriptionStore{
		found: true,
		sub: model.Subscription{
			UserID:     7,
			Tier:       "gold",
			ExpiresAt:  timePtr(at.Add(24 * time.Hour)),
			BoostUntil: timePtr(at.Add(-time.Minute)),
		},
	}
	svc := newFixedClockService(store, at)

	snap, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap.BoostUntil != nil {
		t.Fatalf("elapsed boost must not be reported, got %v", snap.BoostUntil)
	}
}
