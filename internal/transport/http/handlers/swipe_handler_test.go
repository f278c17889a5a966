package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
	redrepo "github.com/gomeet-app/backend/internal/repo/redis"
	authsvc "github.com/gomeet-app/backend/internal/services/auth"
	quotasvc "github.com/gomeet-app/backend/internal/services/quota"
	ratesvc "github.com/gomeet-app/backend/internal/services/rate"
	swipesvc "github.com/gomeet-app/backend/internal/services/swipes"
)

type handlerSwipeStoreStub struct{}

func (handlerSwipeStoreStub) Create(_ context.Context, _ pgx.Tx, _, _ int64, _ enums.Decision, _ time.Time) (pgrepo.SwipeRecord, error) {
	return pgrepo.SwipeRecord{}, nil
}

func (handlerSwipeStoreStub) GetLastActiveByActor(_ context.Context, _ pgx.Tx, _ int64) (pgrepo.SwipeRecord, error) {
	return pgrepo.SwipeRecord{}, pgrepo.ErrSwipeNotFound
}

func (handlerSwipeStoreStub) Tombstone(_ context.Context, _ pgx.Tx, _ int64, _ time.Time) error {
	return nil
}

type handlerMatchStoreStub struct{}

func (handlerMatchStoreStub) CreateIfMutualLike(_ context.Context, _ pgx.Tx, _, _ int64) (pgrepo.MatchOutcome, error) {
	return pgrepo.MatchOutcome{}, nil
}

func (handlerMatchStoreStub) Deactivate(_ context.Context, _ pgx.Tx, _, _ int64) (bool, error) {
	return false, nil
}

type handlerProfileStoreStub struct{}

func (handlerProfileStoreStub) GetByUserID(_ context.Context, userID int64) (model.Profile, error) {
	return model.Profile{UserID: userID, Approved: true}, nil
}

type handlerQuotaStub struct{}

func (handlerQuotaStub) Reserve(_ context.Context, _ pgx.Tx, _ int64, _ enums.ActionKind, _ enums.Tier) (quotasvc.Reservation, error) {
	return quotasvc.Reservation{Allowed: true, Unlimited: true}, nil
}

func (handlerQuotaStub) Refund(_ context.Context, _ pgx.Tx, _ int64, _ enums.ActionKind, _ enums.Tier) error {
	return nil
}

type handlerTierStub struct {
	tier enums.Tier
}

func (s handlerTierStub) ResolveTier(_ context.Context, _ int64) (enums.Tier, error) {
	return s.tier, nil
}

func newBurstGuardedService(t *testing.T) (*swipesvc.Service, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	rateLimiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), 100, 2)

	svc := swipesvc.NewService(
		nil,
		handlerSwipeStoreStub{},
		handlerMatchStoreStub{},
		handlerProfileStoreStub{},
		handlerQuotaStub{},
		handlerTierStub{tier: enums.TierPlatinum},
		swipesvc.Config{UnlimitedBurstGuard: true},
	)
	svc.AttachBurstLimiter(rateLimiter)

	cleanup := func() {
		_ = redisClient.Close()
		mr.Close()
	}
	return svc, cleanup
}

func performSwipeRequest(t *testing.T, h *SwipeHandler, authorized bool, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/swipes", bytes.NewReader(body))
	if authorized {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: 7, Role: "user"}))
	}

	rr := httptest.NewRecorder()
	h.Handle(rr, req)
	return rr
}

func TestSwipeHandlerRequiresAuth(t *testing.T) {
	svc, cleanup := newBurstGuardedService(t)
	defer cleanup()

	h := NewSwipeHandler(svc)
	resp := performSwipeRequest(t, h, false, map[string]any{"target_id": 9, "decision": "LIKE"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusUnauthorized)
	}
}

func TestSwipeHandlerRejectsMissingFields(t *testing.T) {
	svc, cleanup := newBurstGuardedService(t)
	defer cleanup()

	h := NewSwipeHandler(svc)
	resp := performSwipeRequest(t, h, true, map[string]any{"target_id": 9})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestSwipeHandlerRejectsSelfSwipeAsClientError(t *testing.T) {
	svc, cleanup := newBurstGuardedService(t)
	defer cleanup()

	h := NewSwipeHandler(svc)
	// The authenticated identity is user 7; targeting yourself is a
	// client error, not a successful swipe.
	resp := performSwipeRequest(t, h, true, map[string]any{"target_id": 7, "decision": "LIKE"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusBadRequest)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "self_swipe_rejected" {
		t.Fatalf("unexpected status string: %q", payload.Status)
	}
}

func TestSwipeHandlerReturnsTooFastOnBurst(t *testing.T) {
	svc, cleanup := newBurstGuardedService(t)
	defer cleanup()

	h := NewSwipeHandler(svc)

	// The 10s burst window allows two swipes; the third must be blocked
	// before it ever reaches storage.
	body := func(target int64) map[string]any {
		return map[string]any{"target_id": target, "decision": "LIKE"}
	}
	_ = performSwipeRequest(t, h, true, body(1000))
	_ = performSwipeRequest(t, h, true, body(1001))

	resp := performSwipeRequest(t, h, true, body(1002))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status on third like: got %d want %d", resp.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_FAST" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "TOO_FAST")
	}
	if payload.RetryAfterSec <= 0 {
		t.Fatalf("expected positive retry_after_sec, got %d", payload.RetryAfterSec)
	}
}
