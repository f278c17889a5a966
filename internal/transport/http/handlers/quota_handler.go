package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/gomeet-app/backend/internal/services/auth"
	entsvc "github.com/gomeet-app/backend/internal/services/entitlements"
	quotasvc "github.com/gomeet-app/backend/internal/services/quota"
	"github.com/gomeet-app/backend/internal/transport/http/dto"
	httperrors "github.com/gomeet-app/backend/internal/transport/http/errors"
)

type QuotaHandler struct {
	quota        *quotasvc.Service
	entitlements *entsvc.Service
}

func NewQuotaHandler(quota *quotasvc.Service, entitlements *entsvc.Service) *QuotaHandler {
	return &QuotaHandler{quota: quota, entitlements: entitlements}
}

// Get reports the caller's remaining quota per action without consuming
// anything.
func (h *QuotaHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.quota == nil || h.entitlements == nil {
		writeInternal(w, "QUOTA_SERVICE_UNAVAILABLE", "quota service is unavailable")
		return
	}

	tier, err := h.entitlements.ResolveTier(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to resolve tier")
		return
	}

	states, err := h.quota.Check(r.Context(), identity.UserID, tier)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to read quota state")
		return
	}

	actions := make([]dto.QuotaActionState, 0, len(states))
	for _, state := range states {
		actions = append(actions, dto.QuotaActionState{
			Action:    string(state.Action),
			Limit:     state.Limit,
			Used:      state.Used,
			Remaining: state.Remaining,
			Unlimited: state.Unlimited,
			ResetAt:   state.ResetAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.QuotaResponse{
		Tier:    tier.String(),
		Actions: actions,
	})
}

type BoostHandler struct {
	entitlements *entsvc.Service
}

func NewBoostHandler(entitlements *entsvc.Service) *BoostHandler {
	return &BoostHandler{entitlements: entitlements}
}

func (h *BoostHandler) Activate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.entitlements == nil {
		writeInternal(w, "BOOST_SERVICE_UNAVAILABLE", "boost service is unavailable")
		return
	}

	result, err := h.entitlements.ActivateBoost(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, entsvc.ErrQuotaExceeded):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.APIError{
				Code:    "BOOST_LIMIT_REACHED",
				Message: "no boosts left for the current month",
			})
		case errors.Is(err, entsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid boost request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to activate boost")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BoostResponse{
		BoostUntil:     result.BoostUntil,
		BoostsLeft:     result.BoostsLeft,
		Unlimited:      result.Unlimited,
		MonthlyResetAt: result.MonthlyResetAt,
	})
}
