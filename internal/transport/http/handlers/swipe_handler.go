package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/gomeet-app/backend/internal/services/auth"
	swipesvc "github.com/gomeet-app/backend/internal/services/swipes"
	"github.com/gomeet-app/backend/internal/transport/http/dto"
	httperrors "github.com/gomeet-app/backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || strings.TrimSpace(req.Decision) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and decision are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, req.Decision, req.AttemptID)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrTargetNotAvailable):
			httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
				Code:    "TARGET_NOT_AVAILABLE",
				Message: "target profile does not exist or is not approved",
			})
		default:
			if tf, ok := swipesvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: tf.RetryAfter(),
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	status := http.StatusOK
	switch result.Status {
	case swipesvc.StatusQuotaExceeded:
		status = http.StatusTooManyRequests
	case swipesvc.StatusSelfSwipe:
		status = http.StatusBadRequest
	}

	httperrors.Write(w, status, dto.SwipeResponse{
		Status:       string(result.Status),
		Decision:     string(result.Decision),
		MatchCreated: result.MatchCreated,
		MatchID:      result.MatchID,
		Remaining:    result.Remaining,
		Unlimited:    result.Unlimited,
		ResetAt:      result.ResetAt,
		Replayed:     result.Replayed,
	})
}

type RewindHandler struct {
	service *swipesvc.Service
}

func NewRewindHandler(service *swipesvc.Service) *RewindHandler {
	return &RewindHandler{service: service}
}

func (h *RewindHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	result, err := h.service.Rewind(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrRewindNotAllowed):
			httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
				Code:    "REWIND_NOT_ALLOWED",
				Message: "rewind is not included in the current tier",
			})
		case errors.Is(err, swipesvc.ErrNothingToRewind):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "NOTHING_TO_REWIND",
				Message: "no active swipe to rewind",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to rewind swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RewindResponse{
		TargetID:      result.TargetUserID,
		Decision:      string(result.Decision),
		MatchRemoved:  result.MatchRemoved,
		QuotaRefunded: result.QuotaRefunded,
	})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
