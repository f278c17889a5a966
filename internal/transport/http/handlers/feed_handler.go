package handlers

import (
	"errors"
	"net/http"
	"strconv"

	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
	authsvc "github.com/gomeet-app/backend/internal/services/auth"
	feedsvc "github.com/gomeet-app/backend/internal/services/feed"
	"github.com/gomeet-app/backend/internal/transport/http/dto"
	httperrors "github.com/gomeet-app/backend/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	cards, err := h.service.Build(r.Context(), identity.UserID, limit)
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrProfileNotFound):
			httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
				Code:    "PROFILE_NOT_FOUND",
				Message: "viewer profile does not exist",
			})
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to build feed")
		}
		return
	}

	items := make([]dto.FeedCard, 0, len(cards))
	for _, card := range cards {
		items = append(items, dto.FeedCard{
			UserID:      card.UserID,
			DisplayName: card.DisplayName,
			Age:         card.Age,
			City:        card.City,
			Bio:         card.Bio,
			Interests:   card.Interests,
			PhotoURL:    card.PhotoURL,
			Compatibility: dto.Compatibility{
				Score:   card.Compatibility.Score,
				Level:   string(card.Compatibility.Level),
				Reasons: card.Compatibility.Reasons,
			},
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{Items: items})
}
