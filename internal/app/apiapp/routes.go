package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gomeet-app/backend/internal/config"
	authsvc "github.com/gomeet-app/backend/internal/services/auth"
	entsvc "github.com/gomeet-app/backend/internal/services/entitlements"
	feedsvc "github.com/gomeet-app/backend/internal/services/feed"
	matchessvc "github.com/gomeet-app/backend/internal/services/matches"
	quotasvc "github.com/gomeet-app/backend/internal/services/quota"
	swipesvc "github.com/gomeet-app/backend/internal/services/swipes"
	"github.com/gomeet-app/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager         *authsvc.JWTManager
	QuotaService       *quotasvc.Service
	EntitlementService *entsvc.Service
	SwipeService       *swipesvc.Service
	MatchService       *matchessvc.Service
	FeedService        *feedsvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	quotaHandler := handlers.NewQuotaHandler(deps.QuotaService, deps.EntitlementService)
	boostHandler := handlers.NewBoostHandler(deps.EntitlementService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	rewindHandler := handlers.NewRewindHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Get("/quota", quotaHandler.Get)
		r.With(authMW).Post("/boost", boostHandler.Activate)
		r.With(authMW).Post("/swipes", swipeHandler.Handle)
		r.With(authMW).Post("/rewind", rewindHandler.Handle)
		r.With(authMW).Get("/feed", feedHandler.Get)
		r.With(authMW).Get("/matches", matchesHandler.List)
		r.With(authMW).Delete("/matches/{targetID}", matchesHandler.Unmatch)
	})
}
