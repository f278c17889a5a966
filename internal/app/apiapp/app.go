package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gomeet-app/backend/internal/config"
	s3infra "github.com/gomeet-app/backend/internal/infra/s3"
	"github.com/gomeet-app/backend/internal/jobs/cleanup"
	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
	redrepo "github.com/gomeet-app/backend/internal/repo/redis"
	authsvc "github.com/gomeet-app/backend/internal/services/auth"
	compatsvc "github.com/gomeet-app/backend/internal/services/compat"
	entsvc "github.com/gomeet-app/backend/internal/services/entitlements"
	feedsvc "github.com/gomeet-app/backend/internal/services/feed"
	matchessvc "github.com/gomeet-app/backend/internal/services/matches"
	notifysvc "github.com/gomeet-app/backend/internal/services/notify"
	quotasvc "github.com/gomeet-app/backend/internal/services/quota"
	ratesvc "github.com/gomeet-app/backend/internal/services/rate"
	swipesvc "github.com/gomeet-app/backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
	cleanupJob *cleanup.Job
	jobsCancel context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	attemptRepo := redrepo.NewIdempotencyRepo(redisClient)
	notifyRepo := redrepo.NewNotifyRepo(redisClient)

	quotaRepo := pgrepo.NewQuotaRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	subscriptionRepo := pgrepo.NewSubscriptionRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)

	quotaService := quotasvc.NewService(quotaRepo)
	entitlementService := entsvc.NewService(subscriptionRepo, quotaService, pool)

	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Swipes.BurstRatePerMinute,
		cfg.Swipes.BurstRatePer10Sec,
	)
	dispatcher := notifysvc.NewDispatcher(notifyRepo, cfg.Notify.MatchChannel, cfg.Swipes.NotifyTimeout, log)

	swipeService := swipesvc.NewService(
		pool,
		swipeRepo,
		matchRepo,
		profileRepo,
		quotaService,
		entitlementService,
		swipesvc.Config{
			AttemptTTL:          cfg.Swipes.AttemptTTL,
			UnlimitedBurstGuard: cfg.Swipes.UnlimitedBurstGuard,
		},
	)
	swipeService.AttachAttemptCache(attemptRepo)
	swipeService.AttachBurstLimiter(rateLimiter)
	swipeService.AttachDispatcher(dispatcher)

	matchesService := matchessvc.NewService(pool, matchRepo)

	feedService := feedsvc.NewService(profileRepo, swipeRepo, compatsvc.NewScorer(), feedsvc.Config{
		PageSize:      cfg.Feed.PageSize,
		MaxPageSize:   cfg.Feed.MaxPageSize,
		PhotoURLTTL:   cfg.Feed.PhotoURLTTL,
		CandidatePool: cfg.Feed.CandidatePool,
	}, log)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
		feedService.AttachPhotoSigner(s3infra.NewSigner(s3Client, cfg.S3.Bucket))
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:         jwtManager,
		QuotaService:       quotaService,
		EntitlementService: entitlementService,
		SwipeService:       swipeService,
		MatchService:       matchesService,
		FeedService:        feedService,
		Logger:             log,
		Config:             cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
		cleanupJob: cleanup.New(quotaRepo, cfg.Cleanup.CounterRetention, log),
	}, nil
}

func (a *App) Run() error {
	jobsCtx, cancel := context.WithCancel(context.Background())
	a.jobsCancel = cancel
	go a.cleanupJob.RunPeriodically(jobsCtx, a.cfg.Cleanup.Interval)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.jobsCancel != nil {
		a.jobsCancel()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
