package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gomeet-app/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	ListCandidates(ctx context.Context, viewerID int64, limit int) ([]model.Profile, error)
}

type DecidedStore interface {
	ListDecidedTargets(ctx context.Context, actorUserID int64) (map[int64]struct{}, error)
}

type Scorer interface {
	Score(viewer, candidate model.Profile) model.CompatibilityResult
}

type PhotoSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PageSize      int
	MaxPageSize   int
	PhotoURLTTL   time.Duration
	CandidatePool int
}

type Service struct {
	profiles ProfileStore
	decided  DecidedStore
	scorer   Scorer
	signer   PhotoSigner
	cfg      Config
	logger   *zap.Logger
}

type Card struct {
	UserID        int64
	DisplayName   string
	Age           int
	City          string
	Bio           string
	Interests     []string
	PhotoURL      string
	Compatibility model.CompatibilityResult
}

func NewService(profiles ProfileStore, decided DecidedStore, scorer Scorer, cfg Config, logger *zap.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		profiles: profiles,
		decided:  decided,
		scorer:   scorer,
		cfg:      cfg,
		logger:   logger,
	}
}

// AttachPhotoSigner enables presigned photo URLs on feed cards. Without a
// signer cards go out with an empty photo URL.
func (s *Service) AttachPhotoSigner(signer PhotoSigner) {
	s.signer = signer
}

// Build assembles the viewer's ranked feed: approved candidates the
// viewer has not decided on, mutually eligible by stated preference,
// ordered by compatibility score.
func (s *Service) Build(ctx context.Context, viewerID int64, limit int) ([]Card, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if s.profiles == nil || s.decided == nil || s.scorer == nil {
		return nil, fmt.Errorf("feed dependencies are not configured")
	}

	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	viewer, err := s.profiles.GetByUserID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.profiles.ListCandidates(ctx, viewerID, s.cfg.CandidatePool)
	if err != nil {
		return nil, err
	}

	decided, err := s.decided.ListDecidedTargets(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		profile model.Profile
		result  model.CompatibilityResult
	}

	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		if _, done := decided[candidate.UserID]; done {
			continue
		}

		result := s.scorer.Score(viewer, candidate)
		if !result.Eligible {
			continue
		}
		ranked = append(ranked, scored{profile: candidate, result: result})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].result.Score != ranked[j].result.Score {
			return ranked[i].result.Score > ranked[j].result.Score
		}
		return ranked[i].profile.UserID < ranked[j].profile.UserID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	cards := make([]Card, 0, len(ranked))
	for _, item := range ranked {
		cards = append(cards, Card{
			UserID:        item.profile.UserID,
			DisplayName:   item.profile.DisplayName,
			Age:           item.profile.Age,
			City:          item.profile.City,
			Bio:           item.profile.Bio,
			Interests:     item.profile.Interests,
			PhotoURL:      s.photoURL(ctx, item.profile),
			Compatibility: item.result,
		})
	}

	return cards, nil
}

func (s *Service) photoURL(ctx context.Context, profile model.Profile) string {
	if s.signer == nil || profile.PrimaryPhotoKey == "" {
		return ""
	}

	url, err := s.signer.PresignGet(ctx, profile.PrimaryPhotoKey, s.cfg.PhotoURLTTL)
	if err != nil {
		s.logger.Warn("presign feed photo",
			zap.Int64("user_id", profile.UserID),
			zap.Error(err))
		return ""
	}
	return url
}
