package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgrepo "github.com/gomeet-app/backend/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrMatchNotFound = errors.New("match not found")
)

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ActiveMatchRecord, error)
	Deactivate(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type Service struct {
	pool       *pgxpool.Pool
	matchStore MatchStore
	runTx      func(context.Context, *pgxpool.Pool, func(context.Context, pgx.Tx) error) error
}

type MatchItem struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	Age          int
	City         string
	CreatedAt    time.Time
}

func NewService(pool *pgxpool.Pool, matchStore MatchStore) *Service {
	return &Service{
		pool:       pool,
		matchStore: matchStore,
		runTx:      pgrepo.WithTx,
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:           row.ID,
			TargetUserID: row.TargetUserID,
			DisplayName:  row.DisplayName,
			Age:          row.Age,
			City:         row.City,
			CreatedAt:    row.CreatedAt,
		})
	}

	return items, nil
}

// Unmatch deactivates the pair's match. The row survives as unmatched, so
// a later reciprocal like cannot create a second row for the same pair.
func (s *Service) Unmatch(ctx context.Context, userID, targetUserID int64) error {
	if userID <= 0 || targetUserID <= 0 || userID == targetUserID {
		return ErrValidation
	}
	if s.matchStore == nil {
		return fmt.Errorf("match store is nil")
	}

	return s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		removed, err := s.matchStore.Deactivate(ctx, tx, userID, targetUserID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrMatchNotFound
		}
		return nil
	})
}
