package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo is a read-only view over the profiles table. Profile writes
// belong to the profile/admin surface, which is outside this core.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	COALESCE(display_name, ''),
	COALESCE(bio, ''),
	COALESCE(age, 0),
	COALESCE(gender, ''),
	COALESCE(interested_in, ''),
	COALESCE(interests, '{}'),
	COALESCE(city, ''),
	last_lat,
	last_lon,
	COALESCE(photos_count, 0),
	COALESCE(primary_photo_key, ''),
	COALESCE(approved, FALSE),
	created_at,
	updated_at
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// ListCandidates returns approved profiles other than the viewer, capped
// at limit. Decision and eligibility filtering happen in the feed service.
func (r *ProfileRepo) ListCandidates(ctx context.Context, viewerID int64, limit int) ([]model.Profile, error) {
	if viewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	user_id,
	COALESCE(display_name, ''),
	COALESCE(bio, ''),
	COALESCE(age, 0),
	COALESCE(gender, ''),
	COALESCE(interested_in, ''),
	COALESCE(interests, '{}'),
	COALESCE(city, ''),
	last_lat,
	last_lon,
	COALESCE(photos_count, 0),
	COALESCE(primary_photo_key, ''),
	COALESCE(approved, FALSE),
	created_at,
	updated_at
FROM profiles
WHERE user_id <> $1 AND approved = TRUE
ORDER BY updated_at DESC, user_id DESC
LIMIT $2
`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, limit)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, profile)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var (
		profile      model.Profile
		interestedIn string
		lat, lon     *float64
	)
	if err := row.Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.Bio,
		&profile.Age,
		&profile.Gender,
		&interestedIn,
		&profile.Interests,
		&profile.City,
		&lat,
		&lon,
		&profile.PhotosCount,
		&profile.PrimaryPhotoKey,
		&profile.Approved,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return model.Profile{}, err
	}

	profile.InterestedIn = enums.InterestedIn(interestedIn)
	if lat != nil && lon != nil {
		profile.Location = &model.Coordinates{Lat: *lat, Lon: *lon}
	}

	return profile, nil
}
