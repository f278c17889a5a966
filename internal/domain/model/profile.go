package model

import (
	"time"

	"github.com/gomeet-app/backend/internal/domain/enums"
)

// Coordinates is an optional last-known location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Profile struct {
	UserID          int64              `json:"user_id"`
	DisplayName     string             `json:"display_name"`
	Bio             string             `json:"bio"`
	Age             int                `json:"age"`
	Gender          string             `json:"gender"`
	InterestedIn    enums.InterestedIn `json:"interested_in"`
	Interests       []string           `json:"interests"`
	City            string             `json:"city"`
	Location        *Coordinates       `json:"location,omitempty"`
	PhotosCount     int                `json:"photos_count"`
	PrimaryPhotoKey string             `json:"primary_photo_key,omitempty"`
	Approved        bool               `json:"approved"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
