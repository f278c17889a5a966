package model

import "time"

// Subscription is the billing state backing tier resolution. Tier is kept
// as the raw stored label; enums.ParseTier folds unknown values down to
// registered.
type Subscription struct {
	UserID     int64      `json:"user_id"`
	Tier       string     `json:"tier"`
	ExpiresAt  *time.Time `json:"expires_at"`
	BoostUntil *time.Time `json:"boost_until"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
