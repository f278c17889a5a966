package dto

import "time"

type SwipeRequest struct {
	TargetID  int64  `json:"target_id"`
	Decision  string `json:"decision"`
	AttemptID string `json:"attempt_id,omitempty"`
}

type SwipeResponse struct {
	Status       string    `json:"status"`
	Decision     string    `json:"decision"`
	MatchCreated bool      `json:"match_created"`
	MatchID      int64     `json:"match_id,omitempty"`
	Remaining    int       `json:"remaining"`
	Unlimited    bool      `json:"unlimited"`
	ResetAt      time.Time `json:"reset_at"`
	Replayed     bool      `json:"replayed,omitempty"`
}

type RewindResponse struct {
	TargetID      int64  `json:"target_id"`
	Decision      string `json:"decision"`
	MatchRemoved  bool   `json:"match_removed"`
	QuotaRefunded bool   `json:"quota_refunded"`
}
