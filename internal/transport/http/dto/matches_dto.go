package dto

import "time"

type MatchItem struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	DisplayName  string    `json:"display_name"`
	Age          int       `json:"age"`
	City         string    `json:"city"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItem `json:"items"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
