package model

import "time"

type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
