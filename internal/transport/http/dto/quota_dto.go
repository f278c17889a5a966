package dto

import "time"

type QuotaActionState struct {
	Action    string    `json:"action"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	Unlimited bool      `json:"unlimited"`
	ResetAt   time.Time `json:"reset_at"`
}

type QuotaResponse struct {
	Tier    string             `json:"tier"`
	Actions []QuotaActionState `json:"actions"`
}

type BoostResponse struct {
	BoostUntil     time.Time `json:"boost_until"`
	BoostsLeft     int       `json:"boosts_left"`
	Unlimited      bool      `json:"unlimited"`
	MonthlyResetAt time.Time `json:"monthly_reset_at"`
}
