package model

import (
	"time"

	"github.com/gomeet-app/backend/internal/domain/enums"
)

// UsageCounter is one row of the quota ledger. A counter belongs to a
// single window: rolling into a new window produces a new key, never an
// in-place reset.
type UsageCounter struct {
	UserID    int64            `json:"user_id"`
	Action    enums.ActionKind `json:"action"`
	WindowKey string           `json:"window_key"`
	Used      int              `json:"used"`
	UpdatedAt time.Time        `json:"updated_at"`
}
