package enums

import "strings"

// Tier is the subscription level controlling quota limits and feature flags.
type Tier string

const (
	TierRegistered Tier = "registered"
	TierSilver     Tier = "silver"
	TierGold       Tier = "gold"
	TierPlatinum   Tier = "platinum"
	TierModerator  Tier = "moderator"
	TierAdmin      Tier = "admin"
)

// ParseTier maps a stored tier label to a known tier. Unknown or empty
// values resolve to TierRegistered so a corrupt subscription row never
// grants elevated access.
func ParseTier(value string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierSilver:
		return TierSilver
	case TierGold:
		return TierGold
	case TierPlatinum:
		return TierPlatinum
	case TierModerator:
		return TierModerator
	case TierAdmin:
		return TierAdmin
	default:
		return TierRegistered
	}
}

func (t Tier) String() string {
	return string(t)
}
