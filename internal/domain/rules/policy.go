package rules

import (
	"time"

	"github.com/gomeet-app/backend/internal/domain/enums"
)

// Unlimited marks a limit that is never enforced by the quota ledger.
const Unlimited = -1

// TierPolicy is the immutable per-tier entitlement table. Loaded once at
// process start; never mutated at runtime.
type TierPolicy struct {
	DailyLikeLimit      int
	DailySuperLikeLimit int
	MonthlyBoostLimit   int
	BoostDuration       time.Duration

	MaxPhotos         int
	AdvancedFilters   bool
	SeeWhoLikesYou    bool
	Rewind            bool
	VoiceCalls        bool
	VideoCalls        bool
	Passport          bool
	InvisibleBrowsing bool
	TopPicks          bool
}

var tierPolicies = map[enums.Tier]TierPolicy{
	enums.TierRegistered: {
		DailyLikeLimit:      10,
		DailySuperLikeLimit: 0,
		MonthlyBoostLimit:   0,
		BoostDuration:       0,
		MaxPhotos:           6,
	},
	enums.TierSilver: {
		DailyLikeLimit:      50,
		DailySuperLikeLimit: 5,
		MonthlyBoostLimit:   1,
		BoostDuration:       30 * time.Minute,
		MaxPhotos:           10,
		AdvancedFilters:     true,
		SeeWhoLikesYou:      true,
		Rewind:              true,
		VoiceCalls:          true,
		VideoCalls:          true,
	},
	enums.TierGold: {
		DailyLikeLimit:      100,
		DailySuperLikeLimit: 10,
		MonthlyBoostLimit:   3,
		BoostDuration:       time.Hour,
		MaxPhotos:           10,
		AdvancedFilters:     true,
		SeeWhoLikesYou:      true,
		Rewind:              true,
		VoiceCalls:          true,
		VideoCalls:          true,
		Passport:            true,
		InvisibleBrowsing:   true,
		TopPicks:            true,
	},
	enums.TierPlatinum: {
		DailyLikeLimit:      Unlimited,
		DailySuperLikeLimit: 25,
		MonthlyBoostLimit:   10,
		BoostDuration:       2 * time.Hour,
		MaxPhotos:           15,
		AdvancedFilters:     true,
		SeeWhoLikesYou:      true,
		Rewind:              true,
		VoiceCalls:          true,
		VideoCalls:          true,
		Passport:            true,
		InvisibleBrowsing:   true,
		TopPicks:            true,
	},
	enums.TierModerator: {
		DailyLikeLimit:      Unlimited,
		DailySuperLikeLimit: Unlimited,
		MonthlyBoostLimit:   Unlimited,
		BoostDuration:       4 * time.Hour,
		MaxPhotos:           25,
		AdvancedFilters:     true,
		SeeWhoLikesYou:      true,
		Rewind:              true,
		VoiceCalls:          true,
		VideoCalls:          true,
		Passport:            true,
		InvisibleBrowsing:   true,
		TopPicks:            true,
	},
	enums.TierAdmin: {
		DailyLikeLimit:      Unlimited,
		DailySuperLikeLimit: Unlimited,
		MonthlyBoostLimit:   Unlimited,
		BoostDuration:       4 * time.Hour,
		MaxPhotos:           25,
		AdvancedFilters:     true,
		SeeWhoLikesYou:      true,
		Rewind:              true,
		VoiceCalls:          true,
		VideoCalls:          true,
		Passport:            true,
		InvisibleBrowsing:   true,
		TopPicks:            true,
	},
}

// PolicyFor returns the policy for a tier. An unknown tier resolves to the
// registered policy so a missing subscription never unlocks anything.
func PolicyFor(tier enums.Tier) TierPolicy {
	if policy, ok := tierPolicies[tier]; ok {
		return policy
	}
	return tierPolicies[enums.TierRegistered]
}

// LimitFor returns the policy limit for a metered action kind.
func (p TierPolicy) LimitFor(kind enums.ActionKind) int {
	switch kind {
	case enums.ActionLike:
		return p.DailyLikeLimit
	case enums.ActionSuperLike:
		return p.DailySuperLikeLimit
	case enums.ActionBoost:
		return p.MonthlyBoostLimit
	default:
		return 0
	}
}
