package compat

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
)

const (
	maxScore          = 100
	maxInterestPoints = 30
	pointsPerInterest = 8
)

// Scorer computes a pairwise compatibility score. It is pure: no storage,
// no clock, deterministic for the same pair of profiles.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score rates how well candidate fits viewer. The mutual gender
// preference check is a hard gate: an ineligible pair scores zero no
// matter what the soft signals say.
func (s *Scorer) Score(viewer, candidate model.Profile) model.CompatibilityResult {
	if !mutualPreference(viewer, candidate) {
		return model.CompatibilityResult{
			Score:    0,
			Eligible: false,
			Level:    model.CompatibilityLow,
		}
	}

	score := 0
	reasons := make([]string, 0, 4)

	if pts := agePoints(viewer.Age, candidate.Age); pts > 0 {
		score += pts
		reasons = append(reasons, fmt.Sprintf("age difference %d years", absInt(viewer.Age-candidate.Age)))
	}

	if shared := sharedInterests(viewer.Interests, candidate.Interests); len(shared) > 0 {
		pts := len(shared) * pointsPerInterest
		if pts > maxInterestPoints {
			pts = maxInterestPoints
		}
		score += pts
		reasons = append(reasons, fmt.Sprintf("%d shared interests", len(shared)))
	}

	if viewer.Location != nil && candidate.Location != nil {
		distance := haversineKM(viewer.Location.Lat, viewer.Location.Lon, candidate.Location.Lat, candidate.Location.Lon)
		if pts := distancePoints(distance); pts > 0 {
			score += pts
			reasons = append(reasons, fmt.Sprintf("%.0f km away", distance))
		}
	}

	if pts := profileQualityPoints(candidate); pts > 0 {
		score += pts
		reasons = append(reasons, "complete profile")
	}

	if score > maxScore {
		score = maxScore
	}

	return model.CompatibilityResult{
		Score:    score,
		Eligible: true,
		Level:    levelFor(score),
		Reasons:  reasons,
	}
}

// mutualPreference requires each side's stated interest to cover the
// other's gender. One-directional attraction is not a match candidate.
func mutualPreference(a, b model.Profile) bool {
	return a.InterestedIn.Wants(enums.NormalizeGender(b.Gender)) &&
		b.InterestedIn.Wants(enums.NormalizeGender(a.Gender))
}

func agePoints(a, b int) int {
	diff := absInt(a - b)
	switch {
	case diff <= 2:
		return 25
	case diff <= 5:
		return 15
	case diff <= 10:
		return 8
	case diff <= 15:
		return 3
	default:
		return 0
	}
}

func distancePoints(km float64) int {
	switch {
	case km <= 5:
		return 20
	case km <= 15:
		return 15
	case km <= 30:
		return 10
	case km <= 50:
		return 5
	default:
		return 0
	}
}

func profileQualityPoints(p model.Profile) int {
	pts := 0
	if len(strings.TrimSpace(p.Bio)) > 20 {
		pts += 3
	}
	if p.PhotosCount >= 3 {
		pts += 4
	}
	if len(p.Interests) >= 3 {
		pts += 3
	}
	return pts
}

func sharedInterests(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, interest := range a {
		key := strings.ToLower(strings.TrimSpace(interest))
		if key == "" {
			continue
		}
		seen[key] = struct{}{}
	}

	shared := make([]string, 0, len(b))
	for _, interest := range b {
		key := strings.ToLower(strings.TrimSpace(interest))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			shared = append(shared, key)
			delete(seen, key)
		}
	}
	return shared
}

func levelFor(score int) model.CompatibilityLevel {
	switch {
	case score >= 80:
		return model.CompatibilityHigh
	case score >= 50:
		return model.CompatibilityMedium
	default:
		return model.CompatibilityLow
	}
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
