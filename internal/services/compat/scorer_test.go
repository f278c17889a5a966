package compat

import (
	"testing"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
)

func maleProfile(age int, interests []string) model.Profile {
	return model.Profile{
		UserID:       1,
		Age:          age,
		Gender:       "male",
		InterestedIn: enums.InterestedInWomen,
		Interests:    interests,
	}
}

func femaleProfile(age int, interests []string) model.Profile {
	return model.Profile{
		UserID:       2,
		Age:          age,
		Gender:       "female",
		InterestedIn: enums.InterestedInMen,
		Interests:    interests,
	}
}

func TestScoreHardGateOnPreferenceMismatch(t *testing.T) {
	scorer := NewScorer()

	viewer := maleProfile(30, []string{"hiking", "jazz"})
	candidate := maleProfile(30, []string{"hiking", "jazz"})

	result := scorer.Score(viewer, candidate)
	if result.Eligible {
		t.Fatalf("expected ineligible pair, got %+v", result)
	}
	if result.Score != 0 {
		t.Fatalf("ineligible pair must score zero, got %d", result.Score)
	}
	if result.Level != model.CompatibilityLow {
		t.Fatalf("expected low level, got %s", result.Level)
	}
}

func TestScoreGenderSynonymsStillGate(t *testing.T) {
	scorer := NewScorer()

	viewer := model.Profile{Age: 28, Gender: "Man", InterestedIn: "Women", Interests: nil}
	candidate := model.Profile{Age: 28, Gender: "woman", InterestedIn: "men"}

	result := scorer.Score(viewer, candidate)
	if !result.Eligible {
		t.Fatalf("synonym labels should pass the gate, got %+v", result)
	}
}

func TestScoreAgeBands(t *testing.T) {
	scorer := NewScorer()

	cases := []struct {
		viewerAge    int
		candidateAge int
		want         int
	}{
		{30, 31, 25},
		{30, 34, 15},
		{30, 39, 8},
		{30, 44, 3},
		{30, 50, 0},
	}

	for _, tc := range cases {
		result := scorer.Score(maleProfile(tc.viewerAge, nil), femaleProfile(tc.candidateAge, nil))
		if result.Score != tc.want {
			t.Fatalf("ages %d/%d: expected %d points, got %d", tc.viewerAge, tc.candidateAge, tc.want, result.Score)
		}
	}
}

func TestScoreSharedInterestsCapped(t *testing.T) {
	scorer := NewScorer()

	interests := []string{"hiking", "jazz", "cooking", "chess", "cinema"}
	viewer := maleProfile(30, interests)
	viewer.Age = 30
	candidate := femaleProfile(50, interests)

	// Age band contributes nothing at a 20 year gap, so the whole score is
	// interests plus the >=3 interests quality bonus.
	result := scorer.Score(viewer, candidate)
	want := maxInterestPoints + 3
	if result.Score != want {
		t.Fatalf("expected capped interest score %d, got %d", want, result.Score)
	}
}

func TestScoreInterestMatchingIsCaseInsensitive(t *testing.T) {
	scorer := NewScorer()

	viewer := maleProfile(30, []string{"Hiking", " Jazz "})
	candidate := femaleProfile(50, []string{"hiking", "jazz"})

	result := scorer.Score(viewer, candidate)
	if result.Score != 2*pointsPerInterest {
		t.Fatalf("expected %d points for two shared interests, got %d", 2*pointsPerInterest, result.Score)
	}
}

func TestScoreDistanceBands(t *testing.T) {
	scorer := NewScorer()

	// Roughly 1 degree of latitude is 111 km.
	cases := []struct {
		deltaLat float64
		want     int
	}{
		{0.02, 20},
		{0.1, 15},
		{0.25, 10},
		{0.4, 5},
		{1.0, 0},
	}

	for _, tc := range cases {
		viewer := maleProfile(30, nil)
		viewer.Location = &model.Coordinates{Lat: 55.75, Lon: 37.62}
		candidate := femaleProfile(50, nil)
		candidate.Location = &model.Coordinates{Lat: 55.75 + tc.deltaLat, Lon: 37.62}

		result := scorer.Score(viewer, candidate)
		if result.Score != tc.want {
			t.Fatalf("delta %.2f deg: expected %d points, got %d", tc.deltaLat, tc.want, result.Score)
		}
	}
}

func TestScoreClampAndLevels(t *testing.T) {
	scorer := NewScorer()

	viewer := maleProfile(30, []string{"hiking", "jazz", "cooking", "chess"})
	viewer.Location = &model.Coordinates{Lat: 55.75, Lon: 37.62}
	viewer.Bio = "long enough bio to count for quality"
	viewer.PhotosCount = 4

	candidate := femaleProfile(31, []string{"hiking", "jazz", "cooking", "chess"})
	candidate.Location = &model.Coordinates{Lat: 55.751, Lon: 37.62}
	candidate.Bio = "long enough bio to count for quality"
	candidate.PhotosCount = 4

	result := scorer.Score(viewer, candidate)
	// 25 age + 30 interests + 20 distance + 10 quality = 85.
	if result.Score != 85 {
		t.Fatalf("expected score 85, got %d", result.Score)
	}
	if result.Level != model.CompatibilityHigh {
		t.Fatalf("expected high level, got %s", result.Level)
	}
	if len(result.Reasons) == 0 {
		t.Fatalf("expected reasons for a high score")
	}
}

func TestScoreMediumLevel(t *testing.T) {
	scorer := NewScorer()

	viewer := maleProfile(30, []string{"hiking", "jazz", "cooking"})
	candidate := femaleProfile(31, []string{"hiking", "jazz", "cooking"})

	// 25 age + 24 interests + 3 interest quality = medium band.
	result := scorer.Score(viewer, candidate)
	if result.Level != model.CompatibilityMedium {
		t.Fatalf("expected medium level for score %d, got %s", result.Score, result.Level)
	}
}

func TestScoreMissingLocationSkipsDistance(t *testing.T) {
	scorer := NewScorer()

	viewer := maleProfile(30, nil)
	viewer.Location = &model.Coordinates{Lat: 55.75, Lon: 37.62}
	candidate := femaleProfile(31, nil)

	result := scorer.Score(viewer, candidate)
	if result.Score != 25 {
		t.Fatalf("expected age points only, got %d", result.Score)
	}
}
