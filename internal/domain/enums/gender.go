package enums

import "strings"

// Gender is a normalized profile gender label.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = ""
)

// InterestedIn is the set of genders a profile wants to see.
type InterestedIn string

const (
	InterestedInMen   InterestedIn = "men"
	InterestedInWomen InterestedIn = "women"
	InterestedInBoth  InterestedIn = "both"
)

// NormalizeGender folds the label synonyms stored by older clients
// ("men"/"male"/"man", "women"/"female"/"woman") into one value.
func NormalizeGender(value string) Gender {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "man", "men":
		return GenderMale
	case "female", "woman", "women":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Wants reports whether a profile with this preference wants to see the
// given gender. Unknown preferences or genders never match.
func (p InterestedIn) Wants(g Gender) bool {
	if g == GenderUnknown {
		return false
	}
	switch InterestedIn(strings.ToLower(strings.TrimSpace(string(p)))) {
	case InterestedInBoth:
		return true
	case InterestedInMen:
		return g == GenderMale
	case InterestedInWomen:
		return g == GenderFemale
	default:
		return false
	}
}
