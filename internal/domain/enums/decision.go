package enums

import (
	"errors"
	"strings"
)

var ErrUnknownDecision = errors.New("unknown swipe decision")

// Decision is the directional choice an actor makes on a target.
type Decision string

const (
	DecisionPass      Decision = "PASS"
	DecisionLike      Decision = "LIKE"
	DecisionSuperLike Decision = "SUPER_LIKE"
)

// ParseDecision normalizes client spellings (case, underscores) into a
// canonical decision value.
func ParseDecision(value string) (Decision, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "")
	switch normalized {
	case "PASS", "DISLIKE":
		return DecisionPass, nil
	case "LIKE":
		return DecisionLike, nil
	case "SUPERLIKE":
		return DecisionSuperLike, nil
	default:
		return "", ErrUnknownDecision
	}
}

// Positive reports whether the decision counts toward a mutual match.
func (d Decision) Positive() bool {
	return d == DecisionLike || d == DecisionSuperLike
}

// Metered reports whether the decision consumes quota.
func (d Decision) Metered() bool {
	return d.Positive()
}

// ActionKind maps a metered decision to its quota action kind.
func (d Decision) ActionKind() ActionKind {
	if d == DecisionSuperLike {
		return ActionSuperLike
	}
	return ActionLike
}

func (d Decision) String() string {
	return string(d)
}
