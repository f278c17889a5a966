package validate

import (
	"strings"

	"github.com/google/uuid"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// AttemptID accepts an empty value (idempotent retry is opt-in) or a
// well-formed UUID.
func AttemptID(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return true
	}
	_, err := uuid.Parse(trimmed)
	return err == nil
}
