package model

// CompatibilityLevel buckets a score for the UI.
type CompatibilityLevel string

const (
	CompatibilityHigh   CompatibilityLevel = "high"
	CompatibilityMedium CompatibilityLevel = "medium"
	CompatibilityLow    CompatibilityLevel = "low"
)

// CompatibilityResult is computed on demand for ranking and never stored.
type CompatibilityResult struct {
	Score    int                `json:"score"`
	Eligible bool               `json:"eligible"`
	Level    CompatibilityLevel `json:"level"`
	Reasons  []string           `json:"reasons,omitempty"`
}
