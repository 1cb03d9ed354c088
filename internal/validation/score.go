package validation

import (
	"math"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

// Thresholds for the quality score factors.
const (
	TargetWeeks        = 12
	TargetMarkers      = 12
	TargetPhaseHeaders = 3
	TargetWordCount    = 1200
)

// Factor is one boolean quality check.
type Factor struct {
	Name      string `json:"name"`
	Satisfied bool   `json:"satisfied"`
}

// Factors evaluates every quality check against m, in a fixed order.
func Factors(m types.PlanMetrics) []Factor {
	return []Factor{
		{"week count", m.DistinctWeeks >= TargetWeeks},
		{"milestone markers", m.MilestoneMarkers >= TargetMarkers},
		{"red flag markers", m.RedFlagMarkers >= TargetMarkers},
		{"coaching markers", m.CoachingMarkers >= TargetMarkers},
		{"learning objective markers", m.ObjectiveMarkers >= TargetMarkers},
		{"executive summary", m.HasExecutiveSummary},
		{"phase headers", m.PhaseHeaders >= TargetPhaseHeaders},
		{"tool names", m.HasToolNames},
		{"first and last week", m.HasFirstAndLastWeek},
		{"word count", m.WordCount >= TargetWordCount},
	}
}

// Score returns the percentage of satisfied factors, rounded to the nearest integer.
// It is informational and never changes a verdict.
func Score(m types.PlanMetrics) int {
	factors := Factors(m)
	satisfied := 0
	for _, f := range factors {
		if f.Satisfied {
			satisfied++
		}
	}
	return int(math.Round(float64(satisfied) / float64(len(factors)) * 100))
}

// Assessment bundles everything the validator derives from one response.
type Assessment struct {
	Metrics types.PlanMetrics      `json:"metrics"`
	Result  types.ValidationResult `json:"result"`
	Score   int                    `json:"score"`
}

// Assess analyzes text once and derives the verdict and score from the same metrics.
func Assess(text string, vocabulary []string) Assessment {
	m := Analyze(text, vocabulary)
	return Assessment{
		Metrics: m,
		Result:  classify(text, m, vocabulary),
		Score:   Score(m),
	}
}
