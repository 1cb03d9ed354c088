package validation

import (
	"fmt"
	"strings"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

const (
	// MinResponseChars is the shortest response that can hold a full plan.
	MinResponseChars = 1500
	// MinWeekSections is the fewest distinct weekly section headers a response may have.
	MinWeekSections = 10
)

// ShortcutPhrases are placeholder phrases that indicate the oracle stopped writing
// and asked the reader to extrapolate. Matching is case-insensitive.
var ShortcutPhrases = []string{
	"continue this format",
	"continue in this format",
	"continue the same format",
	"repeat for weeks",
	"repeat this format",
	"repeat the same structure",
	"and so on for",
	"[continue",
	"same as above",
	"(remaining weeks",
	"…",
	"...",
}

// Classify runs the structural checks in a fixed order and returns the first failure:
// too short, then shortcut phrase, then incomplete week structure. A response that
// passes all three but mentions none of the instructed tool terms gets a warning.
func Classify(text string, vocabulary []string) types.ValidationResult {
	return classify(text, Analyze(text, vocabulary), vocabulary)
}

func classify(text string, m types.PlanMetrics, vocabulary []string) types.ValidationResult {
	if m.CharCount < MinResponseChars {
		return types.ValidationResult{
			Verdict:  types.VerdictRejectedTooShort,
			Message:  fmt.Sprintf("The response is too short to be a complete 12-week plan (%d characters, need at least %d).", m.CharCount, MinResponseChars),
			Guidance: "Generate again. If this keeps happening, raise the maximum output tokens.",
		}
	}

	if phrase := FindShortcut(text); phrase != "" {
		return types.ValidationResult{
			Verdict:       types.VerdictRejectedContainsShortcut,
			Message:       "The response skips part of the plan with a placeholder instead of writing every week.",
			Guidance:      "Generate again. A lower temperature usually produces complete weeks.",
			MatchedPhrase: phrase,
		}
	}

	if m.WeekHeaders < MinWeekSections {
		return types.ValidationResult{
			Verdict:  types.VerdictRejectedIncompleteStructure,
			Message:  fmt.Sprintf("The response has only %d weekly sections; at least %d are required.", m.WeekHeaders, MinWeekSections),
			Guidance: "Generate again. If this keeps happening, raise the maximum output tokens.",
		}
	}

	if len(vocabulary) > 0 && !m.HasToolNames {
		return types.ValidationResult{
			Verdict:  types.VerdictWarningMissingToolNames,
			Message:  fmt.Sprintf("The plan does not mention any of the expected tools (%s).", strings.Join(vocabulary, ", ")),
			Guidance: "The plan is usable. Add tool-specific milestones by hand or generate again.",
		}
	}

	return types.ValidationResult{
		Verdict: types.VerdictAccepted,
		Message: "The plan passed all structural checks.",
	}
}

// FindShortcut returns the first shortcut phrase present in text, or "".
func FindShortcut(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range ShortcutPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}
