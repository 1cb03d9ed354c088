package validation

import (
	"log"
	"regexp"
	"strings"
)

// InjectionCheckResult holds the result of the instruction-like text heuristic.
type InjectionCheckResult struct {
	Field   string   // Input field that was checked
	IsSafe  bool     // Whether no pattern matched
	Matches []string // Matched snippets, in pattern order
}

// injectionPatterns match text that reads as instructions to the oracle.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions?`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|everything)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\b`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
	regexp.MustCompile(`(?i)</?\s*role_context\s*>`),
	regexp.MustCompile(`(?i)system\s+prompt`),
}

// CheckInjection flags free-text input that looks like instructions. Input is never
// modified; the result feeds a non-blocking warning.
func CheckInjection(field, text string) *InjectionCheckResult {
	result := &InjectionCheckResult{Field: field, IsSafe: true}
	if strings.TrimSpace(text) == "" {
		return result
	}
	for _, pattern := range injectionPatterns {
		if m := pattern.FindString(text); m != "" {
			result.Matches = append(result.Matches, m)
		}
	}
	result.IsSafe = len(result.Matches) == 0
	return result
}

// Reason describes the matches for display.
func (r *InjectionCheckResult) Reason() string {
	if r.IsSafe {
		return ""
	}
	return r.Field + " contains instruction-like text (" + strings.Join(r.Matches, ", ") + "); it is sent to the model as data"
}

// LogInjectionWarning logs a warning if suspicious content was detected.
func LogInjectionWarning(result *InjectionCheckResult) {
	if result != nil && !result.IsSafe {
		log.Printf("[SECURITY WARNING] %s", result.Reason())
	}
}
