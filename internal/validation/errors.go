// Package validation classifies oracle responses with shallow textual checks and scores their quality.
package validation

import (
	"fmt"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

// RejectedError reports a response that failed a structural check.
type RejectedError struct {
	Result types.ValidationResult
}

func (e *RejectedError) Error() string {
	if e.Result.MatchedPhrase != "" {
		return fmt.Sprintf("response rejected (%s): %s [matched %q]", e.Result.Verdict, e.Result.Message, e.Result.MatchedPhrase)
	}
	return fmt.Sprintf("response rejected (%s): %s", e.Result.Verdict, e.Result.Message)
}

// AsError returns a *RejectedError for rejected verdicts and nil otherwise.
func AsError(result types.ValidationResult) error {
	if !result.Verdict.Rejected() {
		return nil
	}
	return &RejectedError{Result: result}
}
