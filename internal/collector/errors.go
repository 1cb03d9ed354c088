package collector

import (
	"strings"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

// ValidationError reports every invalid field of a submission.
type ValidationError struct {
	Errors []types.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}
