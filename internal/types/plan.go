package types

import "time"

// Verdict classifies an oracle response.
type Verdict string

// Verdicts in the order the checks run. Rejected verdicts end the submission.
const (
	VerdictRejectedTooShort            Verdict = "rejected_too_short"
	VerdictRejectedContainsShortcut    Verdict = "rejected_contains_shortcut"
	VerdictRejectedIncompleteStructure Verdict = "rejected_incomplete_structure"
	VerdictWarningMissingToolNames     Verdict = "warning_missing_tool_names"
	VerdictAccepted                    Verdict = "accepted"
)

// Rejected reports whether the response must not be shown as a plan.
func (v Verdict) Rejected() bool {
	switch v {
	case VerdictRejectedTooShort, VerdictRejectedContainsShortcut, VerdictRejectedIncompleteStructure:
		return true
	default:
		return false
	}
}

// ValidationResult is the outcome of the shallow structural checks.
type ValidationResult struct {
	Verdict  Verdict `json:"verdict"`
	Message  string  `json:"message"`
	Guidance string  `json:"guidance,omitempty"`
	// MatchedPhrase is the placeholder phrase that caused a shortcut rejection.
	MatchedPhrase string `json:"matched_phrase,omitempty"`
}

// PlanMetrics are the textual measurements the validator and scorer share.
type PlanMetrics struct {
	CharCount     int `json:"char_count"`
	WordCount     int `json:"word_count"`
	DistinctWeeks int `json:"distinct_weeks"`
	// WeekHeaders counts distinct weeks that open a section ("### Week N" or "**Week N").
	WeekHeaders         int  `json:"week_headers"`
	MilestoneMarkers    int  `json:"milestone_markers"`
	RedFlagMarkers      int  `json:"red_flag_markers"`
	CoachingMarkers     int  `json:"coaching_markers"`
	ObjectiveMarkers    int  `json:"objective_markers"`
	PhaseHeaders        int  `json:"phase_headers"`
	HasExecutiveSummary bool `json:"has_executive_summary"`
	HasFirstAndLastWeek bool `json:"has_first_and_last_week"`
	HasToolNames        bool `json:"has_tool_names"`
}

// GeneratedPlan is the oracle's response together with its assessment.
// It lives for a single submission and is never persisted.
type GeneratedPlan struct {
	SubmissionID     string           `json:"submission_id"`
	Text             string           `json:"text"`
	Provider         string           `json:"provider"`
	Model            string           `json:"model"`
	PromptTokens     int              `json:"prompt_tokens"`
	OracleDuration   time.Duration    `json:"oracle_duration"`
	Metrics          PlanMetrics      `json:"metrics"`
	Validation       ValidationResult `json:"validation"`
	QualityScore     int              `json:"quality_score"`
	UsesNamedTools   bool             `json:"uses_named_tools"`
	ExpectedToolList []string         `json:"expected_tool_list"`
}
