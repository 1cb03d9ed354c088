package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

// Section markers the instruction asks the oracle to use.
const (
	MarkerObjective = "🎯"
	MarkerMilestone = "✅"
	MarkerRedFlag   = "🚩"
	MarkerCoaching  = "💡"
)

// Plan shape expected by the instruction.
const (
	FirstWeek = 1
	LastWeek  = 12
)

var (
	weekRe        = regexp.MustCompile(`\bWeek\s+(\d{1,3})\b`)
	weekHeaderRe  = regexp.MustCompile(`(?m)^[ \t]*(?:#{1,6}[ \t]+|\*\*)[ \t]*Week\s+(\d{1,3})\b`)
	phaseHeaderRe = regexp.MustCompile(`(?im)^#{1,6}\s+.*\b(phase\s+\d+|foundation|application|ownership)\b`)
)

// Analyze measures a response. It never fails; empty text yields zero metrics.
func Analyze(text string, vocabulary []string) types.PlanMetrics {
	weeks := weekNumbers(weekRe, text)
	lower := strings.ToLower(text)

	return types.PlanMetrics{
		CharCount:           utf8.RuneCountInString(strings.TrimSpace(text)),
		WordCount:           len(strings.Fields(text)),
		DistinctWeeks:       len(weeks),
		WeekHeaders:         len(weekNumbers(weekHeaderRe, text)),
		MilestoneMarkers:    strings.Count(text, MarkerMilestone),
		RedFlagMarkers:      strings.Count(text, MarkerRedFlag),
		CoachingMarkers:     strings.Count(text, MarkerCoaching),
		ObjectiveMarkers:    strings.Count(text, MarkerObjective),
		PhaseHeaders:        len(phaseHeaderRe.FindAllStringIndex(text, -1)),
		HasExecutiveSummary: strings.Contains(lower, "executive summary"),
		HasFirstAndLastWeek: weeks[FirstWeek] && weeks[LastWeek],
		HasToolNames:        mentionsAny(lower, vocabulary),
	}
}

// weekNumbers returns the set of distinct week numbers captured by re.
func weekNumbers(re *regexp.Regexp, text string) map[int]bool {
	weeks := make(map[int]bool)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			weeks[n] = true
		}
	}
	return weeks
}

func mentionsAny(lowerText string, terms []string) bool {
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lowerText, term) {
			return true
		}
	}
	return false
}
