// Package types provides type definitions for structured data used throughout the onboarding plan generator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Seniority is the level of the new hire.
type Seniority string

// Seniority levels. Junior, Mid and Senior are individual contributor levels.
const (
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityManager   Seniority = "manager"
	SeniorityExecutive Seniority = "executive"
)

// AllSeniorities lists seniority levels in display order.
var AllSeniorities = []Seniority{SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityManager, SeniorityExecutive}

var seniorityLabels = map[Seniority]string{
	SeniorityJunior:    "Junior",
	SeniorityMid:       "Mid-level",
	SenioritySenior:    "Senior",
	SeniorityManager:   "Manager",
	SeniorityExecutive: "Executive",
}

// Label returns the display name.
func (s Seniority) Label() string { return seniorityLabels[s] }

// Valid reports whether s is a known level.
func (s Seniority) Valid() bool {
	_, ok := seniorityLabels[s]
	return ok
}

// IsIndividualContributor reports whether the level carries no direct reports.
func (s Seniority) IsIndividualContributor() bool {
	return s == SeniorityJunior || s == SeniorityMid || s == SenioritySenior
}

// ParseSeniority accepts the canonical value or the label, case-insensitively.
func ParseSeniority(raw string) (Seniority, error) {
	v, ok := parseEnum(raw, seniorityLabels)
	if !ok {
		return "", fmt.Errorf("unknown seniority %q", raw)
	}
	return v, nil
}

// Function is the business function the role sits in.
type Function string

// Business functions.
const (
	FunctionCustomerSuccess Function = "customer_success"
	FunctionSales           Function = "sales"
	FunctionRevOps          Function = "revops"
	FunctionSupport         Function = "support"
	FunctionMarketing       Function = "marketing"
	FunctionOther           Function = "other"
)

// AllFunctions lists functions in display order.
var AllFunctions = []Function{FunctionCustomerSuccess, FunctionSales, FunctionRevOps, FunctionSupport, FunctionMarketing, FunctionOther}

var functionLabels = map[Function]string{
	FunctionCustomerSuccess: "Customer Success",
	FunctionSales:           "Sales",
	FunctionRevOps:          "Revenue Operations",
	FunctionSupport:         "Support",
	FunctionMarketing:       "Marketing",
	FunctionOther:           "Other",
}

// Label returns the display name.
func (f Function) Label() string { return functionLabels[f] }

// Valid reports whether f is a known function.
func (f Function) Valid() bool {
	_, ok := functionLabels[f]
	return ok
}

// CustomerFacingByDefault reports whether roles in this function usually talk to customers.
func (f Function) CustomerFacingByDefault() bool {
	switch f {
	case FunctionCustomerSuccess, FunctionSales, FunctionSupport:
		return true
	default:
		return false
	}
}

// ParseFunction accepts the canonical value or the label, case-insensitively.
func ParseFunction(raw string) (Function, error) {
	v, ok := parseEnum(raw, functionLabels)
	if !ok {
		return "", fmt.Errorf("unknown function %q", raw)
	}
	return v, nil
}

// CompanyStage is the funding or maturity stage of the hiring company.
type CompanyStage string

// Company stages, earliest first.
const (
	StageSeed       CompanyStage = "seed"
	StageSeriesA    CompanyStage = "series_a"
	StageSeriesB    CompanyStage = "series_b"
	StageGrowth     CompanyStage = "growth"
	StageEnterprise CompanyStage = "enterprise"
)

// AllStages lists stages earliest first.
var AllStages = []CompanyStage{StageSeed, StageSeriesA, StageSeriesB, StageGrowth, StageEnterprise}

var stageLabels = map[CompanyStage]string{
	StageSeed:       "Seed",
	StageSeriesA:    "Series A",
	StageSeriesB:    "Series B",
	StageGrowth:     "Growth",
	StageEnterprise: "Enterprise",
}

// Label returns the display name.
func (s CompanyStage) Label() string { return stageLabels[s] }

// Valid reports whether s is a known stage.
func (s CompanyStage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// ParseCompanyStage accepts the canonical value or the label, case-insensitively.
func ParseCompanyStage(raw string) (CompanyStage, error) {
	v, ok := parseEnum(raw, stageLabels)
	if !ok {
		return "", fmt.Errorf("unknown company stage %q", raw)
	}
	return v, nil
}

// CompanySize is a headcount bucket.
type CompanySize string

// Headcount buckets.
const (
	Size1To10     CompanySize = "1-10"
	Size11To50    CompanySize = "11-50"
	Size51To200   CompanySize = "51-200"
	Size201To1000 CompanySize = "201-1000"
	Size1000Plus  CompanySize = "1000+"
)

// AllSizes lists buckets smallest first.
var AllSizes = []CompanySize{Size1To10, Size11To50, Size51To200, Size201To1000, Size1000Plus}

var sizeLabels = map[CompanySize]string{
	Size1To10:     "1-10 employees",
	Size11To50:    "11-50 employees",
	Size51To200:   "51-200 employees",
	Size201To1000: "201-1000 employees",
	Size1000Plus:  "1000+ employees",
}

// Label returns the display name.
func (s CompanySize) Label() string { return sizeLabels[s] }

// Valid reports whether s is a known bucket.
func (s CompanySize) Valid() bool {
	_, ok := sizeLabels[s]
	return ok
}

// ParseCompanySize accepts the canonical value or the label, case-insensitively.
func ParseCompanySize(raw string) (CompanySize, error) {
	v, ok := parseEnum(raw, sizeLabels)
	if !ok {
		return "", fmt.Errorf("unknown company size %q", raw)
	}
	return v, nil
}

func parseEnum[T ~string](raw string, labels map[T]string) (T, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return "", false
	}
	for value, label := range labels {
		if needle == string(value) || needle == strings.ToLower(label) {
			return value, true
		}
	}
	return "", false
}
