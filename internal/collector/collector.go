// Package collector turns raw form input into a validated RoleContext, merging presets,
// applying defaults and enriching it with a company website summary.
package collector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/catalog"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/fetch"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/validation"
)

// DefaultFetchTimeout bounds the website lookup.
const DefaultFetchTimeout = 20 * time.Second

// Result is the outcome of collecting one submission.
type Result struct {
	Context     types.RoleContext  `json:"context"`
	FieldErrors []types.FieldError `json:"field_errors,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	Summary     *fetch.Summary     `json:"website_summary,omitempty"`
}

// Valid reports whether the context passed validation.
func (r *Result) Valid() bool {
	return len(r.FieldErrors) == 0
}

// Err returns a *ValidationError when the submission was invalid.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: r.FieldErrors}
}

// Collector builds RoleContexts. It is safe for concurrent use.
type Collector struct {
	catalog      *catalog.Catalog
	fetcher      fetch.SummaryFetcher
	FetchTimeout time.Duration
	Verbose      bool
}

// New creates a Collector. cat defaults to the embedded catalog; fetcher may be nil, in
// which case website summaries are never looked up.
func New(cat *catalog.Catalog, fetcher fetch.SummaryFetcher) *Collector {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Collector{catalog: cat, fetcher: fetcher, FetchTimeout: DefaultFetchTimeout}
}

// Catalog returns the collector's catalog.
func (c *Collector) Catalog() *catalog.Catalog {
	return c.catalog
}

// Collect resolves and validates sub, then looks up the website summary. The website is
// fetched only for valid submissions, and a failed lookup only adds a warning.
func (c *Collector) Collect(ctx context.Context, sub types.Submission) Result {
	rc, fieldErrs, warnings := c.Resolve(sub)
	result := Result{Context: rc, FieldErrors: fieldErrs, Warnings: warnings}
	if !result.Valid() {
		return result
	}

	for _, field := range []struct{ name, text string }{
		{"role", rc.Role},
		{"manager_priorities", rc.ManagerPriorities},
		{"known_constraints", rc.KnownConstraints},
		{"company_name", rc.CompanyName},
	} {
		check := validation.CheckInjection(field.name, field.text)
		if !check.IsSafe {
			validation.LogInjectionWarning(check)
			result.Warnings = append(result.Warnings, check.Reason())
		}
	}

	if rc.WebsiteURL == "" || c.fetcher == nil {
		return result
	}

	fetchCtx := ctx
	if c.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.FetchTimeout)
		defer cancel()
	}

	summary, err := c.fetcher.FetchSummary(fetchCtx, rc.WebsiteURL)
	if err != nil {
		log.Printf("[fetch] Website summary unavailable for %s: %v", rc.WebsiteURL, err)
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Could not read %s, so the plan uses the usual tools for a %s company.", rc.WebsiteURL, rc.CompanyStage.Label()))
		return result
	}
	if summary.Empty() {
		return result
	}
	if c.Verbose {
		log.Printf("[VERBOSE] Website summary from %s (%s): %s", rc.WebsiteURL, summary.Source, summary.Text())
	}
	result.Summary = summary
	result.Context.WebsiteSummary = summary.Text()
	if check := validation.CheckInjection("website_summary", result.Context.WebsiteSummary); !check.IsSafe {
		validation.LogInjectionWarning(check)
		result.Warnings = append(result.Warnings, check.Reason())
	}
	return result
}

// Resolve merges the preset into sub, parses and defaults every field and validates the
// result. It performs no I/O.
func (c *Collector) Resolve(sub types.Submission) (types.RoleContext, []types.FieldError, []string) {
	sub = sub.Clone()
	var (
		fieldErrs []types.FieldError
		warnings  []string
	)

	if name := strings.TrimSpace(sub.Preset); name != "" {
		preset, ok := c.catalog.Preset(name)
		if ok {
			applyPreset(&sub, preset)
		} else {
			fieldErrs = append(fieldErrs, types.FieldError{Field: "preset", Message: fmt.Sprintf("unknown preset %q", name)})
		}
	}

	rc := types.RoleContext{
		Role:              trimmed(sub.Role),
		Seniority:         parseOr(sub.Seniority, types.ParseSeniority),
		Function:          parseOr(sub.Function, types.ParseFunction),
		CompanyStage:      parseOr(sub.CompanyStage, types.ParseCompanyStage),
		CompanySize:       parseOr(sub.CompanySize, types.ParseCompanySize),
		ManagerPriorities: trimmed(sub.ManagerPriorities),
		KnownConstraints:  trimmed(sub.KnownConstraints),
		CompanyName:       trimmed(sub.CompanyName),
	}

	if sub.CompanySize == nil && rc.CompanyStage.Valid() {
		if size, ok := c.catalog.DefaultSize(rc.CompanyStage); ok {
			rc.CompanySize = size
		}
	}

	if sub.CustomerFacing != nil {
		rc.CustomerFacing = *sub.CustomerFacing
	} else {
		rc.CustomerFacing = rc.Function.CustomerFacingByDefault()
	}

	rc.TeamSize = types.MinTeamSize
	if sub.TeamSize != nil {
		rc.TeamSize = *sub.TeamSize
	}

	if website := strings.TrimSpace(sub.Website); website != "" {
		normalized, err := fetch.NormalizeURL(website)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Ignoring website %q: it is not a valid web address.", website))
		} else {
			rc.WebsiteURL = normalized
		}
	}

	fieldErrs = append(fieldErrs, rc.Validate()...)
	return rc, fieldErrs, warnings
}

// applyPreset fills only the fields sub left unset.
func applyPreset(sub *types.Submission, p catalog.Preset) {
	if sub.Role == nil {
		sub.Role = types.StringPtr(p.Role)
	}
	if sub.Seniority == nil {
		sub.Seniority = types.StringPtr(string(p.Seniority))
	}
	if sub.Function == nil {
		sub.Function = types.StringPtr(string(p.Function))
	}
	if sub.TeamSize == nil && p.TeamSize > 0 {
		sub.TeamSize = types.IntPtr(p.TeamSize)
	}
	if sub.CustomerFacing == nil && p.CustomerFacing != nil {
		sub.CustomerFacing = types.BoolPtr(*p.CustomerFacing)
	}
	if sub.ManagerPriorities == nil {
		sub.ManagerPriorities = types.StringPtr(p.ManagerPriorities)
	}
	if sub.KnownConstraints == nil && p.KnownConstraints != "" {
		sub.KnownConstraints = types.StringPtr(p.KnownConstraints)
	}
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// parseOr parses a set field. Values that fail to parse are kept as-is so validation
// reports them as unknown.
func parseOr[T ~string](p *string, parse func(string) (T, error)) T {
	raw := trimmed(p)
	if raw == "" {
		return ""
	}
	v, err := parse(raw)
	if err != nil {
		return T(raw)
	}
	return v
}
