// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/catalog"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/fetch"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/synthesis"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxValueLength bounds free-text values shown inside boxes
	maxValueLength = 120
)

// Printer handles formatted output for the CLI
type Printer struct {
	out   io.Writer
	box   lipgloss.Style
	title lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer. Colors are used only
// when out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(boxWidth),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		good:  r.NewStyle().Foreground(lipgloss.Color("#3FB950")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#D29922")),
		bad:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := lipgloss.JoinVertical(lipgloss.Left, p.title.Render(title), "", content)
	fmt.Fprintln(p.out, p.box.Render(body))
}

// PrintContext outputs the resolved role context.
func (p *Printer) PrintContext(rc *types.RoleContext) {
	if rc == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:        %s\n", rc.Role)
	fmt.Fprintf(&sb, "Seniority:   %s\n", rc.Seniority.Label())
	fmt.Fprintf(&sb, "Function:    %s\n", rc.Function.Label())
	fmt.Fprintf(&sb, "Stage:       %s (%s)\n", rc.CompanyStage.Label(), rc.CompanySize.Label())
	fmt.Fprintf(&sb, "Team size:   %d\n", rc.TeamSize)
	fmt.Fprintf(&sb, "Customer-facing: %s\n", yesNo(rc.CustomerFacing))
	if rc.CompanyName != "" {
		fmt.Fprintf(&sb, "Company:     %s\n", rc.CompanyName)
	}
	if rc.WebsiteURL != "" {
		fmt.Fprintf(&sb, "Website:     %s\n", rc.WebsiteURL)
	}
	if rc.HasWebsiteSummary() {
		fmt.Fprintf(&sb, "Summary:     %s\n", truncate(rc.WebsiteSummary, maxValueLength))
	}
	sb.WriteString("\nManager priorities:\n")
	sb.WriteString("  " + truncate(rc.ManagerPriorities, maxValueLength*2))
	if rc.KnownConstraints != "" {
		sb.WriteString("\n\nKnown constraints:\n")
		sb.WriteString("  " + truncate(rc.KnownConstraints, maxValueLength*2))
	}

	p.printBox("ROLE CONTEXT", sb.String())
}

// PrintInstruction outputs what will be sent to the oracle.
func (p *Printer) PrintInstruction(instr *synthesis.Instruction, promptTokens int) {
	if instr == nil {
		return
	}

	var sb strings.Builder
	mode := "named tools"
	if !instr.UsesNamedTools {
		mode = "generic categories"
	}
	fmt.Fprintf(&sb, "Tool vocabulary: %s (%s)\n", strings.Join(instr.Vocabulary, ", "), mode)
	fmt.Fprintf(&sb, "Instruction size: %d characters, ~%d tokens", len(instr.Text()), promptTokens)

	p.printBox("INSTRUCTION", sb.String())
}

// PrintPlanSummary outputs the verdict, quality score and the factors behind it.
func (p *Printer) PrintPlanSummary(plan *types.GeneratedPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Verdict:  %s\n", p.verdict(plan.Validation.Verdict))
	fmt.Fprintf(&sb, "Score:    %d/100\n", plan.QualityScore)
	fmt.Fprintf(&sb, "Model:    %s/%s in %s\n", plan.Provider, plan.Model, plan.OracleDuration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Length:   %d words across %d weeks\n\n", plan.Metrics.WordCount, plan.Metrics.DistinctWeeks)

	for _, f := range validation.Factors(plan.Metrics) {
		if f.Satisfied {
			sb.WriteString(p.good.Render("✓ "+f.Name) + "\n")
		} else {
			sb.WriteString(p.muted.Render("✗ "+f.Name) + "\n")
		}
	}

	p.printBox("PLAN QUALITY", strings.TrimSuffix(sb.String(), "\n"))
}

func (p *Printer) verdict(v types.Verdict) string {
	switch {
	case v == types.VerdictAccepted:
		return p.good.Render(string(v))
	case v.Rejected():
		return p.bad.Render(string(v))
	default:
		return p.warn.Render(string(v))
	}
}

// PrintWarnings outputs non-fatal warnings, one per line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(p.out, p.warn.Render("⚠ "+w))
	}
}

// PrintFieldErrors outputs validation failures.
func (p *Printer) PrintFieldErrors(errs []types.FieldError) {
	if len(errs) == 0 {
		return
	}

	var sb strings.Builder
	for _, fe := range errs {
		fmt.Fprintf(&sb, "• %s: %s\n", fe.Field, fe.Message)
	}
	p.printBox("PLEASE FIX THESE FIELDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintError outputs a single failure message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintError(message string) {
	fmt.Fprintln(p.out, p.bad.Render("✗ "+message))
}

// PrintPresets outputs the preset names with their seniority and function.
func (p *Printer) PrintPresets(presets []catalog.Preset) {
	if len(presets) == 0 {
		return
	}

	var sb strings.Builder
	for _, preset := range presets {
		fmt.Fprintf(&sb, "• %s\n", preset.Name)
		sb.WriteString(p.muted.Render(fmt.Sprintf("  %s · %s", preset.Seniority.Label(), preset.Function.Label())) + "\n")
	}
	p.printBox(fmt.Sprintf("PRESETS (%d)", len(presets)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPreset outputs every field a preset fills.
func (p *Printer) PrintPreset(preset catalog.Preset) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:       %s\n", preset.Role)
	fmt.Fprintf(&sb, "Seniority:  %s\n", preset.Seniority.Label())
	fmt.Fprintf(&sb, "Function:   %s\n", preset.Function.Label())
	if preset.TeamSize > 0 {
		fmt.Fprintf(&sb, "Team size:  %d\n", preset.TeamSize)
	}
	if preset.CustomerFacing != nil {
		fmt.Fprintf(&sb, "Customer-facing: %s\n", yesNo(*preset.CustomerFacing))
	}
	fmt.Fprintf(&sb, "\nManager priorities:\n  %s", preset.ManagerPriorities)
	if preset.KnownConstraints != "" {
		fmt.Fprintf(&sb, "\n\nKnown constraints:\n  %s", preset.KnownConstraints)
	}
	p.printBox(strings.ToUpper(preset.Name), sb.String())
}

// PrintSiteSummary outputs a website summary.
func (p *Printer) PrintSiteSummary(s *fetch.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "URL:    %s\n", s.URL)
	fmt.Fprintf(&sb, "Source: %s\n\n", s.Source)
	fmt.Fprintf(&sb, "Title:  %s\n", orNone(s.Title))
	fmt.Fprintf(&sb, "About:  %s", orNone(s.Description))
	p.printBox("WEBSITE SUMMARY", sb.String())
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
