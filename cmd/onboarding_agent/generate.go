package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/export"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/observability"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/pipeline"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/schemas"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a 90-day onboarding plan",
	Long: `Collects the role context from flags, a preset and an optional submission file, asks the
model for a week-by-week plan once, and validates the response.

Explicit flags win over --in, which wins over the preset. Configuration can be loaded from a
JSON file using --config; command-line flags override config file values.`,
	RunE: runGenerate,
}

var (
	generateOpts   commonFlags
	generateIn     string
	generateMDOut  string
	generatePDFOut string
)

func init() {
	addCommonFlags(generateCmd, &generateOpts)
	addSubmissionFlags(generateCmd)

	generateCmd.Flags().StringVar(&generateIn, "in", "", "Path to a submission JSON file")
	generateCmd.Flags().StringVar(&generateMDOut, "md-out", "", "Write the plan as Markdown to this path (default: print to stdout)")
	generateCmd.Flags().StringVar(&generatePDFOut, "pdf-out", "", "Also write the plan as PDF to this path")

	rootCmd.AddCommand(generateCmd)
}

// addSubmissionFlags registers one flag per form field.
func addSubmissionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("preset", "p", "", "Preset role to start from (see 'presets')")
	cmd.Flags().StringP("role", "r", "", "Role title, e.g. \"Customer Success Manager\"")
	cmd.Flags().String("seniority", "", "junior, mid, senior, manager or executive (labels like \"Mid-level\" also work)")
	cmd.Flags().String("function", "", "customer_success, sales, revops, support, marketing or other")
	cmd.Flags().String("stage", "", "Company stage: seed, series_a, series_b, growth or enterprise")
	cmd.Flags().String("size", "", "Company size: 1-10, 11-50, 51-200, 201-1000 or 1000+")
	cmd.Flags().Int("team-size", 0, "Size of the hire's team")
	cmd.Flags().Bool("customer-facing", false, "Whether the role talks to customers")
	cmd.Flags().String("priorities", "", "What the manager needs from the hire in the first 90 days")
	cmd.Flags().String("constraints", "", "Known constraints, e.g. limited tooling or a pending reorg")
	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("website", "", "Company website to summarize for context")
}

// applySubmissionFlags copies every submission flag the user changed onto sub.
func applySubmissionFlags(cmd *cobra.Command, sub *types.Submission) error {
	flags := cmd.Flags()

	fields := []struct {
		name   string
		target **string
	}{
		{"role", &sub.Role},
		{"seniority", &sub.Seniority},
		{"function", &sub.Function},
		{"stage", &sub.CompanyStage},
		{"size", &sub.CompanySize},
		{"priorities", &sub.ManagerPriorities},
		{"constraints", &sub.KnownConstraints},
		{"company", &sub.CompanyName},
	}
	for _, s := range fields {
		if !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.target = types.StringPtr(v)
	}

	if flags.Changed("preset") {
		v, err := flags.GetString("preset")
		if err != nil {
			return err
		}
		sub.Preset = v
	}
	if flags.Changed("website") {
		v, err := flags.GetString("website")
		if err != nil {
			return err
		}
		sub.Website = v
	}
	if flags.Changed("team-size") {
		v, err := flags.GetInt("team-size")
		if err != nil {
			return err
		}
		sub.TeamSize = types.IntPtr(v)
	}
	if flags.Changed("customer-facing") {
		v, err := flags.GetBool("customer-facing")
		if err != nil {
			return err
		}
		sub.CustomerFacing = types.BoolPtr(v)
	}
	return nil
}

// loadSubmission reads and schema-validates a submission JSON file.
func loadSubmission(path string) (types.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Submission{}, fmt.Errorf("failed to read submission file: %w", err)
	}
	if err := schemas.ValidateSubmission(data); err != nil {
		return types.Submission{}, fmt.Errorf("submission file %s: %w", path, err)
	}
	var sub types.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return types.Submission{}, fmt.Errorf("failed to parse submission file: %w", err)
	}
	return sub, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	cfg, err := generateOpts.resolve(cmd)
	if err != nil {
		return err
	}

	var sub types.Submission
	if generateIn != "" {
		if sub, err = loadSubmission(generateIn); err != nil {
			return err
		}
	}
	if err := applySubmissionFlags(cmd, &sub); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(os.Stdout)
	outcome := a.pipeline(progressPrinter(os.Stderr)).Run(ctx, sub)
	return reportOutcome(printer, os.Stdout, outcome, cfg.Verbose)
}

// progressPrinter reports each state transition on one line.
func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", e.State, e.Message)
	}
}

// reportOutcome prints the outcome and writes the requested files. It returns an error
// for every terminal state that produced no plan.
func reportOutcome(printer *observability.Printer, out io.Writer, outcome *pipeline.Outcome, verbose bool) error {
	printer.PrintWarnings(outcome.Warnings)

	switch outcome.State {
	case pipeline.StateInvalid:
		printer.PrintFieldErrors(outcome.FieldErrors)
		return errors.New(outcome.Message())
	case pipeline.StateError:
		printer.PrintError(outcome.Message())
		return outcome.Err
	}

	if verbose && outcome.Instruction != nil {
		printer.PrintContext(outcome.Context)
		printer.PrintInstruction(outcome.Instruction, outcome.Plan.PromptTokens)
	}
	printer.PrintPlanSummary(outcome.Plan)

	if generateMDOut != "" {
		if err := writeExport(export.FormatMarkdown, outcome.Plan.Text, generateMDOut); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Markdown written to %s\n", generateMDOut)
	} else {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprint(out, string(export.Markdown(outcome.Plan.Text)))
	}

	if generatePDFOut != "" {
		if err := writeExport(export.FormatPDF, outcome.Plan.Text, generatePDFOut); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "PDF written to %s\n", generatePDFOut)
	}
	return nil
}
