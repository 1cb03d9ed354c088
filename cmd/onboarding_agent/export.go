package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a plan text file to Markdown or PDF",
	RunE:  runExport,
}

var (
	exportIn     string
	exportFormat string
	exportOut    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportIn, "in", "i", "", "Path to the plan text")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Output format: markdown or pdf")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default: onboarding_plan.md or onboarding_plan.pdf)")

	if err := exportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark 'in' flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(exportIn)
	if err != nil {
		return fmt.Errorf("failed to read plan: %w", err)
	}

	out := exportOut
	if out == "" {
		out = format.Filename()
	}
	if err := writeExport(format, string(text), out); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully wrote %s to %s\n", format, out)
	return nil
}

// writeExport renders text in format and writes it to path, creating parent directories.
func writeExport(format export.Format, text, path string) error {
	data, err := export.Render(format, text)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
