package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/fetch"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/observability"
)

var summarizeSiteCmd = &cobra.Command{
	Use:   "summarize-site <url>",
	Short: "Fetch a company website and print the summary used as plan context",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarizeSite,
}

var (
	summarizeUseBrowser bool
	summarizeVerbose    bool
	summarizeJSON       bool
	summarizeTimeout    time.Duration
)

func init() {
	summarizeSiteCmd.Flags().BoolVar(&summarizeUseBrowser, "use-browser", false, "Retry in a headless browser when the static page has no title or description (requires Chrome)")
	summarizeSiteCmd.Flags().BoolVarP(&summarizeVerbose, "verbose", "v", false, "Print detailed debug information")
	summarizeSiteCmd.Flags().BoolVar(&summarizeJSON, "json", false, "Print JSON instead of formatted output")
	summarizeSiteCmd.Flags().DurationVar(&summarizeTimeout, "timeout", fetch.DefaultOptions().Timeout, "HTTP timeout")
	rootCmd.AddCommand(summarizeSiteCmd)
}

func runSummarizeSite(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	summarizer := fetch.NewSummarizer(summarizeUseBrowser, summarizeVerbose)
	summarizer.Options.Timeout = summarizeTimeout

	summary, err := summarizer.FetchSummary(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to summarize site: %w", err)
	}

	if summarizeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSiteSummary(summary)
	return nil
}
