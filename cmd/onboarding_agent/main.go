// Package main provides the onboarding_agent CLI: plan generation, presets, exports and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "onboarding_agent",
	Short: "Onboarding Plan Generator",
	Long:  "Onboarding Plan Generator turns a short description of a new hire's role and company into a week-by-week 90-day onboarding plan using a language model.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
