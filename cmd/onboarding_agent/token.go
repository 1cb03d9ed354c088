package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/config"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API server",
	Long:  `Mint a bearer token signed with JWT_SECRET. Send it as "Authorization: Bearer <token>" on POST routes.`,
	RunE:  runToken,
}

var (
	tokenClient string
	tokenHours  int
)

func init() {
	tokenCmd.Flags().StringVar(&tokenClient, "client", "", "Name of the client the token is issued to")
	tokenCmd.Flags().IntVar(&tokenHours, "hours", 0, "Token lifetime in hours (default: JWT_EXPIRATION_HOURS or 24)")

	if err := tokenCmd.MarkFlagRequired("client"); err != nil {
		panic(fmt.Sprintf("failed to mark 'client' flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	return mintToken(cmd.OutOrStdout(), tokenClient, tokenHours)
}

// mintToken prints a token for client. A positive hours overrides the configured lifetime.
func mintToken(out io.Writer, client string, hours int) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	if hours > 0 {
		jwtConfig.ExpirationHours = hours
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(client)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
