package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/config"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/metrics"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/server"
)

var (
	servePort int
	serveOpts commonFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes plan generation, presets, exports and Prometheus metrics.

POST routes require a bearer token when JWT_SECRET is set (see 'token').`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	addCommonFlags(serveCmd, &serveOpts)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	cfg, err := serveOpts.resolve(cmd)
	if err != nil {
		return err
	}

	jwtConfig, err := serverJWTConfig()
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	a, err := newApp(ctx, cfg, rec)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(server.Config{
		Port:    servePort,
		JWT:     jwtConfig,
		Metrics: rec,
	}, a.pipeline(nil))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// serverJWTConfig enables bearer auth only when JWT_SECRET is set.
func serverJWTConfig() (*config.JWTConfig, error) {
	if os.Getenv("JWT_SECRET") == "" {
		log.Printf("[auth] JWT_SECRET not set; POST routes are open")
		return nil, nil
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	return jwtConfig, nil
}
