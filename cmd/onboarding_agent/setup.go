package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/catalog"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/collector"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/config"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/db"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/fetch"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/metrics"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/pipeline"
)

// commonFlags are the oracle and runtime flags shared by generate and serve.
type commonFlags struct {
	configPath  string
	provider    string
	model       string
	tier        string
	apiKey      string
	temperature float64
	maxTokens   int
	timeout     int
	useBrowser  bool
	verbose     bool
	databaseURL string
	presetsFile string
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVar(&f.provider, "provider", "", "Model provider: gemini, openai, anthropic or ollama (default gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (defaults to the provider's model for the tier)")
	cmd.Flags().StringVar(&f.tier, "tier", "", "Model tier: lite, standard or advanced (default standard)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Provider API key (optional, defaults to the provider's env var)")
	cmd.Flags().Float64Var(&f.temperature, "temperature", llm.DefaultTemperature, "Sampling temperature between 0 and 1")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", llm.DefaultMaxOutputTokens, "Maximum output tokens")
	cmd.Flags().IntVar(&f.timeout, "timeout", int(llm.DefaultTimeout.Seconds()), "Oracle timeout in seconds")
	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Use headless browser for JS-rendered company sites (requires Chrome)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL URL for the website summary cache (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&f.presetsFile, "presets", "", "YAML preset catalog replacing the built-in presets")
}

// resolve loads the config file, applies the flags the user changed and fills defaults.
func (f *commonFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = f.provider
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
	if flags.Changed("tier") {
		cfg.Tier = f.tier
	}
	if flags.Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if flags.Changed("temperature") {
		t := f.temperature
		cfg.Temperature = &t
	}
	if flags.Changed("max-tokens") {
		cfg.MaxOutputTokens = f.maxTokens
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = f.timeout
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if flags.Changed("presets") {
		cfg.PresetsFile = f.presetsFile
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.Verbose && f.configPath != "" {
		log.Printf("[VERBOSE] Loaded config from: %s", f.configPath)
	}
	return cfg, nil
}

// loadCatalog returns the configured preset catalog or the built-in one.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	return cat, nil
}

// app holds the components one command builds from a resolved config.
type app struct {
	cfg       config.Config
	catalog   *catalog.Catalog
	collector *collector.Collector
	metrics   *metrics.Recorder
	database  *db.DB
	oracle    llm.Oracle
}

// newCollector builds the catalog and the cached website summarizer. A database URL
// adds the persistent summary cache; an unreachable database only disables it.
func newCollector(ctx context.Context, cfg config.Config, rec *metrics.Recorder) (*app, error) {
	cat, err := loadCatalog(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, catalog: cat, metrics: rec}

	cacheConfig := fetch.DefaultCacheConfig()
	cacheConfig.Metrics = rec
	cacheConfig.Verbose = cfg.Verbose
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("[fetch] Persistent summary cache disabled: %v", err)
		} else if err := database.EnsureSchema(ctx); err != nil {
			log.Printf("[fetch] Persistent summary cache disabled: %v", err)
			database.Close()
		} else {
			a.database = database
			cacheConfig.Store = database
		}
	}

	summarizer := fetch.NewCachedSummarizer(fetch.NewSummarizer(cfg.UseBrowser, cfg.Verbose), cacheConfig)
	a.collector = collector.New(cat, summarizer)
	a.collector.Verbose = cfg.Verbose
	return a, nil
}

// newApp builds every component including the oracle.
func newApp(ctx context.Context, cfg config.Config, rec *metrics.Recorder) (*app, error) {
	a, err := newCollector(ctx, cfg, rec)
	if err != nil {
		return nil, err
	}

	oracleConfig, tier, err := cfg.OracleConfig()
	if err != nil {
		a.Close()
		return nil, err
	}
	oracle, err := llm.NewOracle(ctx, oracleConfig, tier, cfg.APIKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}
	a.oracle = llm.WithVerbose(oracle, cfg.Verbose)
	return a, nil
}

// pipeline returns a submission pipeline over the app's components.
func (a *app) pipeline(onProgress pipeline.ProgressCallback) *pipeline.Pipeline {
	return pipeline.New(a.collector, nil, a.oracle, pipeline.Options{
		Temperature:     a.cfg.TemperatureOrDefault(),
		MaxOutputTokens: a.cfg.MaxOutputTokens,
		Timeout:         a.cfg.Timeout(),
		Metrics:         a.metrics,
		Verbose:         a.cfg.Verbose,
		OnProgress:      onProgress,
	})
}

// Close releases the oracle client and the database pool.
func (a *app) Close() {
	if a.oracle != nil {
		if err := a.oracle.Close(); err != nil {
			log.Printf("[oracle] Close failed: %v", err)
		}
	}
	if a.database != nil {
		a.database.Close()
	}
}
