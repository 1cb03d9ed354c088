// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Oracle
	Provider        string   `json:"provider,omitempty"`          // gemini, openai, anthropic or ollama
	Model           string   `json:"model,omitempty"`             // Overrides the provider's model for the tier
	Tier            string   `json:"tier,omitempty"`              // lite, standard or advanced
	Temperature     *float64 `json:"temperature,omitempty"`       // Sampling temperature (0.0-1.0)
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"` // Response length limit
	TimeoutSeconds  int      `json:"timeout_seconds,omitempty"`   // Oracle call timeout
	APIKey          string   `json:"api_key,omitempty"`           // Provider API key
	OllamaHost      string   `json:"ollama_host,omitempty"`       // Ollama server URL

	// Behavior
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for JS-rendered company sites
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL for the website summary cache
	PresetsFile string `json:"presets_file,omitempty"` // YAML catalog replacing the built-in presets
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	temperature := llm.DefaultTemperature
	return Config{
		Provider:        string(llm.ProviderGemini),
		Tier:            string(llm.TierStandard),
		Temperature:     &temperature,
		MaxOutputTokens: llm.DefaultMaxOutputTokens,
		TimeoutSeconds:  int(llm.DefaultTimeout / time.Second),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := llm.ParseProvider(c.Provider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if _, err := llm.ParseModelTier(c.Tier); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate numeric ranges
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 1) {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 1")
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("config error: 'max_output_tokens' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.PresetsFile != "" {
		if _, err := os.Stat(c.PresetsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: presets file not found: %s", c.PresetsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Tier == "" {
		result.Tier = defaults.Tier
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.OllamaHost == "" {
		result.OllamaHost = defaults.OllamaHost
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.PresetsFile == "" {
		result.PresetsFile = defaults.PresetsFile
	}

	// Int fields: use default if zero
	if result.MaxOutputTokens == 0 {
		result.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	// Temperature is a pointer so an explicit 0 survives the merge
	if result.Temperature == nil && defaults.Temperature != nil {
		t := *defaults.Temperature
		result.Temperature = &t
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns the oracle call timeout, or the default when unset.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return llm.DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TemperatureOrDefault returns the sampling temperature, or the default when unset.
func (c *Config) TemperatureOrDefault() float64 {
	if c.Temperature == nil {
		return llm.DefaultTemperature
	}
	return *c.Temperature
}

// OracleConfig builds the provider configuration and the model tier to request.
func (c *Config) OracleConfig() (*llm.Config, llm.ModelTier, error) {
	provider := llm.ProviderGemini
	if c.Provider != "" {
		p, err := llm.ParseProvider(c.Provider)
		if err != nil {
			return nil, "", err
		}
		provider = p
	}
	tier, err := llm.ParseModelTier(c.Tier)
	if err != nil {
		return nil, "", err
	}

	cfg, err := llm.DefaultConfigFor(provider)
	if err != nil {
		return nil, "", err
	}
	if c.Model != "" {
		cfg = cfg.WithModel(tier, c.Model)
	}
	if c.OllamaHost != "" {
		cfg.Host = c.OllamaHost
	}
	return cfg, tier, nil
}
