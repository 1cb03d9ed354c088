// Package llm provides the oracle abstraction over hosted and local language model providers.
package llm

import (
	"fmt"
	"sort"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for quick, inexpensive drafts
	TierLite ModelTier = "lite"
	// TierStandard is the default tier for plan generation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for the most capable model a provider offers
	TierAdvanced ModelTier = "advanced"
)

// ParseModelTier accepts lite, standard or advanced, case-insensitively. Empty means standard.
func ParseModelTier(s string) (ModelTier, error) {
	switch t := ModelTier(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TierStandard, nil
	case TierLite, TierStandard, TierAdvanced:
		return t, nil
	default:
		return "", fmt.Errorf("unknown model tier %q (supported: lite, standard, advanced)", s)
	}
}

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic provider
	ProviderAnthropic Provider = "anthropic"
	// ProviderOllama is a local Ollama server
	ProviderOllama Provider = "ollama"
)

// DefaultOllamaHost is used when OLLAMA_HOST is unset.
const DefaultOllamaHost = "http://localhost:11434"

var defaultModels = map[Provider]map[ModelTier]string{
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		TierLite:     "gpt-4o-mini",
		TierStandard: "gpt-4o",
		TierAdvanced: "gpt-5",
	},
	ProviderAnthropic: {
		TierLite:     "claude-3-5-haiku-latest",
		TierStandard: "claude-sonnet-4-5",
		TierAdvanced: "claude-opus-4-1",
	},
	ProviderOllama: {
		TierLite:     "llama3.2:3b",
		TierStandard: "mistral-nemo:latest",
		TierAdvanced: "llama3.3:70b",
	},
}

var apiKeyEnv = map[Provider]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Host is the server URL for ProviderOllama; ignored by hosted providers.
	Host string
}

// Providers returns every supported provider, sorted.
func Providers() []Provider {
	out := make([]Provider, 0, len(defaultModels))
	for p := range defaultModels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseProvider converts a case-insensitive name into a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := defaultModels[p]; !ok {
		return "", fmt.Errorf("unknown provider %q (supported: %s)", s, joinProviders(Providers()))
	}
	return p, nil
}

func joinProviders(ps []Provider) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// APIKeyEnv returns the environment variable holding the provider's API key, or "" when
// the provider needs none.
func (p Provider) APIKeyEnv() string {
	return apiKeyEnv[p]
}

// RequiresAPIKey reports whether the provider authenticates with an API key.
func (p Provider) RequiresAPIKey() bool {
	return p.APIKeyEnv() != ""
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	cfg, _ := DefaultConfigFor(ProviderGemini)
	return cfg
}

// DefaultConfigFor returns the default model table for a provider.
func DefaultConfigFor(p Provider) (*Config, error) {
	models, ok := defaultModels[p]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", p)
	}
	cfg := &Config{Provider: p, Models: make(map[ModelTier]string, len(models))}
	for tier, model := range models {
		cfg.Models[tier] = model
	}
	if p == ProviderOllama {
		cfg.Host = DefaultOllamaHost
	}
	return cfg, nil
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string),
		Host:     c.Host,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
