package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
)

func floatPtr(f float64) *float64 { return &f }

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"provider": "anthropic",
		"model": "claude-sonnet-4-5",
		"temperature": 0,
		"max_output_tokens": 4096,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	require.NotNil(t, cfg.Temperature, "explicit zero temperature is kept")
	assert.Zero(t, *cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxOutputTokens)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	presets := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(presets, []byte("presets: []\n"), 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{}, ""},
		{"defaults", Defaults(), ""},
		{"all providers", Config{Provider: "ollama", Tier: "lite"}, ""},
		{"unknown provider", Config{Provider: "bard"}, "unknown provider"},
		{"unknown tier", Config{Tier: "turbo"}, "unknown model tier"},
		{"temperature too high", Config{Temperature: floatPtr(1.5)}, "'temperature'"},
		{"temperature negative", Config{Temperature: floatPtr(-0.1)}, "'temperature'"},
		{"negative tokens", Config{MaxOutputTokens: -1}, "'max_output_tokens'"},
		{"negative timeout", Config{TimeoutSeconds: -5}, "'timeout_seconds'"},
		{"presets file exists", Config{PresetsFile: presets}, ""},
		{"presets file missing", Config{PresetsFile: "/nonexistent/presets.yaml"}, "presets file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Provider: "openai", Temperature: floatPtr(0)}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "openai", merged.Provider, "set values win")
	assert.Equal(t, "standard", merged.Tier)
	assert.Equal(t, llm.DefaultMaxOutputTokens, merged.MaxOutputTokens)
	assert.Equal(t, 60, merged.TimeoutSeconds)
	require.NotNil(t, merged.Temperature)
	assert.Zero(t, *merged.Temperature, "explicit zero temperature is not replaced")

	empty := Config{}
	merged = empty.MergeWithDefaults(Defaults())
	assert.Equal(t, "gemini", merged.Provider)
	assert.InDelta(t, 0.7, merged.TemperatureOrDefault(), 1e-9)
	assert.Nil(t, empty.Temperature, "receiver is not modified")
}

func TestTimeoutAndTemperature(t *testing.T) {
	assert.Equal(t, llm.DefaultTimeout, (&Config{}).Timeout())
	assert.Equal(t, 90*time.Second, (&Config{TimeoutSeconds: 90}).Timeout())
	assert.InDelta(t, llm.DefaultTemperature, (&Config{}).TemperatureOrDefault(), 1e-9)
	assert.InDelta(t, 0.3, (&Config{Temperature: floatPtr(0.3)}).TemperatureOrDefault(), 1e-9)
}

func TestOracleConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		provider  llm.Provider
		tier      llm.ModelTier
		wantModel string
		wantHost  string
		wantErr   bool
	}{
		{
			name:      "defaults to gemini standard",
			cfg:       Config{},
			provider:  llm.ProviderGemini,
			tier:      llm.TierStandard,
			wantModel: "gemini-2.5-flash",
		},
		{
			name:      "model override",
			cfg:       Config{Provider: "openai", Tier: "advanced", Model: "gpt-4.1"},
			provider:  llm.ProviderOpenAI,
			tier:      llm.TierAdvanced,
			wantModel: "gpt-4.1",
		},
		{
			name:      "ollama host",
			cfg:       Config{Provider: "ollama", OllamaHost: "http://gpu-box:11434"},
			provider:  llm.ProviderOllama,
			tier:      llm.TierStandard,
			wantModel: "mistral-nemo:latest",
			wantHost:  "http://gpu-box:11434",
		},
		{name: "bad provider", cfg: Config{Provider: "bard"}, wantErr: true},
		{name: "bad tier", cfg: Config{Tier: "turbo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, tier, err := tt.cfg.OracleConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, cfg.Provider)
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.wantModel, cfg.GetModel(tier))
			if tt.wantHost != "" {
				assert.Equal(t, tt.wantHost, cfg.Host)
			}
		})
	}
}
