package llm

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// CompletionRequest is one instruction sent to the oracle.
type CompletionRequest struct {
	System          string
	User            string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// Completion is the oracle's free-text answer.
type Completion struct {
	Text     string
	Provider Provider
	Model    string
	Duration time.Duration
}

// Oracle is an abstraction over LLM providers
type Oracle interface {
	// Complete sends one request and returns the response text
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	// Model returns the model name requests are sent to
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// Request limits.
const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 8192
	DefaultTimeout         = 60 * time.Second
)

// Validate checks the request parameters.
func (r CompletionRequest) Validate() error {
	if r.User == "" {
		return fmt.Errorf("user instruction is empty")
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %g", r.Temperature)
	}
	if r.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", r.MaxOutputTokens)
	}
	return nil
}

// completer is the provider-specific half of an Oracle.
type completer interface {
	complete(ctx context.Context, model string, req CompletionRequest) (string, error)
	close() error
}

// client binds a completer to a model and applies the shared request handling:
// parameter checks, the timeout, error classification and empty-response detection.
type client struct {
	provider Provider
	model    string
	impl     completer
	verbose  bool
}

// NewOracle creates an oracle for config.Provider using the model for tier. apiKey
// falls back to the provider's environment variable when empty.
func NewOracle(ctx context.Context, config *Config, tier ModelTier, apiKey string) (Oracle, error) {
	if config == nil {
		config = DefaultConfig()
	}
	model := config.GetModel(tier)
	if model == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	if apiKey == "" && config.Provider.RequiresAPIKey() {
		apiKey = os.Getenv(config.Provider.APIKeyEnv())
	}
	if apiKey == "" && config.Provider.RequiresAPIKey() {
		return nil, fmt.Errorf("API key is required for %s (set %s or pass --api-key)", config.Provider, config.Provider.APIKeyEnv())
	}

	var (
		impl completer
		err  error
	)
	switch config.Provider {
	case ProviderGemini:
		impl, err = newGemini(ctx, apiKey)
	case ProviderOpenAI:
		impl = newOpenAI(apiKey)
	case ProviderAnthropic:
		impl = newAnthropic(apiKey)
	case ProviderOllama:
		host := config.Host
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		impl, err = newOllama(host)
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &client{provider: config.Provider, model: model, impl: impl}, nil
}

// WithVerbose enables request logging on oracles created by NewOracle.
func WithVerbose(o Oracle, verbose bool) Oracle {
	if c, ok := o.(*client); ok {
		c.verbose = verbose
	}
	return o
}

func (c *client) Model() string {
	return c.model
}

func (c *client) Close() error {
	return c.impl.close()
}

func (c *client) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if err := req.Validate(); err != nil {
		return nil, &Error{Kind: KindOther, Provider: c.provider, Message: "invalid request", Err: err}
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if c.verbose {
		log.Printf("[oracle] %s/%s: sending %d chars (temperature %.2f, max tokens %d)", c.provider, c.model, len(req.System)+len(req.User), req.Temperature, req.MaxOutputTokens)
	}

	start := time.Now()
	text, err := c.impl.complete(ctx, c.model, req)
	elapsed := time.Since(start)
	if err != nil {
		classified := classifyProviderError(c.provider, err)
		log.Printf("[oracle] %s/%s failed after %s: %v", c.provider, c.model, elapsed.Round(time.Millisecond), classified)
		return nil, classified
	}

	text = TrimFence(text)
	if text == "" {
		return nil, emptyResponseError(c.provider, c.model)
	}
	if c.verbose {
		log.Printf("[oracle] %s/%s: received %d chars in %s", c.provider, c.model, len(text), elapsed.Round(time.Millisecond))
	}
	return &Completion{Text: text, Provider: c.provider, Model: c.model, Duration: elapsed}, nil
}

func classifyProviderError(provider Provider, err error) *Error {
	switch provider {
	case ProviderGemini:
		return classify(provider, err, geminiStatus(err))
	case ProviderOpenAI:
		return classify(provider, err, openAIStatus(err))
	case ProviderAnthropic:
		return classify(provider, err, anthropicStatus(err))
	case ProviderOllama:
		return classify(provider, err, ollamaStatus(err))
	}
	return classify(provider, err, 0)
}
