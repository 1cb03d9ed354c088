package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// openAIClient implements completer with the OpenAI Responses API.
type openAIClient struct {
	client openai.Client
}

func newOpenAI(apiKey string, opts ...option.RequestOption) *openAIClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &openAIClient{client: openai.NewClient(opts...)}
}

func (c *openAIClient) complete(ctx context.Context, model string, req CompletionRequest) (string, error) {
	params := responses.ResponseNewParams{
		Model:           model,
		MaxOutputTokens: openai.Int(int64(req.MaxOutputTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(req.User)},
		Temperature:     openai.Float(req.Temperature),
	}
	if req.System != "" {
		params.Instructions = openai.String(req.System)
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.OutputText(), nil
}

func (c *openAIClient) close() error {
	return nil
}

func openAIStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
