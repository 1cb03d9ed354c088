package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// ollamaClient implements completer against a local Ollama server.
type ollamaClient struct {
	client *api.Client
	host   string
}

func newOllama(host string) (*ollamaClient, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid Ollama host %q", host)
	}
	return &ollamaClient{client: api.NewClient(parsed, http.DefaultClient), host: host}, nil
}

func (c *ollamaClient) complete(ctx context.Context, model string, req CompletionRequest) (string, error) {
	messages := make([]api.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.User})

	stream := false
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxOutputTokens,
		},
	}

	var response api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return "", err
	}
	return response.Message.Content, nil
}

func (c *ollamaClient) close() error {
	return nil
}

func ollamaStatus(err error) int {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	var statusPtr *api.StatusError
	if errors.As(err, &statusPtr) {
		return statusPtr.StatusCode
	}
	return 0
}
