package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		wantKind   Kind
		wantStatus int
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), 0, KindTimeout, 0},
		{"401 typed", errors.New("boom"), 401, KindAuthInvalid, 401},
		{"403 typed", errors.New("boom"), 403, KindAuthInvalid, 403},
		{"429 typed", errors.New("boom"), 429, KindRateLimited, 429},
		{"408 typed", errors.New("boom"), 408, KindTimeout, 408},
		{"504 typed", errors.New("boom"), 504, KindTimeout, 504},
		{"503 typed", errors.New("boom"), 503, KindConnectionError, 503},
		{"400 typed", errors.New("boom"), 400, KindOther, 400},
		{"status in text", errors.New("POST /v1/messages: status code: 429 Too Many Requests"), 0, KindRateLimited, 429},
		{"net timeout", timeoutErr{}, 0, KindTimeout, 0},
		{"dial error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, 0, KindConnectionError, 0},
		{"dns error", &net.DNSError{Name: "api.example", Err: "no such host"}, 0, KindConnectionError, 0},
		{"api key text", errors.New("API key not valid. Please pass a valid API key."), 0, KindAuthInvalid, 0},
		{"quota text", errors.New("rpc error: code = ResourceExhausted desc = quota exceeded"), 0, KindRateLimited, 0},
		{"deadline text", errors.New("rpc error: code = DeadlineExceeded"), 0, KindTimeout, 0},
		{"refused text", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), 0, KindConnectionError, 0},
		{"unknown", errors.New("model produced invalid output"), 0, KindOther, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(ProviderOpenAI, tt.err, tt.status)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, ProviderOpenAI, got.Provider)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, classify(ProviderGemini, nil, 0))
}

func TestClassify_KeepsExistingError(t *testing.T) {
	original := &Error{Kind: KindRateLimited, Provider: ProviderGemini}
	got := classify(ProviderOpenAI, fmt.Errorf("wrapped: %w", original), 500)
	assert.Same(t, original, got)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("generate: %w", &Error{Kind: KindAuthInvalid})
	assert.Equal(t, KindAuthInvalid, KindOf(err))
	assert.Equal(t, KindOther, KindOf(errors.New("plain")))
	assert.Equal(t, KindOther, KindOf(nil))
}

func TestKind_UserMessagesAreDistinct(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range []Kind{KindAuthInvalid, KindRateLimited, KindTimeout, KindConnectionError, KindOther} {
		msg := k.UserMessage()
		require.NotEmpty(t, msg)
		_, dup := seen[msg]
		assert.False(t, dup, "message for %s is shared", k)
		seen[msg] = k
	}
	assert.Equal(t, KindOther.UserMessage(), Kind("bogus").UserMessage())
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindAuthInvalid, Provider: ProviderAnthropic, StatusCode: 401, Message: "bad key"}
	assert.Equal(t, "oracle (anthropic) auth_invalid [HTTP 401]: bad key", err.Error())

	wrapped := &Error{Kind: KindOther, Err: errors.New("cause")}
	assert.Equal(t, "oracle other: cause", wrapped.Error())
}
