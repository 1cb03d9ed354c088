package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies why an oracle call failed.
type Kind string

// Failure kinds reported to the user.
const (
	KindAuthInvalid     Kind = "auth_invalid"
	KindRateLimited     Kind = "rate_limited"
	KindTimeout         Kind = "timeout"
	KindConnectionError Kind = "connection_error"
	KindOther           Kind = "other"
)

var userMessages = map[Kind]string{
	KindAuthInvalid:     "The model provider rejected the API key. Check the key for the selected provider and try again.",
	KindRateLimited:     "The model provider is rate limiting requests. Wait a minute before generating again.",
	KindTimeout:         "The model did not respond in time. Try again, or raise the timeout.",
	KindConnectionError: "Could not reach the model provider. Check your network connection or the server address.",
	KindOther:           "The model request failed. Try again; if it keeps failing, switch model or provider.",
}

// UserMessage returns the remediation text shown for a failure kind.
func (k Kind) UserMessage() string {
	if msg, ok := userMessages[k]; ok {
		return msg
	}
	return userMessages[KindOther]
}

// Error represents a failed oracle call
type Error struct {
	Kind       Kind
	Provider   Provider
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("oracle")
	if e.Provider != "" {
		sb.WriteString(" (" + string(e.Provider) + ")")
	}
	sb.WriteString(" " + string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " [HTTP %d]", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or KindOther when err is not an *Error.
func KindOf(err error) Kind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindOther
}

// KindForStatus maps an HTTP status code to a failure kind. ok is false for codes that
// carry no classification.
func KindForStatus(code int) (kind Kind, ok bool) {
	switch {
	case code == 401 || code == 403:
		return KindAuthInvalid, true
	case code == 429:
		return KindRateLimited, true
	case code == 408 || code == 504:
		return KindTimeout, true
	case code == 502 || code == 503:
		return KindConnectionError, true
	case code >= 400:
		return KindOther, true
	}
	return "", false
}

var statusInTextRe = regexp.MustCompile(`(?i)(?:status(?: code)?:?|http)\s*(\d{3})\b`)

// classify turns a provider error into an *Error. statusCode is the code extracted from
// the SDK's typed error, or 0.
func classify(provider Provider, err error, statusCode int) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	e := &Error{Provider: provider, Err: err, StatusCode: statusCode}

	if errors.Is(err, context.DeadlineExceeded) {
		e.Kind = KindTimeout
		e.Message = "request timeout"
		return e
	}

	if statusCode == 0 {
		if m := statusInTextRe.FindStringSubmatch(err.Error()); m != nil {
			statusCode, _ = strconv.Atoi(m[1])
			e.StatusCode = statusCode
		}
	}
	if kind, ok := KindForStatus(statusCode); ok {
		e.Kind = kind
		return e
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		e.Kind = KindTimeout
		return e
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &urlErr) {
		e.Kind = KindConnectionError
		return e
	}

	e.Kind = kindFromText(err.Error())
	return e
}

func kindFromText(msg string) Kind {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "api key", "api_key", "unauthenticated", "unauthorized", "permission denied", "permissiondenied", "invalid x-api-key"):
		return KindAuthInvalid
	case containsAny(lower, "rate limit", "quota", "resource exhausted", "resourceexhausted", "too many requests"):
		return KindRateLimited
	case containsAny(lower, "deadline exceeded", "deadlineexceeded", "timeout", "timed out"):
		return KindTimeout
	case containsAny(lower, "connection refused", "connection reset", "no such host", "network is unreachable", "eof"):
		return KindConnectionError
	}
	return KindOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func emptyResponseError(provider Provider, model string) *Error {
	return &Error{
		Kind:     KindOther,
		Provider: provider,
		Message:  fmt.Sprintf("model %s returned an empty response", model),
	}
}
