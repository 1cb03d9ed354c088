package llm

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Every provider's tokenizer is approximated with the GPT-4 encoding.
var codec = sync.OnceValues(func() (tokenizer.Codec, error) {
	return tokenizer.ForModel(tokenizer.GPT4)
})

// CountTokens estimates the number of tokens in text. It falls back to four
// characters per token when the codec is unavailable.
func CountTokens(text string) int {
	c, err := codec()
	if err != nil || c == nil {
		return len(text) / 4
	}
	count, err := c.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}

// PromptTokens estimates the tokens consumed by a request's instructions.
func (r CompletionRequest) PromptTokens() int {
	return CountTokens(r.System) + CountTokens(r.User)
}

// FitsBudget reports whether the instructions plus the requested output fit in a
// context window of window tokens.
func (r CompletionRequest) FitsBudget(window int) bool {
	return r.PromptTokens()+r.MaxOutputTokens <= window
}
