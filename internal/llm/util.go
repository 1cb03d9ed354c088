package llm

import "strings"

// TrimFence removes a markdown code fence wrapped around the whole response.
// Models sometimes wrap a markdown document in ```markdown ... ``` even when told not to.
func TrimFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := body[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			body = body[idx+1:]
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "```") {
		// Unbalanced fence: the model opened a code block it never closed
		return strings.TrimSpace(body)
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
