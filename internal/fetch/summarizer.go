package fetch

import (
	"context"
	"errors"
	"log"
	"time"
)

// SummaryFetcher produces a website summary for a URL.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, rawURL string) (*Summary, error)
}

// Summarizer fetches a page over HTTP and extracts its summary, optionally retrying in a
// headless browser when the static HTML has neither a title nor a description.
type Summarizer struct {
	Options        *Options
	UseBrowser     bool
	BrowserTimeout time.Duration
	Verbose        bool
	// Render is the browser renderer; WithBrowser when nil.
	Render RenderFunc
}

// NewSummarizer creates a Summarizer with default HTTP options.
func NewSummarizer(useBrowser, verbose bool) *Summarizer {
	return &Summarizer{
		Options:        DefaultOptions(),
		UseBrowser:     useBrowser,
		BrowserTimeout: DefaultBrowserTimeout,
		Verbose:        verbose,
	}
}

// FetchSummary normalizes rawURL, fetches it and extracts a summary. Every failure is
// returned as a *Error.
func (s *Summarizer) FetchSummary(ctx context.Context, rawURL string) (*Summary, error) {
	pageURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if s.Verbose {
		log.Printf("[fetch] Fetching %s", pageURL)
	}

	result, fetchErr := URL(ctx, pageURL, s.Options)
	if fetchErr == nil {
		summary, err := ExtractSummary(result.HTML)
		if err != nil {
			return nil, &Error{URL: pageURL, Message: "failed to parse page", StatusCode: result.StatusCode, Cause: err}
		}
		if !summary.Empty() {
			summary.URL = pageURL
			summary.Source = SourceHTTP
			return &summary, nil
		}
		if s.Verbose {
			log.Printf("[fetch] No title or description in static HTML for %s", pageURL)
		}
	}

	if s.UseBrowser && ctx.Err() == nil {
		if summary, err := s.renderSummary(ctx, pageURL); err == nil {
			return summary, nil
		} else if s.Verbose {
			log.Printf("[fetch] Browser fallback failed for %s: %v", pageURL, err)
		}
	}

	if fetchErr != nil {
		var fe *Error
		if errors.As(fetchErr, &fe) {
			return nil, fe
		}
		return nil, &Error{URL: pageURL, Message: "fetch failed", Cause: fetchErr}
	}
	return nil, &Error{URL: pageURL, Message: "no title or description found", StatusCode: result.StatusCode}
}

func (s *Summarizer) renderSummary(ctx context.Context, pageURL string) (*Summary, error) {
	render := s.Render
	if render == nil {
		render = WithBrowser
	}
	timeout := s.BrowserTimeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	html, err := render(ctx, pageURL, timeout, s.Verbose)
	if err != nil {
		return nil, err
	}
	summary, err := ExtractSummary(html)
	if err != nil {
		return nil, err
	}
	if summary.Empty() {
		return nil, errors.New("rendered page has no title or description")
	}
	summary.URL = pageURL
	summary.Source = SourceBrowser
	return &summary, nil
}
