package fetch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Summary is the short description of a company website handed to the prompt.
type Summary struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Source is "http", "browser" or "cache".
	Source string `json:"source"`
}

// Source values for Summary.
const (
	SourceHTTP    = "http"
	SourceBrowser = "browser"
	SourceCache   = "cache"
)

// Limits for extracted fields, in runes.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 600
)

// Empty reports whether neither a title nor a description was found.
func (s *Summary) Empty() bool {
	return s == nil || (s.Title == "" && s.Description == "")
}

// Text renders the summary as a single line for the role context.
func (s *Summary) Text() string {
	switch {
	case s.Empty():
		return ""
	case s.Title == "":
		return s.Description
	case s.Description == "":
		return s.Title
	}
	return s.Title + ": " + s.Description
}

// ExtractSummary pulls a title and description out of an HTML page. The title comes from
// <title>, then og:title, then the first <h1>. The description comes from the meta
// description, then og:description, then the first non-empty paragraph of the main content.
func ExtractSummary(html string) (Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := firstNonEmpty(
		doc.Find("head title").First().Text(),
		metaContent(doc, `meta[property="og:title"]`),
		doc.Find("h1").First().Text(),
	)
	description := firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
		firstParagraph(doc),
	)

	return Summary{
		Title:       truncate(title, MaxTitleLength),
		Description: truncate(description, MaxDescriptionLength),
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return content
}

// firstParagraph returns the first non-empty <p> inside the main content area.
func firstParagraph(doc *goquery.Document) string {
	doc.Find("nav, footer, header, script, style, noscript, .cookie-banner, .popup").Remove()

	scope := doc.Selection
	for _, selector := range DefaultTextSelectors() {
		if selection := doc.Find(selector); selection.Length() > 0 {
			scope = selection.First()
			break
		}
	}

	var text string
	scope.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text = collapseWhitespace(p.Text())
		return text == ""
	})
	return text
}

// DefaultTextSelectors returns standard selectors for the main content of a page.
func DefaultTextSelectors() []string {
	return []string{
		"main",
		"article",
		".content",
		"#content",
		".main-content",
		"#main-content",
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = collapseWhitespace(v); v != "" {
			return v
		}
	}
	return ""
}

// collapseWhitespace joins all whitespace runs into single spaces.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := string([]rune(s)[:limit])
	// Prefer ending on a word boundary
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
