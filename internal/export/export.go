// Package export converts generated plan text into downloadable Markdown and PDF files.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// Default file names offered for download.
const (
	MarkdownFilename = "onboarding_plan.md"
	PDFFilename      = "onboarding_plan.pdf"
)

// ParseFormat accepts "markdown", "md" or "pdf", case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (supported: markdown, pdf)", raw)
	}
}

// Filename returns the download name for f.
func (f Format) Filename() string {
	if f == FormatPDF {
		return PDFFilename
	}
	return MarkdownFilename
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/markdown; charset=utf-8"
}

// Render converts text to the requested format.
func Render(f Format, text string) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return Markdown(text), nil
	case FormatPDF:
		return PDF(text)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Markdown returns the plan text as a UTF-8 Markdown document with Unix line endings.
func Markdown(text string) []byte {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return []byte(text)
}

// PDF layout in millimetres and points.
const (
	pdfMargin      = 15.0
	pdfLineHeight  = 6.0
	pdfBodySize    = 11.0
	pdfHeadingSize = 14.0
	pdfFontFamily  = "Helvetica"
)

// markerText replaces the section markers, which the core fonts cannot draw.
var markerText = strings.NewReplacer(
	"🎯", "",
	"✅", "-",
	"🚩", "",
	"💡", "",
	"**", "",
	"\ufe0f", "",
)

// PDF renders the plan text one line per cell with a core font. Characters outside
// Windows-1252 are dropped by the font translator.
func PDF(text string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Onboarding Plan", true)
	pdf.SetCreator("onboarding-plan-generator", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("cp1252")
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(markerText.Replace(line))
		if line == "" {
			pdf.Ln(pdfLineHeight / 2)
			continue
		}
		if heading, level := splitHeading(line); level > 0 {
			size := pdfHeadingSize - float64(level-1)
			if size < pdfBodySize {
				size = pdfBodySize
			}
			pdf.SetFont(pdfFontFamily, "B", size)
			pdf.MultiCell(0, pdfLineHeight+1, tr(heading), "", "L", false)
			continue
		}
		pdf.SetFont(pdfFontFamily, "", pdfBodySize)
		pdf.MultiCell(0, pdfLineHeight, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// splitHeading returns the text and level of a Markdown ATX heading, or level 0.
func splitHeading(line string) (string, int) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level == len(line) || line[level] != ' ' {
		return line, 0
	}
	return strings.TrimSpace(line[level:]), level
}
