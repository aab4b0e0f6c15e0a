// Package render checks and converts the HTML reports produced by Gemini.
package render

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotHTML is returned when a model answer contains no HTML elements.
var ErrNotHTML = errors.New("response contains no HTML elements")

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre"

// Parse parses an HTML fragment and fails when it has no element at all.
func Parse(fragment string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if doc.Find("body").Children().Length() == 0 {
		return nil, ErrNotHTML
	}
	return doc, nil
}

// Validate reports whether fragment is usable HTML.
func Validate(fragment string) error {
	_, err := Parse(fragment)
	return err
}

// Headings lists the h1 to h3 captions of an HTML fragment in document order.
func Headings(fragment string) []string {
	doc, err := Parse(fragment)
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// PlainText renders an HTML report as text for terminals: headings are
// underlined and list items get a dash.
func PlainText(fragment string) (string, error) {
	doc, err := Parse(fragment)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		text := strings.Join(strings.Fields(s.Text()), " ")
		if name == "li" {
			text = ownText(s)
		}
		if text == "" {
			return
		}
		switch name {
		case "h1":
			b.WriteString("\n" + text + "\n" + strings.Repeat("=", len([]rune(text))) + "\n")
		case "h2", "h3":
			b.WriteString("\n" + text + "\n" + strings.Repeat("-", len([]rune(text))) + "\n")
		case "li":
			depth := s.ParentsFiltered("ul, ol").Length()
			b.WriteString(strings.Repeat("  ", max(depth-1, 0)) + "- " + text + "\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})
	out := blankLines.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out), nil
}

// ownText is the text of s without its nested lists.
func ownText(s *goquery.Selection) string {
	clone := s.Clone()
	clone.Find("ul, ol").Remove()
	return strings.Join(strings.Fields(clone.Text()), " ")
}

// Page wraps an HTML fragment into a standalone document.
func Page(title, fragment string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), fragment)
}

// WriteReport writes content to filename inside outputDir, creating the
// directory when needed, and returns the file path.
func WriteReport(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "reports"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file %s: %w", filePath, err)
	}
	return filePath, nil
}
