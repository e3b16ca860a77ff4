package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTML extracts readable text from an HTML document: scripts and styles
// are dropped, line breaks and block elements become newlines, and runs
// of whitespace are collapsed.
func HTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, li, tr, blockquote, pre").
		Each(func(_ int, block *goquery.Selection) {
			block.AppendHtml("\n\n")
		})

	selection := doc.Find("body")
	if selection.Length() == 0 {
		selection = doc.Selection
	}

	return normalizeText(selection.Text()), nil
}

// normalizeText collapses horizontal whitespace within lines and squeezes
// blank-line runs into single paragraph breaks.
func normalizeText(raw string) string {
	var paragraphs []string
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(lines) > 0 {
				paragraphs = append(paragraphs, strings.Join(lines, "\n"))
				lines = nil
			}

			continue
		}

		lines = append(lines, line)
	}

	if len(lines) > 0 {
		paragraphs = append(paragraphs, strings.Join(lines, "\n"))
	}

	return strings.Join(paragraphs, "\n\n")
}
