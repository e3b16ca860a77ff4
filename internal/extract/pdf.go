package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TooManyPagesError is returned for documents exceeding the configured
// page limit before any page is extracted.
type TooManyPagesError struct {
	Pages    int
	MaxPages int
}

func (e *TooManyPagesError) Error() string {
	return fmt.Sprintf("document has %d pages, maximum allowed is %d", e.Pages, e.MaxPages)
}

// PDF extracts the plain text of every page, keeping document structure
// visible to the summarizer with per-page Markdown headers.
func PDF(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	pages := r.NumPage()
	if maxPages > 0 && pages > maxPages {
		return "", &TooManyPagesError{Pages: pages, MaxPages: maxPages}
	}

	var parts []string
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i, textErr)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf("## Page %d\n\n%s", i, text))
	}

	return strings.Join(parts, "\n\n"), nil
}
