package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported reports whether files with the given extension can be turned
// into text.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".html", ".htm", ".md", ".txt":
		return true
	default:
		return false
	}
}

// Text extracts readable text from the file at path based on its
// extension. PDF extraction honors maxPages; Markdown and plain text pass
// through unmodified.
func Text(path string, maxPages int) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return PDF(path, maxPages)
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open HTML file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()

		return HTML(f)
	case ".md", ".txt":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}

		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported file extension %q", ext)
	}
}
