package pdfio

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts plain text from the first maxPages pages (all pages when
// maxPages <= 0). Pages that fail to decode are skipped.
func Text(path string, maxPages int) (text string, err error) {
	defer func() {
		if val := recover(); val != nil {
			err = fmt.Errorf("pdf reader panic: %v", val)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// NumPages returns the page count of a document.
func NumPages(path string) (n int, err error) {
	defer func() {
		if val := recover(); val != nil {
			err = fmt.Errorf("pdf reader panic: %v", val)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()
	return r.NumPage(), nil
}
