package pagesource

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// LoadPDF validates a PDF and extracts per-page text with token estimates.
// pdfcpu provides validation and the authoritative page count; per-page text
// comes from ledongthuc/pdf, which tolerates more fonts in the wild.
func LoadPDF(path string) (*Document, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("invalid PDF %s: %w", path, err)
	}
	total, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages of %s: %w", path, err)
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	doc := &Document{
		Name:  sanitizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))),
		Pages: make([]Page, 0, total),
	}

	extracted := reader.NumPage()
	for i := 1; i <= total; i++ {
		var text string
		if i <= extracted {
			page := reader.Page(i)
			if !page.V.IsNull() {
				text, err = page.GetPlainText(nil)
				if err != nil {
					// A page that fails text extraction stays in the page
					// list as empty text so physical indices keep lining up.
					slog.Warn("failed to extract page text", "path", path, "page", i, "error", err)
					text = ""
				}
			}
		}
		doc.Pages = append(doc.Pages, Page{Text: text, Tokens: EstimateTokens(text)})
	}

	return doc, nil
}
