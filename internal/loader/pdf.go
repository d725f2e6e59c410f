package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"researcher/internal/domain"
)

// loadPDF extracts the plain text of every non-empty page.
func loadPDF(path string) ([]domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	var docs []domain.Document
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read %s page %d: %w", path, i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		docs = append(docs, domain.Document{Source: fmt.Sprintf("%s#page=%d", path, i), Content: content})
	}
	return docs, nil
}
