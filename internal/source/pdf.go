package source

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"corpusqa/internal/textutil"
)

// PDFReader extracts plain text from PDF documents.
type PDFReader struct{}

func NewPDFReader() *PDFReader { return &PDFReader{} }

// ExtractText returns the text of every page with whitespace collapsed, pages
// joined by a single space.
func (r *PDFReader) ExtractText(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, rdr.NumPage())
	for i := 1; i <= rdr.NumPage(); i++ {
		p := rdr.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf %s page %d: %w", path, i, err)
		}
		if cleaned := textutil.CollapseWhitespace(text); cleaned != "" {
			pages = append(pages, cleaned)
		}
	}
	return strings.Join(pages, " "), nil
}
