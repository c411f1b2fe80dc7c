package rag

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PageText is the raw text of one PDF page, 1-based.
type PageText struct {
	Page int
	Text string
}

// PageExtractor pulls per-page text out of a stored PDF file.
type PageExtractor interface {
	ExtractPages(path string) ([]PageText, error)
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages reads every page of the PDF at path. Pages that are null or
// fail text extraction are skipped rather than failing the whole document.
func (e *PDFExtractor) ExtractPages(path string) ([]PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var pages []PageText
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		pages = append(pages, PageText{Page: i, Text: text})
	}

	return pages, nil
}
