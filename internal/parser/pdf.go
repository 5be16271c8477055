package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
)

// PDFParser extracts one page of plain text per PDF page.
type PDFParser struct{}

func (p *PDFParser) Parse(filename string, data []byte) (doc *models.Document, err error) {
	// The pdf library panics on some corrupt files.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = errdefs.Newf(errdefs.KindParse, "malformed PDF %s: %v", filename, r)
		}
	}()

	if len(data) == 0 {
		return nil, errdefs.Newf(errdefs.KindParse, "file %s is empty", filename)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errdefs.Wrap(errdefs.KindParse, fmt.Errorf("failed to open %s as PDF: %w", filename, err))
	}

	doc = newDocument(filename)

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, errdefs.Wrap(errdefs.KindParse, fmt.Errorf("failed to extract text from page %d of %s: %w", i, filename, err))
		}
		doc.Pages = append(doc.Pages, models.Page{
			DocumentID: doc.ID,
			Number:     i,
			Text:       text,
		})
	}

	if len(doc.Pages) == 0 {
		return nil, errdefs.Newf(errdefs.KindParse, "no extractable text in %s", filename)
	}

	if !hasText(doc.Pages) {
		return nil, errdefs.Newf(errdefs.KindParse, "no extractable text in %s", filename)
	}

	return doc, nil
}

func hasText(pages []models.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
