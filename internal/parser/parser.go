// Package parser turns uploaded files into pages of extracted text.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
)

// Parser extracts an ordered sequence of pages from raw file bytes.
// Implementations report errdefs.KindParse for malformed input.
type Parser interface {
	Parse(filename string, data []byte) (*models.Document, error)
}

// New returns the parser for the file's extension, or a parse error
// for unsupported types.
func New(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, errdefs.Newf(errdefs.KindParse, "unsupported file type %s (expected .pdf or .txt)", filepath.Ext(filename))
	}
}

// TextParser treats the whole file as a single page.
type TextParser struct{}

func (p *TextParser) Parse(filename string, data []byte) (*models.Document, error) {
	if len(data) == 0 {
		return nil, errdefs.Newf(errdefs.KindParse, "file %s is empty", filename)
	}

	doc := newDocument(filename)
	doc.Pages = []models.Page{
		{DocumentID: doc.ID, Number: 1, Text: string(data)},
	}
	return doc, nil
}

func newDocument(filename string) *models.Document {
	base := filepath.Base(filename)
	return &models.Document{
		ID:    uuid.New().String(),
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}
