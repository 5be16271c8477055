package parser

import (
	"testing"

	"github.com/paperbase/ragd/internal/errdefs"
)

func TestNew_SelectsByExtension(t *testing.T) {
	if p, err := New("paper.pdf"); err != nil {
		t.Errorf("Expected PDF parser, got error %v", err)
	} else if _, ok := p.(*PDFParser); !ok {
		t.Errorf("Expected *PDFParser, got %T", p)
	}

	if p, err := New("NOTES.TXT"); err != nil {
		t.Errorf("Expected text parser, got error %v", err)
	} else if _, ok := p.(*TextParser); !ok {
		t.Errorf("Expected *TextParser, got %T", p)
	}
}

func TestNew_UnsupportedExtension(t *testing.T) {
	for _, filename := range []string{"image.png", "archive.zip", "noextension"} {
		_, err := New(filename)
		if err == nil {
			t.Errorf("Expected error for %q", filename)
			continue
		}
		if !errdefs.IsKind(err, errdefs.KindParse) {
			t.Errorf("Expected parse error for %q, got %v", filename, err)
		}
	}
}

func TestTextParser_SinglePage(t *testing.T) {
	p := &TextParser{}

	doc, err := p.Parse("notes.txt", []byte("plain contents"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.ID == "" {
		t.Error("Expected a document ID")
	}
	if doc.Title != "notes" {
		t.Errorf("Expected title 'notes', got %q", doc.Title)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[0].Text != "plain contents" {
		t.Errorf("Unexpected page: %+v", doc.Pages[0])
	}
	if doc.Pages[0].DocumentID != doc.ID {
		t.Error("Expected page linked to its document")
	}
}

func TestTextParser_EmptyFile(t *testing.T) {
	p := &TextParser{}

	_, err := p.Parse("notes.txt", nil)
	if err == nil {
		t.Fatal("Expected error for empty file")
	}
	if !errdefs.IsKind(err, errdefs.KindParse) {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestPDFParser_MalformedFile(t *testing.T) {
	p := &PDFParser{}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("just some text")},
		{"truncated header", []byte("%PDF-1.7\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse("broken.pdf", tt.data)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errdefs.IsKind(err, errdefs.KindParse) {
				t.Errorf("Expected parse error, got %v", err)
			}
		})
	}
}
