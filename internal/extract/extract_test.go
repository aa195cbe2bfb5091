package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adukkipati/pdfrag/internal/ragerror"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		path     string
		expected fileType
	}{
		{"report.pdf", typePDF},
		{"REPORT.PDF", typePDF},
		{"notes.docx", typeOffice},
		{"notes.txt", typeOffice},
		{"old.rtf", typeOffice},
		{"image.png", typeUnknown},
		{"noext", typeUnknown},
	}

	for _, tt := range tests {
		if got := detectType(tt.path); got != tt.expected {
			t.Errorf("detectType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtract_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("hello extraction world"), 0644); err != nil {
		t.Fatal(err)
	}

	pages, count, err := NewFileExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if count != 1 || len(pages) != 1 {
		t.Fatalf("expected a single page, got count=%d pages=%d", count, len(pages))
	}
	if pages[0].Page != 1 || pages[0].Text == "" {
		t.Errorf("unexpected page content: %+v", pages[0])
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, _, err := NewFileExtractor().Extract("image.png")
	if !errors.Is(err, ragerror.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}
