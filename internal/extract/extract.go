package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/ragerror"
)

// Extractor is the text-extraction collaborator. The pipeline only sees
// this boundary; the file-format handling behind it is replaceable.
type Extractor interface {
	// Extract returns the per-page text and the page count of the file at
	// path. Failures are ragerror.ErrExtraction.
	Extract(path string) ([]ragmodel.PageText, int, error)
}

type fileType string

const (
	typePDF     fileType = "pdf"
	typeOffice  fileType = "office"
	typeUnknown fileType = "unknown"
)

func detectType(path string) fileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return typePDF
	case ".docx", ".odt", ".txt", ".rtf":
		return typeOffice
	default:
		return typeUnknown
	}
}

type fileExtractor struct{}

// NewFileExtractor builds the default extractor covering PDF and
// DOCX/ODT/TXT/RTF uploads.
func NewFileExtractor() Extractor {
	return &fileExtractor{}
}

func (fileExtractor) Extract(path string) ([]ragmodel.PageText, int, error) {
	switch detectType(path) {
	case typePDF:
		return extractPDF(path)
	case typeOffice:
		return extractOfficeDoc(path)
	default:
		return nil, 0, ragerror.New(ragerror.ErrExtraction, ragerror.StageExtract,
			fmt.Errorf("unsupported file type: %s", filepath.Ext(path)))
	}
}
