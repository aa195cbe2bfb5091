package extract

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var logger = applog.NewLogger("Extract")

func extractPDF(path string) ([]ragmodel.PageText, int, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, 0, ragerror.New(ragerror.ErrExtraction, ragerror.StageExtract,
			fmt.Errorf("failed to open pdf: %w", err))
	}

	numPages := f.NumPage()
	pages := make([]ragmodel.PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			pages = append(pages, ragmodel.PageText{Page: i})
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a single unreadable page is not fatal, the rest still counts
			logger.Warn("skipping unreadable page", "path", path, "page", i, "error", err)
			pages = append(pages, ragmodel.PageText{Page: i})
			continue
		}
		pages = append(pages, ragmodel.PageText{Page: i, Text: content})
	}
	return pages, numPages, nil
}

// extractOfficeDoc reads .docx, .odt, .rtf and plaintext files. These
// formats carry no page boundaries, so everything lands on page 1.
func extractOfficeDoc(path string) ([]ragmodel.PageText, int, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, 0, ragerror.New(ragerror.ErrExtraction, ragerror.StageExtract,
			fmt.Errorf("failed to extract document: %w", err))
	}
	return []ragmodel.PageText{{Page: 1, Text: text}}, 1, nil
}

// protectExtract guards against pages whose content stream makes the pdf
// library hang or panic.
func protectExtract(page pdf.Page) (content string, err error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		c, e := page.GetPlainText(nil)
		resChan <- result{content: c, err: e}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timed out")
	}
}
