package chunker

import (
	"fmt"
	"strings"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

// taggedWord keeps the page a word came from so a chunk can be attributed
// to the page of its first word.
type taggedWord struct {
	word string
	page int
}

// Split turns per-page extracted text into an ordered sequence of chunks.
//
// All pages are flattened into a single word stream; a window of size words
// slides over it advancing size-overlap words per step. The final chunk may
// be shorter, and the loop stops at the first window that reaches the end of
// the stream, so a document of at most size words yields exactly one chunk.
// Empty extracted text yields zero chunks; the caller treats that as an
// ingestion failure.
//
// Split is deterministic and side-effect-free. Ingestion idempotency depends
// on identical input producing identical chunk indices.
func Split(pages []ragmodel.PageText, size, overlap int) ([]ragmodel.Chunk, error) {
	if size < 1 || overlap < 0 {
		return nil, fmt.Errorf("invalid chunking parameters: size=%d overlap=%d", size, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("overlap (%d) must be less than chunk size (%d)", overlap, size)
	}

	var words []taggedWord
	for _, p := range pages {
		for _, w := range strings.Fields(p.Text) {
			words = append(words, taggedWord{word: w, page: p.Page})
		}
	}
	if len(words) == 0 {
		return nil, nil
	}

	stride := size - overlap
	var chunks []ragmodel.Chunk
	for start := 0; start < len(words); start += stride {
		end := start + size
		last := false
		if end >= len(words) {
			end = len(words)
			last = true
		}

		window := words[start:end]
		parts := make([]string, len(window))
		for i, tw := range window {
			parts[i] = tw.word
		}

		chunks = append(chunks, ragmodel.Chunk{
			Index:     len(chunks),
			Page:      window[0].page,
			Text:      strings.Join(parts, " "),
			WordCount: len(window),
		})

		if last {
			break
		}
	}
	return chunks, nil
}
