package vectorindex

import (
	"context"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

// Index is the similarity-search port. Implementations must return search
// results pre-sorted by descending score; the query pipeline still validates
// that contract defensively.
type Index interface {
	EnsureCollection(ctx context.Context) error

	// UpsertChunks writes one point per chunk, keyed deterministically from
	// (document id, chunk index) so re-ingestion overwrites instead of
	// duplicating. len(vectors) must equal len(chunks).
	UpsertChunks(ctx context.Context, doc ragmodel.Document, chunks []ragmodel.Chunk, vectors [][]float32) error

	// Search returns up to topK candidates. A non-empty docFilter restricts
	// results to those document ids; ids that match nothing simply
	// contribute no results.
	Search(ctx context.Context, vector []float32, topK int, docFilter []string) ([]ragmodel.RetrievedChunk, error)

	// DeleteByDocument removes every point belonging to the document. Used
	// both for document deletion and as the compensating action after a
	// failed ingestion.
	DeleteByDocument(ctx context.Context, docID string) error
}
