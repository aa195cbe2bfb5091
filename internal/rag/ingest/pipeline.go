// Package ingest turns an uploaded file into searchable vector points. The
// pipeline owns the document status machine: a document it touches always
// ends as completed or failed, never stuck in processing.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/extract"
	"github.com/adukkipati/pdfrag/internal/rag/chunker"
	"github.com/adukkipati/pdfrag/internal/rag/embedding"
	"github.com/adukkipati/pdfrag/internal/rag/vectorindex"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

type Pipeline struct {
	extractor extract.Extractor
	embedder  embedding.Embedder
	index     vectorindex.Index
	store     store
	settings  *config.Settings
	logger    *applog.Logger
}

// store is the slice of the relational port the pipeline needs.
type store interface {
	SetDocumentStatus(ctx context.Context, docID string, status ragmodel.DocStatus, pageCount int) error
}

func NewPipeline(extractor extract.Extractor, embedder embedding.Embedder, index vectorindex.Index, st store, settings *config.Settings) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		store:     st,
		settings:  settings,
		logger:    applog.NewLogger("IngestPipeline"),
	}
}

// Run ingests the file at path for doc: extract, chunk, embed in batches,
// upsert into the vector index, then mark the document completed. On any
// failure it removes whatever points were already written, marks the document
// failed and returns a typed error carrying the document id.
func (p *Pipeline) Run(ctx context.Context, doc ragmodel.Document, path string) error {
	ctx, cancel := context.WithTimeout(ctx, config.IngestRunTimeout)
	defer cancel()

	start := time.Now()
	if err := p.run(ctx, doc, path); err != nil {
		p.fail(ctx, doc.ID)
		p.logger.Error("ingestion failed", "docId", doc.ID, "filename", doc.Filename, "error", err)
		return err
	}
	p.logger.Info("ingestion completed", "docId", doc.ID, "filename", doc.Filename, "duration", time.Since(start).String())
	return nil
}

func (p *Pipeline) run(ctx context.Context, doc ragmodel.Document, path string) error {
	pages, pageCount, err := p.extractor.Extract(path)
	if err != nil {
		return ragerror.New(ragerror.ErrExtraction, ragerror.StageExtract, err).ForDocument(doc.ID)
	}

	chunks, err := chunker.Split(pages, p.settings.ChunkSize, p.settings.ChunkOverlap)
	if err != nil {
		return ragerror.New(ragerror.ErrExtraction, ragerror.StageChunk, err).ForDocument(doc.ID)
	}
	if len(chunks) == 0 {
		return ragerror.New(ragerror.ErrEmptyDocument, ragerror.StageChunk,
			fmt.Errorf("no extractable text in %s", doc.Filename)).ForDocument(doc.ID)
	}

	batchSize := p.settings.EmbedBatchSize
	for lo := 0; lo < len(chunks); lo += batchSize {
		hi := min(lo+batchSize, len(chunks))
		batch := chunks[lo:hi]

		vectors, err := p.embedBatch(ctx, batch)
		if err != nil {
			return ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed, err).ForDocument(doc.ID)
		}
		if err := p.upsertBatch(ctx, doc, batch, vectors); err != nil {
			return ragerror.New(ragerror.ErrIndex, ragerror.StageStore, err).ForDocument(doc.ID)
		}
		p.logger.Debug("indexed chunk batch", "docId", doc.ID, "from", lo, "to", hi)
	}

	storeCtx, cancel := context.WithTimeout(ctx, config.StoreCallTimeout)
	defer cancel()
	if err := p.store.SetDocumentStatus(storeCtx, doc.ID, ragmodel.DocCompleted, pageCount); err != nil {
		return ragerror.New(ragerror.ErrStore, ragerror.StageStore, err).ForDocument(doc.ID)
	}
	return nil
}

func (p *Pipeline) embedBatch(ctx context.Context, batch []ragmodel.Chunk) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}
	ctx, cancel := context.WithTimeout(ctx, config.EmbeddingCallTimeout)
	defer cancel()
	return p.embedder.EmbedBatch(ctx, texts)
}

func (p *Pipeline) upsertBatch(ctx context.Context, doc ragmodel.Document, batch []ragmodel.Chunk, vectors [][]float32) error {
	ctx, cancel := context.WithTimeout(ctx, config.VectorCallTimeout)
	defer cancel()
	return p.index.UpsertChunks(ctx, doc, batch, vectors)
}

// fail runs the compensating cleanup after a broken ingestion. It uses a
// detached context so cleanup still happens when the run deadline is what
// killed the pipeline. Cleanup errors are logged, not returned; the caller
// already has the primary failure.
func (p *Pipeline) fail(ctx context.Context, docID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.VectorCallTimeout)
	defer cancel()

	if err := p.index.DeleteByDocument(cleanupCtx, docID); err != nil {
		p.logger.Error("could not remove partial vectors", "docId", docID, "error", err)
	}
	if err := p.store.SetDocumentStatus(cleanupCtx, docID, ragmodel.DocFailed, 0); err != nil {
		p.logger.Error("could not mark document failed", "docId", docID, "error", err)
	}
}
