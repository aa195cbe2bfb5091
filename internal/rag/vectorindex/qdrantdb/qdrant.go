package qdrantdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/rag/vectorindex"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var (
	logger    *applog.Logger
	once      sync.Once
	singleton *qdrant.Client
	dimension = uint64(config.EmbeddingDimension)
)

const collectionName = config.ChunkCollection

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetIndex connects to Qdrant once and hands out the shared client. The
// connection closes when ctx is cancelled at shutdown. Returns nil if the
// client cannot be built.
func GetIndex(ctx context.Context, host string, grpcPort int) vectorindex.Index {
	once.Do(func() {
		logger = applog.NewLogger("Qdrant")
		client, err := qdrant.NewClient(&qdrant.Config{
			Host:     host,
			Port:     grpcPort,
			UseTLS:   config.QdrantUseTLS,
			PoolSize: uint(config.QdrantPoolSize),
		})
		if err != nil {
			logger.Error("could not instantiate qdrant client", "error", err)
			return
		}
		singleton = client
		go closeOnShutdown(ctx, client)
	})

	if singleton == nil {
		return nil
	}
	return &ClientHolder{QObj: singleton}
}

func closeOnShutdown(ctx context.Context, client *qdrant.Client) {
	<-ctx.Done()
	logger.Info("shutting down qdrant client")
	if err := client.Close(); err != nil {
		logger.Error("could not close qdrant client", "error", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return ragerror.New(ragerror.ErrIndex, ragerror.StageSearch, err)
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return ragerror.New(ragerror.ErrIndex, ragerror.StageSearch, err)
	}
	logger.Info("created collection", "name", collectionName, "dimension", dimension)
	return nil
}

// ChunkPointID derives the stable point id for a chunk. Re-ingesting the
// same document hits the same ids, which is what makes ingestion an
// overwrite instead of a duplication.
func ChunkPointID(docID string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s:%d", docID, chunkIndex)).String()
}

func (db *ClientHolder) UpsertChunks(ctx context.Context, doc ragmodel.Document, chunks []ragmodel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return ragerror.New(ragerror.ErrIndex, ragerror.StageEmbed,
			fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors)))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(ChunkPointID(doc.ID, chunk.Index)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":        chunk.Text,
				"page":        chunk.Page,
				"doc_id":      doc.ID,
				"filename":    doc.Filename,
				"chunk_index": chunk.Index,
				"word_count":  chunk.WordCount,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return ragerror.New(ragerror.ErrIndex, ragerror.StageSearch,
			fmt.Errorf("qdrant upsert failed: %w", err))
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, topK int, docFilter []string) ([]ragmodel.RetrievedChunk, error) {
	query := &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(docFilter) > 0 {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchKeywords("doc_id", docFilter...)},
		}
	}

	hits, err := db.QObj.Query(ctx, query)
	if err != nil {
		return nil, ragerror.New(ragerror.ErrIndex, ragerror.StageSearch, err)
	}

	results := make([]ragmodel.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		results = append(results, ragmodel.RetrievedChunk{
			DocumentID: hit.Payload["doc_id"].GetStringValue(),
			Filename:   hit.Payload["filename"].GetStringValue(),
			Page:       int(hit.Payload["page"].GetIntegerValue()),
			ChunkIndex: int(hit.Payload["chunk_index"].GetIntegerValue()),
			Text:       hit.Payload["text"].GetStringValue(),
			Score:      hit.Score,
		})
	}
	return results, nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, docID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("doc_id", docID)},
		}),
	})
	if err != nil {
		return ragerror.New(ragerror.ErrIndex, ragerror.StageCleanup,
			fmt.Errorf("deleting vectors for document %s: %w", docID, err))
	}
	return nil
}
