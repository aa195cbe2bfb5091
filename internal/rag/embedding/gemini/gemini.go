package gemini

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/rag/embedding"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var (
	logger    *applog.Logger
	once      sync.Once
	singleton *client
	dimension = config.EmbeddingDimension
)

type client struct {
	genAi *genai.Client
	model string
}

// GetEmbedder returns the Gemini-backed embedder, creating the underlying
// client on first call. Returns nil when the client cannot be built; the
// caller decides whether that is fatal.
func GetEmbedder(ctx context.Context, modelName, apiKey string, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = applog.NewLogger("GeminiEmbedding")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, HTTPClient: httpClient})
		if err != nil {
			logger.Error("could not create embedding client", "error", err)
			return
		}
		singleton = &client{genAi: c, model: modelName}
		logger.Info("embedding client created", "model", modelName)
	})

	if singleton == nil {
		return nil
	}
	return singleton
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := c.doCall(ctx, genai.Text(text), "RETRIEVAL_QUERY")
	if err != nil {
		return nil, ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed, err)
	}
	if len(res.Embeddings) != 1 {
		return nil, ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed,
			fmt.Errorf("expected 1 embedding, got %d", len(res.Embeddings)))
	}
	return c.checkDimension(res.Embeddings[0].Values)
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: t}}})
	}

	res, err := c.doCall(ctx, contents, "RETRIEVAL_DOCUMENT")
	if err != nil && shouldRetry(err) {
		logger.Warn("embedding rate limit hit, retrying once", "error", err)
		time.Sleep(5 * time.Second)
		res, err = c.doCall(ctx, contents, "RETRIEVAL_DOCUMENT")
	}
	if err != nil {
		return nil, ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed, err)
	}

	if len(res.Embeddings) != len(texts) {
		return nil, ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed,
			fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(res.Embeddings)))
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		v, err := c.checkDimension(e.Values)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskType})
}

func (c *client) checkDimension(v []float32) ([]float32, error) {
	if int32(len(v)) != dimension {
		return nil, ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed,
			fmt.Errorf("dimension mismatch: got %d, index expects %d", len(v), dimension))
	}
	return v, nil
}
