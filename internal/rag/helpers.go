package rag

import (
	"context"
	"time"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/metrics"
	"github.com/adukkipati/pdfrag/internal/rag/llm"
)

// Each step helper owns its port's time budget and its latency metric so
// Query reads as the pipeline it is.

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()

	stepCtx, cancel := context.WithTimeout(ctx, config.EmbeddingCallTimeout)
	defer cancel()
	return s.embedder.EmbedQuery(stepCtx, query)
}

func (s *service) executeSearchStep(ctx context.Context, vector []float32, topK int, docFilter []string) ([]ragmodel.RetrievedChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	stepCtx, cancel := context.WithTimeout(ctx, config.VectorCallTimeout)
	defer cancel()

	results, err := s.index.Search(stepCtx, vector, topK, docFilter)
	if err != nil {
		return nil, err
	}
	resortByScore(results)
	return results, nil
}

func (s *service) executeGenerationStep(ctx context.Context, query, contextText string, history []string) (llm.Answer, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	stepCtx, cancel := context.WithTimeout(ctx, config.GenerationCallTimeout)
	defer cancel()
	return s.llmProvider.Generate(stepCtx, query, contextText, history)
}
