// Package rag is the orchestration layer. The HTTP handlers and the worker
// pool only ever talk to Service; the ports behind it (embedder, vector
// index, LLM provider, relational store, history cache) stay private here.
package rag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/data/history"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/extract"
	"github.com/adukkipati/pdfrag/internal/metrics"
	"github.com/adukkipati/pdfrag/internal/rag/embedding"
	"github.com/adukkipati/pdfrag/internal/rag/ingest"
	"github.com/adukkipati/pdfrag/internal/rag/llm"
	"github.com/adukkipati/pdfrag/internal/rag/prompt"
	"github.com/adukkipati/pdfrag/internal/rag/vectorindex"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/internal/store"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

// NoSourcesAnswer is returned verbatim when strict-sources mode finds no
// usable context. It is still persisted as an assistant message so the
// conversation record stays complete.
const NoSourcesAnswer = "I could not find relevant information in the uploaded documents to answer your question."

// QueryParams carries one question through the pipeline. TopK and DocFilter
// are optional; zero values fall back to the configured defaults.
type QueryParams struct {
	SessionID     string
	Query         string
	TopK          int
	DocFilter     []string
	StrictSources bool
}

type QueryResult struct {
	Answer    string
	Citations []ragmodel.Citation
	Tokens    int
	Retrieved int
	NoSources bool
}

type Service interface {
	// Query runs the full retrieval-and-generation pipeline synchronously.
	// Exactly one query metric is recorded per call, success or failure.
	Query(ctx context.Context, params QueryParams) (QueryResult, error)
	// Ingest processes an uploaded file end to end. Runs on the worker pool.
	Ingest(ctx context.Context, doc ragmodel.Document, path string) error
	// ClearSession drops the session's messages and its cached history. The
	// session row and its metrics survive.
	ClearSession(ctx context.Context, sessionID string) error
}

type service struct {
	embedder    embedding.Embedder
	index       vectorindex.Index
	llmProvider llm.Provider
	store       store.Store
	history     history.MessageHistory
	pipeline    *ingest.Pipeline
	settings    *config.Settings
	logger      *applog.Logger
}

func NewService(
	embedder embedding.Embedder,
	index vectorindex.Index,
	llmProvider llm.Provider,
	st store.Store,
	hist history.MessageHistory,
	settings *config.Settings,
) Service {
	return &service{
		embedder:    embedder,
		index:       index,
		llmProvider: llmProvider,
		store:       st,
		history:     hist,
		pipeline:    ingest.NewPipeline(extract.NewFileExtractor(), embedder, index, st, settings),
		settings:    settings,
		logger:      applog.NewLogger("RAGService"),
	}
}

func (s *service) Query(ctx context.Context, params QueryParams) (QueryResult, error) {
	log := s.logger.With("sessionId", params.SessionID)
	start := time.Now()

	topK := params.TopK
	if topK < 1 {
		topK = s.settings.TopK
	}

	var result QueryResult
	defer func() {
		s.recordMetric(ctx, params, &result, time.Since(start))
	}()

	if _, err := s.store.EnsureSession(ctx, params.SessionID); err != nil {
		return result, ragerror.New(ragerror.ErrStore, ragerror.StageStore, err).ForSession(params.SessionID)
	}

	queryVector, err := s.executeEmbeddingStep(ctx, params.Query)
	if err != nil {
		return result, ragerror.New(ragerror.ErrEmbedding, ragerror.StageEmbed, err).ForSession(params.SessionID)
	}

	// the question enters the record as soon as it is known to be
	// processable, whatever happens to the answer afterwards
	if err := s.persistMessage(ctx, params.SessionID, ragmodel.RoleUser, params.Query, nil); err != nil {
		return result, err
	}

	retrieved, err := s.executeSearchStep(ctx, queryVector, topK, params.DocFilter)
	if err != nil {
		return result, ragerror.New(ragerror.ErrIndex, ragerror.StageSearch, err).ForSession(params.SessionID)
	}
	result.Retrieved = len(retrieved)

	contextText, citations := prompt.BuildContext(retrieved, s.settings.ContextCharLimit)
	result.Citations = citations

	if params.StrictSources && contextText == "" {
		log.Info("strict mode found no sources, skipping generation")
		result.Answer = NoSourcesAnswer
		result.NoSources = true
		if err := s.persistMessage(ctx, params.SessionID, ragmodel.RoleAssistant, result.Answer, nil); err != nil {
			return result, err
		}
		return result, nil
	}

	recent, err := s.history.Recent(ctx, params.SessionID, config.HistoryDepth)
	if err != nil {
		// degraded prompt, not a failed query
		log.Warn("could not load conversation history", "error", err)
		recent = nil
	}

	answer, err := s.executeGenerationStep(ctx, params.Query, contextText, recent)
	if err != nil {
		return result, ragerror.New(ragerror.ErrGeneration, ragerror.StageGenerate, err).ForSession(params.SessionID)
	}
	result.Answer = answer.Text
	result.Tokens = answer.Tokens

	if err := s.persistMessage(ctx, params.SessionID, ragmodel.RoleAssistant, answer.Text, citations); err != nil {
		return result, err
	}
	if err := s.history.Append(ctx, params.SessionID, formatExchange(params.Query, answer.Text)); err != nil {
		log.Warn("could not cache exchange", "error", err)
	}

	log.Info("query answered", "retrieved", result.Retrieved, "cited", len(citations),
		"tokens", result.Tokens, "duration", time.Since(start).String())
	return result, nil
}

func (s *service) Ingest(ctx context.Context, doc ragmodel.Document, path string) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	return s.pipeline.Run(ctx, doc, path)
}

func (s *service) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.store.ClearSession(ctx, sessionID); err != nil {
		return ragerror.New(ragerror.ErrStore, ragerror.StageStore, err).ForSession(sessionID)
	}
	if err := s.history.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("could not clear cached history", "sessionId", sessionID, "error", err)
	}
	return nil
}

func (s *service) persistMessage(ctx context.Context, sessionID string, role ragmodel.Role, content string, citations []ragmodel.Citation) error {
	storeCtx, cancel := context.WithTimeout(ctx, config.StoreCallTimeout)
	defer cancel()

	msg := &ragmodel.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   citations,
	}
	if err := s.store.AppendMessage(storeCtx, msg); err != nil {
		return ragerror.New(ragerror.ErrStore, ragerror.StageStore, err).ForSession(sessionID)
	}
	return nil
}

// recordMetric is the single place a query metric is written; running it in
// a defer keeps it to exactly one row per Query call.
func (s *service) recordMetric(ctx context.Context, params QueryParams, result *QueryResult, elapsed time.Duration) {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.StoreCallTimeout)
	defer cancel()

	metric := &ragmodel.QueryMetric{
		SessionID:      params.SessionID,
		Query:          params.Query,
		ResponseTime:   elapsed.Seconds(),
		RetrievalCount: result.Retrieved,
		LLMTokens:      result.Tokens,
	}
	if err := s.store.RecordMetric(storeCtx, metric); err != nil {
		s.logger.Error("could not record query metric", "sessionId", params.SessionID, "error", err)
	}
}

// resortByScore enforces the descending-score contract on whatever the index
// returned. Stable so equal scores keep the index order.
func resortByScore(results []ragmodel.RetrievedChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func formatExchange(query, answer string) string {
	return fmt.Sprintf("Q: %s\nA: %s", query, answer)
}
