package rag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/rag"
	"github.com/adukkipati/pdfrag/internal/rag/llm"
	"github.com/adukkipati/pdfrag/internal/ragerror"
)

func testSettings() *config.Settings {
	return &config.Settings{
		ChunkSize:        512,
		ChunkOverlap:     50,
		TopK:             5,
		EmbedBatchSize:   100,
		ContextCharLimit: 12000,
	}
}

func newService(embedder *MockEmbedder, index *MockIndex, provider *MockLLM, st *MockStore, hist *MockHistory) rag.Service {
	return rag.NewService(embedder, index, provider, st, hist, testSettings())
}

func baseParams() rag.QueryParams {
	return rag.QueryParams{SessionID: "s-1", Query: "what is chunking?"}
}

func TestQuery_Success(t *testing.T) {
	st := &MockStore{}
	hist := NewMockHistory()
	provider := &MockLLM{}
	svc := newService(&MockEmbedder{}, &MockIndex{}, provider, st, hist)

	result, err := svc.Query(context.Background(), baseParams())
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if result.Answer != "mocked llm response" {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Citations) != 1 || result.Citations[0].Filename != "guide.pdf" {
		t.Errorf("citations = %+v", result.Citations)
	}
	if result.Tokens != 42 {
		t.Errorf("tokens = %d, want 42", result.Tokens)
	}

	if len(st.Messages) != 2 {
		t.Fatalf("expected user and assistant messages, got %d", len(st.Messages))
	}
	if st.Messages[0].Role != ragmodel.RoleUser || st.Messages[1].Role != ragmodel.RoleAssistant {
		t.Errorf("message roles = %v, %v", st.Messages[0].Role, st.Messages[1].Role)
	}
	if len(st.Messages[0].Sources) != 0 {
		t.Error("user message must not carry citations")
	}
	if len(st.Messages[1].Sources) != 1 {
		t.Errorf("assistant message citations = %d, want 1", len(st.Messages[1].Sources))
	}

	if len(st.Metrics) != 1 {
		t.Fatalf("expected exactly one query metric, got %d", len(st.Metrics))
	}
	if st.Metrics[0].RetrievalCount != 1 || st.Metrics[0].LLMTokens != 42 {
		t.Errorf("metric = %+v", st.Metrics[0])
	}

	if len(hist.Entries["s-1"]) != 1 {
		t.Errorf("expected 1 cached exchange, got %d", len(hist.Entries["s-1"]))
	}
}

func TestQuery_EmbeddingFailure(t *testing.T) {
	st := &MockStore{}
	embedder := &MockEmbedder{OnEmbedQuery: func(context.Context, string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	svc := newService(embedder, &MockIndex{}, &MockLLM{}, st, NewMockHistory())

	_, err := svc.Query(context.Background(), baseParams())
	if !errors.Is(err, ragerror.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}

	// the question never became processable, so nothing enters the record
	if len(st.Messages) != 0 {
		t.Errorf("expected no persisted messages, got %d", len(st.Messages))
	}
	// the attempt still gets its metric
	if len(st.Metrics) != 1 {
		t.Errorf("expected one metric, got %d", len(st.Metrics))
	}
}

func TestQuery_SearchFailureKeepsUserMessage(t *testing.T) {
	st := &MockStore{}
	index := &MockIndex{OnSearch: func(context.Context, []float32, int, []string) ([]ragmodel.RetrievedChunk, error) {
		return nil, errors.New("qdrant unavailable")
	}}
	svc := newService(&MockEmbedder{}, index, &MockLLM{}, st, NewMockHistory())

	_, err := svc.Query(context.Background(), baseParams())
	if !errors.Is(err, ragerror.ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}

	if len(st.Messages) != 1 || st.Messages[0].Role != ragmodel.RoleUser {
		t.Errorf("expected only the user message, got %+v", st.Messages)
	}
	if len(st.Metrics) != 1 {
		t.Errorf("expected one metric, got %d", len(st.Metrics))
	}
}

func TestQuery_StrictModeWithoutSourcesSkipsGeneration(t *testing.T) {
	st := &MockStore{}
	index := &MockIndex{OnSearch: func(context.Context, []float32, int, []string) ([]ragmodel.RetrievedChunk, error) {
		return nil, nil
	}}
	provider := &MockLLM{}
	svc := newService(&MockEmbedder{}, index, provider, st, NewMockHistory())

	params := baseParams()
	params.StrictSources = true

	result, err := svc.Query(context.Background(), params)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if provider.Calls != 0 {
		t.Error("generation ran despite strict mode with no sources")
	}
	if !result.NoSources || result.Answer != rag.NoSourcesAnswer {
		t.Errorf("result = %+v", result)
	}
	if len(st.Messages) != 2 || st.Messages[1].Content != rag.NoSourcesAnswer {
		t.Errorf("expected the canned answer as assistant message, got %+v", st.Messages)
	}
	if len(st.Metrics) != 1 || st.Metrics[0].RetrievalCount != 0 {
		t.Errorf("metrics = %+v", st.Metrics)
	}
}

func TestQuery_GenerationFailure(t *testing.T) {
	st := &MockStore{}
	provider := &MockLLM{OnGenerate: func(context.Context, string, string, []string) (llm.Answer, error) {
		return llm.Answer{}, errors.New("model overloaded")
	}}
	svc := newService(&MockEmbedder{}, &MockIndex{}, provider, st, NewMockHistory())

	result, err := svc.Query(context.Background(), baseParams())
	if !errors.Is(err, ragerror.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}

	// retrieval succeeded, so the partial result keeps its citations
	if len(result.Citations) != 1 {
		t.Errorf("citations = %+v", result.Citations)
	}
	if len(st.Messages) != 1 || st.Messages[0].Role != ragmodel.RoleUser {
		t.Errorf("expected only the user message, got %+v", st.Messages)
	}
	if len(st.Metrics) != 1 {
		t.Errorf("expected one metric, got %d", len(st.Metrics))
	}
}

func TestQuery_ReordersMisbehavingIndex(t *testing.T) {
	index := &MockIndex{OnSearch: func(context.Context, []float32, int, []string) ([]ragmodel.RetrievedChunk, error) {
		return []ragmodel.RetrievedChunk{
			{DocumentID: "d1", Filename: "low.pdf", Page: 1, Text: "weak match", Score: 0.2},
			{DocumentID: "d2", Filename: "high.pdf", Page: 3, Text: "strong match", Score: 0.95},
		}, nil
	}}
	svc := newService(&MockEmbedder{}, index, &MockLLM{}, &MockStore{}, NewMockHistory())

	result, err := svc.Query(context.Background(), baseParams())
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.Citations) != 2 {
		t.Fatalf("citations = %+v", result.Citations)
	}
	if result.Citations[0].Filename != "high.pdf" {
		t.Errorf("best citation = %q, want high.pdf", result.Citations[0].Filename)
	}
}

func TestQuery_PassesDocFilterAndTopK(t *testing.T) {
	var gotTopK int
	var gotFilter []string
	index := &MockIndex{OnSearch: func(_ context.Context, _ []float32, topK int, docFilter []string) ([]ragmodel.RetrievedChunk, error) {
		gotTopK = topK
		gotFilter = docFilter
		return nil, nil
	}}
	svc := newService(&MockEmbedder{}, index, &MockLLM{}, &MockStore{}, NewMockHistory())

	params := baseParams()
	params.TopK = 3
	params.DocFilter = []string{"doc-7"}

	if _, err := svc.Query(context.Background(), params); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if gotTopK != 3 {
		t.Errorf("topK = %d, want 3", gotTopK)
	}
	if len(gotFilter) != 1 || gotFilter[0] != "doc-7" {
		t.Errorf("docFilter = %v", gotFilter)
	}
}

func TestClearSession(t *testing.T) {
	st := &MockStore{}
	hist := NewMockHistory()
	svc := newService(&MockEmbedder{}, &MockIndex{}, &MockLLM{}, st, hist)

	if err := svc.ClearSession(context.Background(), "s-9"); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if len(st.Cleared) != 1 || st.Cleared[0] != "s-9" {
		t.Errorf("store cleared = %v", st.Cleared)
	}
	if len(hist.Cleared) != 1 || hist.Cleared[0] != "s-9" {
		t.Errorf("history cleared = %v", hist.Cleared)
	}
}
