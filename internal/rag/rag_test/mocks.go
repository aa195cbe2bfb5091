package rag_test

import (
	"context"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/rag/llm"
	"github.com/adukkipati/pdfrag/internal/store"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbedQuery func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	return make([][]float32, len(texts)), nil
}

// MockIndex implements vectorindex.Index
type MockIndex struct {
	OnSearch           func(ctx context.Context, vector []float32, topK int, docFilter []string) ([]ragmodel.RetrievedChunk, error)
	OnUpsertChunks     func(ctx context.Context, doc ragmodel.Document, chunks []ragmodel.Chunk, vectors [][]float32) error
	OnDeleteByDocument func(ctx context.Context, docID string) error
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error { return nil }

func (m *MockIndex) Search(ctx context.Context, vector []float32, topK int, docFilter []string) ([]ragmodel.RetrievedChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, topK, docFilter)
	}
	return []ragmodel.RetrievedChunk{
		{DocumentID: "doc-1", Filename: "guide.pdf", Page: 2, ChunkIndex: 0, Text: "default context", Score: 0.9},
	}, nil
}

func (m *MockIndex) UpsertChunks(ctx context.Context, doc ragmodel.Document, chunks []ragmodel.Chunk, vectors [][]float32) error {
	if m.OnUpsertChunks != nil {
		return m.OnUpsertChunks(ctx, doc, chunks, vectors)
	}
	return nil
}

func (m *MockIndex) DeleteByDocument(ctx context.Context, docID string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, docID)
	}
	return nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	Calls      int
	OnGenerate func(ctx context.Context, query, contextText string, history []string) (llm.Answer, error)
}

func (m *MockLLM) Generate(ctx context.Context, query, contextText string, history []string) (llm.Answer, error) {
	m.Calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, query, contextText, history)
	}
	return llm.Answer{Text: "mocked llm response", Tokens: 42}, nil
}

// MockStore implements store.Store and records what was written to it.
type MockStore struct {
	Messages []ragmodel.Message
	Metrics  []ragmodel.QueryMetric
	Cleared  []string

	OnAppendMessage func(msg *ragmodel.Message) error
	OnRecordMetric  func(metric *ragmodel.QueryMetric) error
	OnClearSession  func(sessionID string) error
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) CreateDocument(ctx context.Context, doc *ragmodel.Document) error { return nil }

func (m *MockStore) SetDocumentStatus(ctx context.Context, docID string, status ragmodel.DocStatus, pageCount int) error {
	return nil
}

func (m *MockStore) GetDocument(ctx context.Context, docID string) (ragmodel.Document, error) {
	return ragmodel.Document{ID: docID}, nil
}

func (m *MockStore) ListDocuments(ctx context.Context) ([]ragmodel.Document, error) {
	return nil, nil
}

func (m *MockStore) DeleteDocument(ctx context.Context, docID string) error { return nil }

func (m *MockStore) EnsureSession(ctx context.Context, sessionID string) (ragmodel.Session, error) {
	return ragmodel.Session{SessionID: sessionID}, nil
}

func (m *MockStore) ListSessions(ctx context.Context) ([]ragmodel.Session, error) { return nil, nil }

func (m *MockStore) AppendMessage(ctx context.Context, msg *ragmodel.Message) error {
	if m.OnAppendMessage != nil {
		if err := m.OnAppendMessage(msg); err != nil {
			return err
		}
	}
	m.Messages = append(m.Messages, *msg)
	return nil
}

func (m *MockStore) ListMessages(ctx context.Context, sessionID string) ([]ragmodel.Message, error) {
	return m.Messages, nil
}

func (m *MockStore) ClearSession(ctx context.Context, sessionID string) error {
	m.Cleared = append(m.Cleared, sessionID)
	if m.OnClearSession != nil {
		return m.OnClearSession(sessionID)
	}
	return nil
}

func (m *MockStore) RecordMetric(ctx context.Context, metric *ragmodel.QueryMetric) error {
	if m.OnRecordMetric != nil {
		if err := m.OnRecordMetric(metric); err != nil {
			return err
		}
	}
	m.Metrics = append(m.Metrics, *metric)
	return nil
}

// MockHistory implements history.MessageHistory
type MockHistory struct {
	Entries map[string][]string
	Cleared []string

	OnRecent func(sessionID string, n int) ([]string, error)
}

func NewMockHistory() *MockHistory {
	return &MockHistory{Entries: make(map[string][]string)}
}

func (m *MockHistory) Append(ctx context.Context, sessionID, entry string) error {
	m.Entries[sessionID] = append(m.Entries[sessionID], entry)
	return nil
}

func (m *MockHistory) Recent(ctx context.Context, sessionID string, n int) ([]string, error) {
	if m.OnRecent != nil {
		return m.OnRecent(sessionID, n)
	}
	return m.Entries[sessionID], nil
}

func (m *MockHistory) Clear(ctx context.Context, sessionID string) error {
	m.Cleared = append(m.Cleared, sessionID)
	return nil
}
