package store

import (
	"context"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

// Store is the durable structured-storage port for documents, sessions,
// messages and query metrics. Every write of a single row is atomic;
// nothing here assumes cross-row transactions, let alone transactions that
// span this store and the vector index.
type Store interface {
	CreateDocument(ctx context.Context, doc *ragmodel.Document) error
	// SetDocumentStatus moves a document through its lifecycle. Page count
	// is only recorded on the transition to completed.
	SetDocumentStatus(ctx context.Context, docID string, status ragmodel.DocStatus, pageCount int) error
	GetDocument(ctx context.Context, docID string) (ragmodel.Document, error)
	ListDocuments(ctx context.Context) ([]ragmodel.Document, error)
	DeleteDocument(ctx context.Context, docID string) error

	// EnsureSession creates the session if it does not exist yet and
	// returns it either way.
	EnsureSession(ctx context.Context, sessionID string) (ragmodel.Session, error)
	ListSessions(ctx context.Context) ([]ragmodel.Session, error)

	AppendMessage(ctx context.Context, msg *ragmodel.Message) error
	// ListMessages returns the session's messages ordered by timestamp;
	// timestamp order, not insertion order, defines the conversation.
	ListMessages(ctx context.Context, sessionID string) ([]ragmodel.Message, error)
	// ClearSession deletes all of a session's messages. The session row and
	// its metrics stay.
	ClearSession(ctx context.Context, sessionID string) error

	RecordMetric(ctx context.Context, metric *ragmodel.QueryMetric) error
}
