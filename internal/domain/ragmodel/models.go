package ragmodel

import (
	"time"

	"gorm.io/datatypes"
)

type DocStatus string

const (
	DocProcessing DocStatus = "processing"
	DocCompleted  DocStatus = "completed"
	DocFailed     DocStatus = "failed"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Document is an uploaded file. Only the ingestion pipeline moves its
// status; the query pipeline never writes it.
type Document struct {
	ID         string             `json:"id" gorm:"primaryKey;size:64"`
	Filename   string             `json:"filename" gorm:"size:255;not null"`
	UploadTime time.Time          `json:"upload_time" gorm:"autoCreateTime"`
	Status     DocStatus          `json:"status" gorm:"size:50;default:processing"`
	PageCount  int                `json:"page_count"`
	Meta       datatypes.JSONMap `json:"meta,omitempty"`
}

// PageText is one page of extracted text, as handed over by the
// extraction collaborator.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Chunk is a bounded slice of a document's word stream. Chunks are never a
// table of their own; they live in the vector index payload. Index is the
// chunk's position within its document and, together with the document id,
// determines the chunk's identity.
type Chunk struct {
	Index     int    `json:"chunk_index"`
	Page      int    `json:"page"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// RetrievedChunk is query-scoped: a chunk plus its similarity score and the
// owning document's filename. Never persisted as its own entity.
type RetrievedChunk struct {
	DocumentID string  `json:"doc_id"`
	Filename   string  `json:"filename"`
	Page       int     `json:"page"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

// Citation is the part of a retrieved chunk that gets frozen onto an
// assistant message.
type Citation struct {
	Filename string  `json:"filename"`
	Page     int     `json:"page"`
	Score    float32 `json:"score"`
}

type Session struct {
	ID        uint              `json:"-" gorm:"primaryKey"`
	SessionID string            `json:"session_id" gorm:"uniqueIndex;size:100;not null"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime"`
	Meta      datatypes.JSONMap `json:"meta,omitempty"`
}

// Message is immutable once written. Sources is populated only for
// assistant messages and holds exactly the citations that backed the answer.
type Message struct {
	ID        uint                          `json:"-" gorm:"primaryKey"`
	SessionID string                        `json:"session_id" gorm:"index;size:100;not null"`
	Role      Role                          `json:"role" gorm:"size:20;not null"`
	Content   string                        `json:"content" gorm:"type:text;not null"`
	Timestamp time.Time                     `json:"timestamp" gorm:"autoCreateTime"`
	Sources   datatypes.JSONSlice[Citation] `json:"sources,omitempty"`
}

// QueryMetric records one query attempt. It is written even when the
// generation step fails, so metrics can exist for queries whose assistant
// message never was.
type QueryMetric struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	SessionID      string    `json:"session_id" gorm:"index;size:100"`
	Query          string    `json:"query" gorm:"type:text"`
	ResponseTime   float64   `json:"response_time"`
	RetrievalCount int       `json:"retrieval_count"`
	LLMTokens      int       `json:"llm_tokens"`
	Timestamp      time.Time `json:"timestamp" gorm:"autoCreateTime"`
}
