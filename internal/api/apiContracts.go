package api

import (
	"time"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"document not found"`
	Id      string `json:"id,omitempty" example:"doc_550"`
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status" example:"processing"`
	StatusURL  string `json:"status_url"`
}

type DocumentListResponse struct {
	Documents []ragmodel.Document `json:"documents"`
	Count     int                 `json:"count"`
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

type MessageListResponse struct {
	SessionID string             `json:"session_id"`
	Messages  []ragmodel.Message `json:"messages"`
	Count     int                `json:"count"`
}

type QueryResponse struct {
	SessionID string              `json:"session_id"`
	Answer    string              `json:"answer"`
	Sources   []ragmodel.Citation `json:"sources"`
	Retrieved int                 `json:"retrieved_count"`
	Tokens    int                 `json:"llm_tokens"`
	NoSources bool                `json:"no_sources,omitempty"`
}

// requests---------------------

type QueryRequest struct {
	Query         string   `json:"query" validate:"required"`
	SessionID     string   `json:"session_id,omitempty"`
	TopK          int      `json:"top_k,omitempty"`
	DocumentIDs   []string `json:"document_ids,omitempty"`
	StrictSources bool     `json:"strict_sources,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
}
