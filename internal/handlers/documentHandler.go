package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adukkipati/pdfrag/internal/api"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/worker"
)

const maxUploadSize = 32 << 20 //32mb

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".odt":  true,
	".txt":  true,
	".rtf":  true,
}

// UploadHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stores it, creates the document in processing state and queues background ingestion. Poll GET /documents to see it become completed or failed.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "The PDF, DOCX, ODT, TXT or RTF file to upload"
// @Success      202  {object}  api.UploadResponse  "Accepted - ingestion queued"
// @Failure      400  {object}  api.ErrorResponse   "Missing file, unsupported type or file too large"
// @Failure      503  {object}  api.ErrorResponse   "Ingest queue is full"
// @Router       /upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remoteAddr", r.RemoteAddr)
		return
	}

	targetDir, err := ensureUploadDir()
	if err != nil {
		logRH.Error("could not prepare upload directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "storage error")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "file too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "could not retrieve file")
		return
	}
	defer fileReader.Close()

	originalName := filepath.Base(fileMetadata.Filename)
	if !allowedExtensions[strings.ToLower(filepath.Ext(originalName))] {
		WriteErrorResponse(w, http.StatusBadRequest, originalName, "unsupported file type")
		return
	}

	docID := uuid.NewString()
	storedPath := filepath.Join(targetDir, fmt.Sprintf("%s-%s", docID, originalName))

	destination, err := os.Create(storedPath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, originalName, "storage error")
		return
	}
	defer destination.Close()

	if _, err := io.Copy(destination, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, originalName, "write error")
		return
	}

	doc := ragmodel.Document{
		ID:       docID,
		Filename: originalName,
		Status:   ragmodel.DocProcessing,
	}
	if err := handlerInstance.store.CreateDocument(r.Context(), &doc); err != nil {
		logRH.Error("could not create document", "filename", originalName, "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, originalName, msg)
		return
	}

	task := worker.Task{Doc: doc, Path: storedPath, TraceID: traceID(r.Context())}
	if err := worker.Enqueue(task); err != nil {
		// the document never reached a worker, undo its row and its file
		logRH.Error("ingest queue full, rejecting upload", "docId", docID)
		if delErr := handlerInstance.store.DeleteDocument(r.Context(), docID); delErr != nil {
			logRH.Error("could not undo document row", "docId", docID, "error", delErr)
		}
		_ = os.Remove(storedPath)
		WriteErrorResponse(w, http.StatusServiceUnavailable, originalName, "ingest queue is full, retry later")
		return
	}

	writeJsonResponse(w, http.StatusAccepted, api.UploadResponse{
		DocumentID: docID,
		Filename:   originalName,
		Status:     string(ragmodel.DocProcessing),
		StatusURL:  "/documents",
	})
}

// ListDocumentsHandler godoc
// @Summary      List all documents
// @Description  Returns every uploaded document with its ingestion status and page count.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := handlerInstance.store.ListDocuments(r.Context())
	if err != nil {
		logRH.Error("could not list documents", "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, "", msg)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentListResponse{Documents: docs, Count: len(docs)})
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document row and every vector point derived from it.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	if docID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document id is required")
		return
	}

	if err := handlerInstance.store.DeleteDocument(r.Context(), docID); err != nil {
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, docID, msg)
		return
	}

	// the row is gone either way; a failed index cleanup leaves orphaned
	// points that searches can still surface, so it is worth the 502
	if err := handlerInstance.index.DeleteByDocument(r.Context(), docID); err != nil {
		logRH.Error("could not delete document vectors", "docId", docID, "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, docID, "document deleted but vector cleanup failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, map[string]string{"document_id": docID, "status": "deleted"})
}

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
