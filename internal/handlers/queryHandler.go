package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/adukkipati/pdfrag/internal/api"
	"github.com/adukkipati/pdfrag/internal/rag"
)

// QueryHandler godoc
// @Summary      Ask a question over the ingested documents
// @Description  Runs retrieval and generation synchronously and returns the answer with its citations. An empty session_id starts a new session.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Question, optional session id, top_k, document filter and strict mode"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorResponse  "Missing or empty query"
// @Failure      502      {object}  api.ErrorResponse  "An upstream service failed"
// @Failure      504      {object}  api.ErrorResponse  "An upstream call timed out"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remoteAddr", r.RemoteAddr)
		return
	}

	var requestData api.QueryRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("couldn't close the query request reader", "error", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Query == "" {
		logRH.Warn("bad query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionID, "query is required")
		return
	}

	sessionID := requestData.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := handlerInstance.service.Query(r.Context(), rag.QueryParams{
		SessionID:     sessionID,
		Query:         requestData.Query,
		TopK:          requestData.TopK,
		DocFilter:     requestData.DocumentIDs,
		StrictSources: requestData.StrictSources,
	})
	if err != nil {
		logRH.Error("query failed", "sessionId", sessionID, "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, sessionID, msg)
		return
	}

	writeJsonResponse(w, http.StatusOK, api.QueryResponse{
		SessionID: sessionID,
		Answer:    result.Answer,
		Sources:   result.Citations,
		Retrieved: result.Retrieved,
		Tokens:    result.Tokens,
		NoSources: result.NoSources,
	})
}
