package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adukkipati/pdfrag/internal/api"
)

// CreateSessionHandler godoc
// @Summary      Create or resume a chat session
// @Description  Creates the session if it does not exist yet and returns it either way. An empty body or empty session_id gets a fresh id.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      api.SessionRequest  false  "Optional session id to resume"
// @Success      201      {object}  api.SessionResponse
// @Router       /session [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var requestData api.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
		WriteErrorResponse(w, http.StatusBadRequest, "", "bad request")
		return
	}

	sessionID := requestData.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		logRH.Debug("new session request", "sessionId", sessionID)
	}

	session, err := handlerInstance.store.EnsureSession(r.Context(), sessionID)
	if err != nil {
		logRH.Error("could not create session", "sessionId", sessionID, "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, sessionID, msg)
		return
	}

	writeJsonResponse(w, http.StatusCreated, api.SessionResponse{
		SessionID: session.SessionID,
		CreatedAt: session.CreatedAt,
	})
}

// ListSessionsHandler godoc
// @Summary      List all chat sessions
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  api.SessionListResponse
// @Router       /sessions [get]
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := handlerInstance.store.ListSessions(r.Context())
	if err != nil {
		logRH.Error("could not list sessions", "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, "", msg)
		return
	}

	out := make([]api.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, api.SessionResponse{SessionID: s.SessionID, CreatedAt: s.CreatedAt})
	}
	writeJsonResponse(w, http.StatusOK, api.SessionListResponse{Sessions: out, Count: len(out)})
}

// GetMessagesHandler godoc
// @Summary      Get a session's conversation
// @Description  Returns the session's messages in timestamp order. Unknown sessions return an empty list, not a 404.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  api.MessageListResponse
// @Router       /messages/{sessionID} [get]
func GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "session id is required")
		return
	}

	msgs, err := handlerInstance.store.ListMessages(r.Context(), sessionID)
	if err != nil {
		logRH.Error("could not list messages", "sessionId", sessionID, "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, sessionID, msg)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageListResponse{
		SessionID: sessionID,
		Messages:  msgs,
		Count:     len(msgs),
	})
}

// ClearSessionHandler godoc
// @Summary      Clear a session's conversation
// @Description  Deletes the session's messages and its cached history. The session row and its query metrics stay.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  map[string]string
// @Router       /session/{sessionID} [delete]
func ClearSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "session id is required")
		return
	}

	if err := handlerInstance.service.ClearSession(r.Context(), sessionID); err != nil {
		logRH.Error("could not clear session", "sessionId", sessionID, "error", err)
		code, msg := statusFromError(err)
		WriteErrorResponse(w, code, sessionID, msg)
		return
	}
	writeJsonResponse(w, http.StatusOK, map[string]string{"session_id": sessionID, "status": "cleared"})
}
