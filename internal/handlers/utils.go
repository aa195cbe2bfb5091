package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/adukkipati/pdfrag/internal/api"
	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/ragerror"
	"github.com/adukkipati/pdfrag/internal/store"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// can't send a clean status code anymore, just log it
		logRH.Error("error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Code: httpCode, Message: message, Id: id})
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func traceID(ctx context.Context) string {
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}

// statusFromError maps a pipeline failure onto the response code. Not found
// is the caller's mistake, a timeout is the upstream's, everything else
// inside the pipeline is a bad gateway.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ragerror.ErrTimeout):
		return http.StatusGatewayTimeout, "upstream call timed out"
	case errors.Is(err, ragerror.ErrEmbedding),
		errors.Is(err, ragerror.ErrGeneration),
		errors.Is(err, ragerror.ErrIndex):
		return http.StatusBadGateway, "upstream service failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func ensureUploadDir() (string, error) {
	if err := os.MkdirAll(config.UploadDir, 0750); err != nil {
		return "", err
	}
	return config.UploadDir, nil
}
