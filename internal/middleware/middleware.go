package middleware

import (
	"net/http"
	"strconv"

	"github.com/adukkipati/pdfrag/internal/handlers"
	"github.com/adukkipati/pdfrag/internal/metrics"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *applog.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

// Every route goes through the same chain: trace injection, then the per-IP
// rate limiter, then the handler, then the request counter.
var (
	UploadHandler         = Wrap(handlers.UploadHandler)
	ListDocumentsHandler  = Wrap(handlers.ListDocumentsHandler)
	DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
	CreateSessionHandler  = Wrap(handlers.CreateSessionHandler)
	ListSessionsHandler   = Wrap(handlers.ListSessionsHandler)
	GetMessagesHandler    = Wrap(handlers.GetMessagesHandler)
	ClearSessionHandler   = Wrap(handlers.ClearSessionHandler)
	QueryHandler          = Wrap(handlers.QueryHandler)
	HealthHandler         = Wrap(handlers.HealthHandler)
)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = applog.NewLogger("middleware")

	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	return re
}
