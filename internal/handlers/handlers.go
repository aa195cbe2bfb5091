// Package handlers holds the HTTP endpoints. Handlers translate between the
// wire contracts in internal/api and the rag.Service facade; none of them
// reach past it except for the document CRUD, which talks to the store and
// the vector index directly.
package handlers

import (
	"sync"

	"github.com/adukkipati/pdfrag/internal/rag"
	"github.com/adukkipati/pdfrag/internal/rag/vectorindex"
	"github.com/adukkipati/pdfrag/internal/store"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var (
	handlerInstance *ragHandler //private singleton
	once            sync.Once
	logRH           *applog.Logger
)

type ragHandler struct {
	service rag.Service
	store   store.Store
	index   vectorindex.Index
}

func InitHandlers(service rag.Service, st store.Store, index vectorindex.Index) {
	once.Do(func() {
		handlerInstance = &ragHandler{service: service, store: st, index: index}
		logRH = applog.NewLogger("RequestHandler")
		logRH.Info("starting request handlers")
	})
}
