package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/middleware"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var (
	server  *http.Server
	_logger *applog.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = applog.NewLogger("Server")

	r := chi.NewRouter()

	r.Post("/upload", middleware.UploadHandler)
	r.Get("/documents", middleware.ListDocumentsHandler)
	r.Delete("/documents/{id}", middleware.DeleteDocumentHandler)

	r.Post("/session", middleware.CreateSessionHandler)
	r.Get("/sessions", middleware.ListSessionsHandler)
	r.Get("/messages/{sessionID}", middleware.GetMessagesHandler)
	r.Delete("/session/{sessionID}", middleware.ClearSessionHandler)

	r.Post("/query", middleware.QueryHandler)

	r.Get("/healthz", middleware.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("server is listening", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("could not shutdown gracefully", "error", err)
		}

		//close workers, then the shared clients
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("graceful shutdown complete")
	case <-ctx.Done():
		_logger.Info("forced shutdown")
		os.Exit(1)
	}
}
