// @title           PDF RAG API
// @version         1.0
// @description     Document ingestion and retrieval-augmented question answering over uploaded files.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/data/history"
	"github.com/adukkipati/pdfrag/internal/handlers"
	"github.com/adukkipati/pdfrag/internal/rag"
	geminiembed "github.com/adukkipati/pdfrag/internal/rag/embedding/gemini"
	geminillm "github.com/adukkipati/pdfrag/internal/rag/llm/gemini"
	"github.com/adukkipati/pdfrag/internal/rag/vectorindex/qdrantdb"
	"github.com/adukkipati/pdfrag/internal/server"
	"github.com/adukkipati/pdfrag/internal/store"
	"github.com/adukkipati/pdfrag/internal/worker"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	applog.Init()
	var logger = applog.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	relationalStore, err := store.GetPostgresStore(serviceContext, settings.PostgresDSN())
	if err != nil {
		logger.Error("could not initialize postgres", "error", err)
		os.Exit(1)
	}

	historyCache := history.GetRedisHistory(serviceContext, settings.RedisAddr)
	if historyCache == nil {
		if !config.FallbackHistoryToMemory {
			logger.Error("redis is offline and fallback is disabled")
			os.Exit(1)
		}
		logger.Warn("redis is offline, using in-memory conversation history")
		historyCache = history.NewInMemoryHistory()
	}

	// one pooled transport shared by both genai clients
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        config.MaxIdleConns,
			MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
			IdleConnTimeout:     config.IdleConnTimeout,
		},
	}

	vectorIndex := qdrantdb.GetIndex(serviceContext, settings.QdrantHost, settings.QdrantGrpcPort)
	embedder := geminiembed.GetEmbedder(serviceContext, config.GoogleEmbeddingModel, settings.GeminiAPIKey, httpClient)
	llmProvider := geminillm.GetProvider(serviceContext, config.GeminiModelName, settings.GeminiAPIKey, httpClient)

	if vectorIndex == nil || embedder == nil || llmProvider == nil {
		logger.Error("one or more external services failed to initialize, shutting down",
			"vectorIndex", vectorIndex != nil, "embedder", embedder != nil, "llmProvider", llmProvider != nil)
		return
	}

	if err := vectorIndex.EnsureCollection(serviceContext); err != nil {
		logger.Error("could not ensure vector collection", "error", err)
		os.Exit(1)
	}

	ragService := rag.NewService(embedder, vectorIndex, llmProvider, relationalStore, historyCache, settings)

	handlers.InitHandlers(ragService, relationalStore, vectorIndex)

	worker.InitServices(ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("server stopped")
}
