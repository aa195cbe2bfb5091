// Package worker runs document ingestion in the background. Uploads return
// as soon as the document row exists; the pool drains the queue and the
// document's status column is the progress report.
package worker

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/metrics"
	"github.com/adukkipati/pdfrag/internal/rag"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

// Task is one queued ingestion. The document row already exists in
// processing state before the task is enqueued.
type Task struct {
	Doc     ragmodel.Document
	Path    string
	TraceID string
}

var ErrQueueFull = errors.New("ingest queue is full")

var (
	_ragService        rag.Service
	taskChannel        chan Task
	dispatcherChannel  chan bool
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	minWorkerCount     = config.MinWorkerCount
	logger             *applog.Logger
)

func InitServices(ragService rag.Service) {
	_ragService = ragService
	taskChannel = make(chan Task, config.IngestQueueLimit)
	dispatcherChannel = make(chan bool, config.IngestQueueLimit)
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = applog.NewLogger("WorkerPool")
	logger.Info("initializing worker pool")
	go dispatcher()
}

// Enqueue hands a task to the pool without blocking the caller. A full
// queue is the caller's problem to surface, not to wait out.
func Enqueue(task Task) error {
	select {
	case taskChannel <- task:
		metrics.IncrementIngestQueue()
	default:
		return ErrQueueFull
	}

	select {
	case dispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
		// dispatcher already has pending signals
	}
	return nil
}

func dispatcher() {
	createWorker()
	logger.Info("dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
			logger.Info("creating new worker", "workerCount", atomic.LoadInt64(&currentWorkerCount))
			createWorker()
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	go worker()
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
}

func worker() {
	for {
		select {
		case task := <-taskChannel:
			metrics.DecrementIngestQueue()
			executeTask(task)

		case <-stopWorkerChannel:
			removeWorker("stop signal received")
			return

		case <-time.After(config.IdleWorkerTimeout):
			// retire idle workers down to the configured floor
			if atomic.LoadInt64(&currentWorkerCount) > atomic.LoadInt64(&minWorkerCount) {
				removeWorker("idle timeout")
				return
			}
		}
	}
}
