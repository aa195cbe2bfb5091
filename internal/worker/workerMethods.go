package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/metrics"
)

func executeTask(task Task) {
	start := time.Now()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, task.TraceID)

	taskLogger := logger.With("traceId", task.TraceID, "docId", task.Doc.ID)
	taskLogger.Debug("processing ingestion task", "filename", task.Doc.Filename)

	// the pipeline owns the failure handling: it has already marked the
	// document failed and cleaned up the index by the time err comes back
	if err := _ragService.Ingest(ctx, task.Doc, task.Path); err != nil {
		taskLogger.Error("ingestion task failed", "error", err)
		metrics.CaptureTaskMetrics("failed", time.Since(start))
		return
	}
	metrics.CaptureTaskMetrics("completed", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}
