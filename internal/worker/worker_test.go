package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
	"github.com/adukkipati/pdfrag/internal/rag"
	"github.com/adukkipati/pdfrag/pkg/applog"
)

// MockRagService tracks how many ingestion tasks reached it
type MockRagService struct {
	IngestedCount int32
}

func (m *MockRagService) Query(ctx context.Context, params rag.QueryParams) (rag.QueryResult, error) {
	return rag.QueryResult{}, nil
}

func (m *MockRagService) Ingest(ctx context.Context, doc ragmodel.Document, path string) error {
	atomic.AddInt32(&m.IngestedCount, 1)
	return nil
}

func (m *MockRagService) ClearSession(ctx context.Context, sessionID string) error {
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(mockRag)
	atomic.StoreInt64(&currentWorkerCount, 0)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher spawns the first worker", func(t *testing.T) {
		time.Sleep(50 * time.Millisecond)
		if count := atomic.LoadInt64(&currentWorkerCount); count < 1 {
			t.Errorf("expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Enqueued task gets processed", func(t *testing.T) {
		task := Task{Doc: ragmodel.Document{ID: "doc-1", Filename: "a.pdf"}, Path: "uploads/a.pdf", TraceID: "t-1"}
		if err := Enqueue(task); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}

		time.Sleep(50 * time.Millisecond)
		if processed := atomic.LoadInt32(&mockRag.IngestedCount); processed != 1 {
			t.Errorf("expected 1 task processed, got %d", processed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("workers did not stop within timeout")
		}
	})
}

func TestEnqueue_FullQueue(t *testing.T) {
	logger = applog.NewLogger("TestWorkerPool")
	_ragService = &MockRagService{}
	// no workers draining, so the channel fills up
	taskChannel = make(chan Task, 2)
	dispatcherChannel = make(chan bool, config.IngestQueueLimit)

	for i := 0; i < 2; i++ {
		if err := Enqueue(Task{Doc: ragmodel.Document{ID: "d"}}); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}
	if err := Enqueue(Task{Doc: ragmodel.Document{ID: "overflow"}}); err != ErrQueueFull {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}
