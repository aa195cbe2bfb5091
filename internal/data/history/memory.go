package history

import (
	"context"
	"sync"

	"github.com/adukkipati/pdfrag/internal/config"
)

// InMemoryHistory is the fallback when Redis is offline. Same trimming
// behavior, process-local lifetime.
type InMemoryHistory struct {
	mu       sync.RWMutex
	sessions map[string][]string
}

func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{sessions: make(map[string][]string)}
}

func (h *InMemoryHistory) Append(ctx context.Context, sessionID, entry string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := append(h.sessions[sessionID], entry)
	if len(entries) > config.HistoryDepth {
		entries = entries[len(entries)-config.HistoryDepth:]
	}
	h.sessions[sessionID] = entries
	return nil
}

func (h *InMemoryHistory) Recent(ctx context.Context, sessionID string, n int) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entries := h.sessions[sessionID]
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]string, len(entries))
	copy(out, entries)
	return out, nil
}

func (h *InMemoryHistory) Clear(ctx context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
	return nil
}
