package history_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/adukkipati/pdfrag/internal/config"
	"github.com/adukkipati/pdfrag/internal/data/history"
)

func TestRedisHistory_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := history.NewTestHistory(client)

	ctx := context.Background()
	sessionID := "session_abc_123"

	t.Run("Append and Recent roundtrip", func(t *testing.T) {
		if err := cache.Append(ctx, sessionID, "Q: hello A: hi"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if err := cache.Append(ctx, sessionID, "Q: more A: sure"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		entries, err := cache.Recent(ctx, sessionID, 5)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0] != "Q: hello A: hi" {
			t.Errorf("entries out of order, got %q first", entries[0])
		}
	})

	t.Run("Trims to history depth", func(t *testing.T) {
		for i := 0; i < config.HistoryDepth+3; i++ {
			if err := cache.Append(ctx, "busy", fmt.Sprintf("entry %d", i)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		entries, err := cache.Recent(ctx, "busy", config.HistoryDepth+10)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(entries) != config.HistoryDepth {
			t.Errorf("expected trim to %d entries, got %d", config.HistoryDepth, len(entries))
		}
		if entries[0] != "entry 3" {
			t.Errorf("oldest surviving entry = %q, want entry 3", entries[0])
		}
	})

	t.Run("Clear removes the session", func(t *testing.T) {
		if err := cache.Clear(ctx, sessionID); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if mr.Exists(sessionID) {
			t.Error("session key still exists after Clear")
		}
		entries, err := cache.Recent(ctx, sessionID, 5)
		if err != nil {
			t.Fatalf("Recent after Clear failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries after Clear, got %d", len(entries))
		}
	})
}

func TestInMemoryHistory(t *testing.T) {
	cache := history.NewInMemoryHistory()
	ctx := context.Background()

	for i := 0; i < config.HistoryDepth+2; i++ {
		if err := cache.Append(ctx, "s1", fmt.Sprintf("entry %d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, _ := cache.Recent(ctx, "s1", config.HistoryDepth)
	if len(entries) != config.HistoryDepth {
		t.Fatalf("expected %d entries, got %d", config.HistoryDepth, len(entries))
	}
	if entries[len(entries)-1] != fmt.Sprintf("entry %d", config.HistoryDepth+1) {
		t.Errorf("newest entry = %q", entries[len(entries)-1])
	}

	if err := cache.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, _ = cache.Recent(ctx, "s1", 5)
	if len(entries) != 0 {
		t.Errorf("expected empty history after Clear, got %d", len(entries))
	}
}
