package prompt

import (
	"strings"
	"testing"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

func chunk(filename string, page int, text string, score float32) ragmodel.RetrievedChunk {
	return ragmodel.RetrievedChunk{Filename: filename, Page: page, Text: text, Score: score}
}

func TestBuildContext_CitationsMatchIncluded(t *testing.T) {
	results := []ragmodel.RetrievedChunk{
		chunk("a.pdf", 1, strings.Repeat("x", 100), 0.9),
		chunk("b.pdf", 2, strings.Repeat("y", 100), 0.8),
		chunk("c.pdf", 3, strings.Repeat("z", 100), 0.7),
	}

	// budget fits roughly two formatted entries
	ctx, citations := BuildContext(results, 300)

	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	for _, c := range citations {
		if !strings.Contains(ctx, c.Filename) {
			t.Errorf("citation %s not present in context", c.Filename)
		}
	}
	if strings.Contains(ctx, "c.pdf") {
		t.Error("excluded chunk leaked into the context")
	}
	if citations[0].Filename != "a.pdf" || citations[1].Filename != "b.pdf" {
		t.Errorf("citations out of rank order: %+v", citations)
	}
}

func TestBuildContext_AllFit(t *testing.T) {
	results := []ragmodel.RetrievedChunk{
		chunk("a.pdf", 1, "short", 0.9),
		chunk("b.pdf", 5, "also short", 0.5),
	}

	ctx, citations := BuildContext(results, 10000)

	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if !strings.Contains(ctx, "[Source 1 - Doc: a.pdf, Page: 1]") {
		t.Errorf("missing source tag, context:\n%s", ctx)
	}
	if !strings.Contains(ctx, "[Source 2 - Doc: b.pdf, Page: 5]") {
		t.Errorf("missing second source tag, context:\n%s", ctx)
	}
	if citations[1].Score != 0.5 {
		t.Errorf("citation score = %v, want 0.5", citations[1].Score)
	}
}

func TestBuildContext_Empty(t *testing.T) {
	ctx, citations := BuildContext(nil, 1000)
	if ctx != "" || citations != nil {
		t.Errorf("expected empty context for no results, got %q / %v", ctx, citations)
	}
}

func TestBuildContext_FirstChunkOverBudget(t *testing.T) {
	results := []ragmodel.RetrievedChunk{
		chunk("huge.pdf", 1, strings.Repeat("w", 500), 0.99),
	}

	ctx, citations := BuildContext(results, 100)
	if ctx != "" {
		t.Errorf("expected empty context, got %d chars", len(ctx))
	}
	if len(citations) != 0 {
		t.Errorf("expected zero citations, got %d", len(citations))
	}
}
