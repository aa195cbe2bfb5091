package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

func makeWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestSplit_Scenario1000Words(t *testing.T) {
	pages := []ragmodel.PageText{
		{Page: 1, Text: strings.Join(makeWords(1000), " ")},
	}

	chunks, err := Split(pages, 512, 50)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantCounts := []int{512, 512, 76}
	for i, want := range wantCounts {
		if chunks[i].WordCount != want {
			t.Errorf("chunk %d word count = %d, want %d", i, chunks[i].WordCount, want)
		}
	}

	// stride is 512-50=462, so the second window starts at word 462
	if !strings.HasPrefix(chunks[1].Text, "w462 ") {
		t.Errorf("chunk 1 should start at word 462, starts with %q", chunks[1].Text[:20])
	}
	if !strings.HasPrefix(chunks[2].Text, "w924 ") {
		t.Errorf("chunk 2 should start at word 924, starts with %q", chunks[2].Text[:20])
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := []ragmodel.PageText{
		{Page: 1, Text: strings.Join(makeWords(700), " ")},
		{Page: 2, Text: strings.Join(makeWords(333), " ")},
	}

	first, err := Split(pages, 128, 32)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	second, err := Split(pages, 128, 32)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different chunk sequences")
	}
}

func TestSplit_ReconstructsWordStream(t *testing.T) {
	words := makeWords(997)
	pages := []ragmodel.PageText{
		{Page: 1, Text: strings.Join(words[:400], " ")},
		{Page: 2, Text: strings.Join(words[400:], " ")},
	}

	size, overlap := 100, 20
	chunks, err := Split(pages, size, overlap)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// Dropping each chunk's leading overlap words (except the first chunk)
	// must reconstruct the original stream with no loss.
	var rebuilt []string
	for i, c := range chunks {
		cw := strings.Fields(c.Text)
		if i > 0 {
			cw = cw[overlap:]
		}
		rebuilt = append(rebuilt, cw...)
	}

	if !reflect.DeepEqual(rebuilt, words) {
		t.Fatalf("reconstruction lost data: got %d words, want %d", len(rebuilt), len(words))
	}
}

func TestSplit_PageAttribution(t *testing.T) {
	pages := []ragmodel.PageText{
		{Page: 3, Text: strings.Join(makeWords(10), " ")},
		{Page: 7, Text: strings.Join(makeWords(10), " ")},
	}

	chunks, err := Split(pages, 8, 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// first window starts on page 3; a window starting at word 12 is page 7
	if chunks[0].Page != 3 {
		t.Errorf("chunk 0 page = %d, want 3", chunks[0].Page)
	}
	last := chunks[len(chunks)-1]
	if last.Page != 7 {
		t.Errorf("last chunk page = %d, want 7", last.Page)
	}
}

func TestSplit_EdgeCases(t *testing.T) {
	t.Run("short document is one chunk", func(t *testing.T) {
		pages := []ragmodel.PageText{{Page: 1, Text: strings.Join(makeWords(512), " ")}}
		chunks, err := Split(pages, 512, 50)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(chunks) != 1 {
			t.Fatalf("expected exactly 1 chunk, got %d", len(chunks))
		}
		if chunks[0].WordCount != 512 {
			t.Errorf("word count = %d, want 512", chunks[0].WordCount)
		}
	})

	t.Run("empty text yields zero chunks", func(t *testing.T) {
		pages := []ragmodel.PageText{{Page: 1, Text: "   \n\t "}, {Page: 2, Text: ""}}
		chunks, err := Split(pages, 512, 50)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected zero chunks, got %d", len(chunks))
		}
	})

	t.Run("overlap must be below size", func(t *testing.T) {
		pages := []ragmodel.PageText{{Page: 1, Text: "a b c"}}
		if _, err := Split(pages, 10, 10); err == nil {
			t.Error("expected error for overlap == size")
		}
		if _, err := Split(pages, 0, 0); err == nil {
			t.Error("expected error for zero size")
		}
	})

	t.Run("indices are sequential", func(t *testing.T) {
		pages := []ragmodel.PageText{{Page: 1, Text: strings.Join(makeWords(300), " ")}}
		chunks, _ := Split(pages, 50, 10)
		for i, c := range chunks {
			if c.Index != i {
				t.Fatalf("chunk %d has index %d", i, c.Index)
			}
		}
	})
}
