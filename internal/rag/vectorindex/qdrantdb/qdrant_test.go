package qdrantdb

import "testing"

func TestChunkPointID_Deterministic(t *testing.T) {
	first := ChunkPointID("doc-1", 0)
	second := ChunkPointID("doc-1", 0)
	if first != second {
		t.Errorf("same document and index produced different ids: %s vs %s", first, second)
	}
}

func TestChunkPointID_DistinguishesChunksAndDocuments(t *testing.T) {
	ids := map[string]string{
		"doc-1/0": ChunkPointID("doc-1", 0),
		"doc-1/1": ChunkPointID("doc-1", 1),
		"doc-2/0": ChunkPointID("doc-2", 0),
		// a separator-less docID+index concatenation would collide these two
		"doc-1/10": ChunkPointID("doc-1", 10),
		"doc-11/0": ChunkPointID("doc-11", 0),
	}

	seen := make(map[string]string)
	for key, id := range ids {
		if prev, dup := seen[id]; dup {
			t.Errorf("id collision between %s and %s", prev, key)
		}
		seen[id] = key
	}
}
