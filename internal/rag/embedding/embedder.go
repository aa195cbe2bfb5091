package embedding

import "context"

// Embedder is the text-to-vector port. Both methods must use the same model
// and output dimension as each other; query vectors and chunk vectors live
// in one index.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, same length and order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
