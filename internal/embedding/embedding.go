package embedding

import "context"

// Embedder produces vector embeddings from text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string // unique key for caching, e.g. "openai-compat:text-embedding-004"
}
