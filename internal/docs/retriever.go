package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ehrlich-b/stepwise/internal/embedding"
	"github.com/ehrlich-b/stepwise/internal/store"
)

var ErrEmptyIndex = errors.New("documentation index is empty")

// Retriever answers queries from the index with MMR selection. Chunks are
// loaded from the store on first use and cached.
type Retriever struct {
	store    *store.Store
	embedder embedding.Embedder

	K      int
	FetchK int
	Lambda float32

	mu     sync.Mutex
	chunks []store.DocChunk
	vecs   [][]float32
}

func NewRetriever(s *store.Store, e embedding.Embedder, k, fetchK int, lambda float32) *Retriever {
	return &Retriever{store: s, embedder: e, K: k, FetchK: fetchK, Lambda: lambda}
}

func (r *Retriever) load() ([]store.DocChunk, [][]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.chunks != nil {
		return r.chunks, r.vecs, nil
	}
	chunks, err := r.store.ListDocChunks(r.embedder.Name())
	if err != nil {
		return nil, nil, fmt.Errorf("load index: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil, ErrEmptyIndex
	}
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		vecs[i] = c.Embedding
	}
	r.chunks, r.vecs = chunks, vecs
	return chunks, vecs, nil
}

// Invalidate drops the cached chunks so the next query reloads them.
func (r *Retriever) Invalidate() {
	r.mu.Lock()
	r.chunks, r.vecs = nil, nil
	r.mu.Unlock()
}

// Retrieve returns up to K chunks relevant to query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.DocChunk, error) {
	chunks, vecs, err := r.load()
	if err != nil {
		return nil, err
	}
	qv, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(qv))
	}

	matches := embedding.MMR(qv[0], vecs, r.K, r.FetchK, r.Lambda)
	out := make([]store.DocChunk, len(matches))
	for i, m := range matches {
		out[i] = chunks[m.Index]
	}
	return out, nil
}

// Search returns the retrieved chunks joined into one context block.
func (r *Retriever) Search(ctx context.Context, query string) (string, error) {
	chunks, err := r.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n"), nil
}
