package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// Hash is a deterministic bag-of-words embedder. Each lower-cased word is
// hashed into one of Dims buckets. It needs no network and is good enough
// for keyword-level retrieval.
type Hash struct {
	Dims int
}

func NewHash(dims int) *Hash {
	if dims <= 0 {
		dims = 256
	}
	return &Hash{Dims: dims}
}

func (h *Hash) Name() string { return fmt.Sprintf("hash-%d", h.Dims) }

func (h *Hash) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = h.vector(t)
	}
	return vecs, nil
}

func (h *Hash) vector(text string) []float32 {
	v := make([]float32, h.Dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		f := fnv.New32a()
		f.Write([]byte(w))
		v[f.Sum32()%uint32(h.Dims)]++
	}
	return Normalize(v)
}
