package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ehrlich-b/stepwise/internal/config"
)

// --- Cosine ---

func TestCosineIdentical(t *testing.T) {
	v := []float32{1, 2, 3}
	if got := Cosine(v, v); !approx(got, 1.0) {
		t.Fatalf("identical vectors: want 1.0, got %f", got)
	}
}

func TestCosineOrthogonalAndOpposite(t *testing.T) {
	if got := Cosine([]float32{1, 0, 0}, []float32{0, 1, 0}); !approx(got, 0.0) {
		t.Fatalf("orthogonal vectors: want 0.0, got %f", got)
	}
	if got := Cosine([]float32{1, 2, 3}, []float32{-1, -2, -3}); !approx(got, -1.0) {
		t.Fatalf("opposite vectors: want -1.0, got %f", got)
	}
}

func TestCosineZeroVector(t *testing.T) {
	if got := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("zero vector: want 0.0, got %f", got)
	}
}

// --- Normalize ---

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if !approx(v[0], 0.6) || !approx(v[1], 0.8) {
		t.Fatalf("normalize: want [0.6 0.8], got [%f %f]", v[0], v[1])
	}
}

// --- TopN / MMR ---

func TestTopN(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := [][]float32{
		{0, 1, 0},     // orthogonal
		{1, 0, 0},     // identical
		{0.5, 0.5, 0}, // partial
		{-1, 0, 0},    // opposite
	}
	got := TopN(query, candidates, 2)
	if len(got) != 2 {
		t.Fatalf("topn: want 2 results, got %d", len(got))
	}
	if got[0].Index != 1 || got[1].Index != 2 {
		t.Fatalf("topn: want [1 2], got [%d %d]", got[0].Index, got[1].Index)
	}
}

func TestMMRPrefersDiversity(t *testing.T) {
	query := []float32{1, 1, 0}
	candidates := [][]float32{
		{1, 0.9, 0},   // most relevant
		{1, 0.9, 0},   // exact duplicate of 0
		{0.6, 1, 0.1}, // relevant, different
		{0, 0, 1},     // irrelevant
	}

	got := MMR(query, candidates, 2, 4, 0.5)
	if len(got) != 2 {
		t.Fatalf("mmr: want 2 results, got %d", len(got))
	}
	if got[0].Index != 0 && got[0].Index != 1 {
		t.Fatalf("mmr: first pick should be the most relevant, got %d", got[0].Index)
	}
	if got[1].Index != 2 {
		t.Fatalf("mmr: second pick should skip the duplicate, got %d", got[1].Index)
	}

	// lambda=1 degenerates to plain relevance ranking.
	plain := MMR(query, candidates, 2, 4, 1)
	if plain[1].Index != 0 && plain[1].Index != 1 {
		t.Fatalf("mmr lambda=1: want duplicate second, got %d", plain[1].Index)
	}
}

func TestMMRSmallPool(t *testing.T) {
	got := MMR([]float32{1, 0}, [][]float32{{1, 0}}, 10, 20, 0.7)
	if len(got) != 1 {
		t.Fatalf("mmr: want 1 result, got %d", len(got))
	}
	if got := MMR([]float32{1, 0}, nil, 10, 20, 0.7); len(got) != 0 {
		t.Fatalf("mmr: want no results, got %d", len(got))
	}
}

// --- Blobs ---

func TestVecBytesRoundTrip(t *testing.T) {
	v := []float32{0.25, -1.5, 3e-8, 42}
	back, err := BytesAsVec(VecAsBytes(v))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range v {
		if back[i] != v[i] {
			t.Fatalf("index %d: want %f, got %f", i, v[i], back[i])
		}
	}
	if _, err := BytesAsVec([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

// --- Hash ---

func TestHashEmbedder(t *testing.T) {
	h := NewHash(64)
	vecs, err := h.Embed(context.Background(), []string{
		"Insert rows into a table",
		"insert ROWS into a table!",
		"weather in paris",
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs[0]) != 64 {
		t.Fatalf("dims: want 64, got %d", len(vecs[0]))
	}
	if !approx(Cosine(vecs[0], vecs[1]), 1.0) {
		t.Errorf("case and punctuation should not matter: %f", Cosine(vecs[0], vecs[1]))
	}
	if Cosine(vecs[0], vecs[2]) >= Cosine(vecs[0], vecs[1]) {
		t.Error("unrelated text should score lower")
	}
	if h.Name() != "hash-64" {
		t.Errorf("name = %q", h.Name())
	}
}

// --- OpenAI-compatible adapter (mock) ---

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/openai/embeddings" {
			t.Errorf("openai: path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("openai: want Bearer test-key, got %s", got)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("openai: decode request: %v", err)
		}
		if req.Model != "text-embedding-004" || len(req.Input) != 2 {
			t.Errorf("openai: request = %+v", req)
		}

		// Out of order to exercise index sorting.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0.2, 0}},
				{"object": "embedding", "index": 0, "embedding": []float32{0.1, 0}},
			},
		})
	}))
	defer srv.Close()

	o := NewOpenAI("test-key", srv.URL+"/v1beta/openai/", "text-embedding-004", 0)
	vecs, err := o.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("openai embed: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 0.1 || vecs[1][0] != 0.2 {
		t.Errorf("openai: vecs = %v", vecs)
	}
	if o.Name() != "openai-compat:text-embedding-004" {
		t.Errorf("name = %q", o.Name())
	}
}

func TestOpenAIEmbedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	o := NewOpenAI("test-key", srv.URL, "m", 0)
	if _, err := o.Embed(context.Background(), []string{"hello"}); err == nil {
		t.Fatal("openai: expected error on 429")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.EmbeddingModel = "hash"
	emb, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := emb.(*Hash); !ok {
		t.Errorf("want *Hash, got %T", emb)
	}

	cfg.LLM.EmbeddingModel = "text-embedding-004"
	if _, err := New(cfg); err == nil {
		t.Error("hosted embedder without key should fail")
	}
}

// --- helpers ---

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}
