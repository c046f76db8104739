package docs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ehrlich-b/stepwise/internal/embedding"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/store"
)

const embedBatch = 32

// PageSource yields documentation pages. Fetcher is the production
// implementation.
type PageSource interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Index owns the embedded chunks of one embedder in the store.
type Index struct {
	store    *store.Store
	embedder embedding.Embedder
	splitter Splitter
}

func NewIndex(s *store.Store, e embedding.Embedder, sp Splitter) *Index {
	return &Index{store: s, embedder: e, splitter: sp}
}

// BuildResult reports what Build did.
type BuildResult struct {
	Loaded  bool // existing index reused, nothing fetched
	Pages   int
	Failed  int
	Chunks  int
	Sources int
	Bytes   int64
}

func (r BuildResult) String() string {
	verb := "Built"
	if r.Loaded {
		verb = "Loaded existing"
	}
	s := fmt.Sprintf("%s index: %d chunks from %d pages (%s of text)",
		verb, r.Chunks, r.Sources, humanize.Bytes(uint64(r.Bytes)))
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d pages failed", r.Failed)
	}
	return s
}

// ErrNoPages means a build fetched nothing, so the previous index was kept.
var ErrNoPages = errors.New("no documentation pages could be fetched")

// Build fetches, splits and embeds every URL. When the index already has
// chunks for this embedder it is reused unless force is set.
//
// New chunks are written under a staging key and replace the live index
// only once every page has been processed. A failed build leaves the
// previous index, or no index, in place.
func (ix *Index) Build(ctx context.Context, src PageSource, urls []string, force bool) (BuildResult, error) {
	name := ix.embedder.Name()
	existing, err := ix.store.CountDocChunks(name)
	if err != nil {
		return BuildResult{}, fmt.Errorf("count chunks: %w", err)
	}
	if existing > 0 && !force {
		return ix.result(true, 0, 0)
	}

	staging := name + ".next"
	if _, err := ix.store.DeleteDocChunks(staging); err != nil {
		return BuildResult{}, fmt.Errorf("clear staging: %w", err)
	}
	pages, failed, err := ix.fill(ctx, staging, src, urls)
	if err == nil && pages == 0 {
		err = fmt.Errorf("%w (%d failed)", ErrNoPages, failed)
	}
	if err != nil {
		if _, derr := ix.store.DeleteDocChunks(staging); derr != nil {
			logger.Warn("Could not discard partial index", "error", derr)
		}
		return BuildResult{}, err
	}
	if err := ix.store.RenameDocChunks(staging, name); err != nil {
		return BuildResult{}, fmt.Errorf("swap index: %w", err)
	}
	return ix.result(false, pages, failed)
}

func (ix *Index) fill(ctx context.Context, key string, src PageSource, urls []string) (pages, failed int, err error) {
	for _, u := range urls {
		page, err := src.Fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return pages, failed, ctx.Err()
			}
			logger.Warn("Skipping documentation page", "url", u, "error", err)
			failed++
			continue
		}
		if err := ix.addPage(ctx, key, page); err != nil {
			return pages, failed, err
		}
		pages++
	}
	return pages, failed, nil
}

// addPage splits one page and stores its embedded chunks under key.
func (ix *Index) addPage(ctx context.Context, key string, page *Page) error {
	texts := ix.splitter.Split(page.WithFooter())
	for start := 0; start < len(texts); start += embedBatch {
		end := min(start+embedBatch, len(texts))
		vecs, err := ix.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("embed %s: %w", page.Source, err)
		}
		chunks := make([]store.DocChunk, len(vecs))
		for i, v := range vecs {
			chunks[i] = store.DocChunk{
				Embedder:  key,
				Source:    page.Source,
				Title:     page.Title,
				Content:   texts[start+i],
				Embedding: v,
			}
		}
		if err := ix.store.InsertDocChunks(chunks); err != nil {
			return fmt.Errorf("store %s: %w", page.Source, err)
		}
	}
	logger.Debug("Indexed page", "url", page.Source, "chunks", len(texts))
	return nil
}

func (ix *Index) result(loaded bool, pages, failed int) (BuildResult, error) {
	st, err := ix.store.DocStats(ix.embedder.Name())
	if err != nil {
		return BuildResult{}, fmt.Errorf("index stats: %w", err)
	}
	return BuildResult{
		Loaded:  loaded,
		Pages:   pages,
		Failed:  failed,
		Chunks:  st.Chunks,
		Sources: st.Sources,
		Bytes:   st.Bytes,
	}, nil
}
