package embedding

import (
	"strings"

	"github.com/ehrlich-b/stepwise/internal/config"
)

// HashModel selects the offline Hash embedder in llm.embedding_model.
const HashModel = "hash"

// New constructs the Embedder described by cfg. The hosted embedder shares
// the chat endpoint and key.
func New(cfg *config.Config) (Embedder, error) {
	if strings.EqualFold(cfg.LLM.EmbeddingModel, HashModel) {
		return NewHash(0), nil
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel, cfg.LLMTimeout()), nil
}
