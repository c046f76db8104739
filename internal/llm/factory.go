package llm

import (
	"github.com/ehrlich-b/stepwise/internal/config"
)

// NewProvider creates the gateway described by cfg.
func NewProvider(cfg *config.Config) (Provider, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLMTimeout()), nil
}
