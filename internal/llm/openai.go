package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completions endpoint.
// The default base URL is Gemini's compatibility layer.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider. timeout <= 0 means no client timeout.
func NewOpenAIProvider(apiKey, baseURL, model string, timeout time.Duration) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends messages and returns every choice the server produced.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []session.Message, opts Options) (*Reply, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	model := opts.Model
	if model == "" {
		model = p.model
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: chatMessages,
	}
	if opts.N > 1 {
		req.N = opts.N
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
		if req.Temperature == 0 {
			// go-openai omits a zero temperature; send the smallest
			// positive value so the request stays greedy.
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}
	if opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	logger.Debug("LLM API request",
		"model", model,
		"num_messages", len(messages),
		"json", opts.JSON,
		"n", opts.N)

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		logger.Error("LLM API call failed",
			"error", err,
			"duration", duration,
			"model", model)
		return nil, fmt.Errorf("LLM API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		logger.Error("No choices from LLM",
			"duration", duration,
			"model", model)
		return nil, ErrNoChoices
	}

	reply := &Reply{
		Choices: make([]string, len(resp.Choices)),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for i, c := range resp.Choices {
		reply.Choices[i] = c.Message.Content
	}

	logger.Debug("LLM API response",
		"model", model,
		"duration", duration,
		"choices", len(reply.Choices),
		"prompt_tokens", reply.Usage.PromptTokens,
		"completion_tokens", reply.Usage.CompletionTokens,
		"total_tokens", reply.Usage.TotalTokens)

	return reply, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai-compatible"
}
