package llm

import (
	"context"
	"errors"

	"github.com/ehrlich-b/stepwise/internal/session"
)

var ErrNoChoices = errors.New("model returned no choices")

// Provider is the Model Gateway: one blocking request per call.
type Provider interface {
	// Complete sends the transcript and returns the model reply
	Complete(ctx context.Context, messages []session.Message, opts Options) (*Reply, error)

	// Name returns the provider name
	Name() string
}

// Options tunes a single completion request.
type Options struct {
	Model       string   // empty = provider default
	JSON        bool     // ask for a JSON object reply
	N           int      // number of choices, 0 or 1 = one
	Temperature *float32 // nil = server default
}

// Reply is the structured result of one gateway call.
type Reply struct {
	Choices []string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Text returns the first choice.
func (r *Reply) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0]
}

// Float32 is a helper for Options.Temperature.
func Float32(v float32) *float32 {
	return &v
}
