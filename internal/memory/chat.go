package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/session"
)

const DefaultLimit = 5

// Chatbot answers free-form messages with the user's memories in context.
// Each message is its own short exchange; continuity comes from memory.
type Chatbot struct {
	memory   *Store
	provider llm.Provider
	User     string
	Limit    int
}

func NewChatbot(m *Store, p llm.Provider, user string, limit int) *Chatbot {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Chatbot{memory: m, provider: p, User: user, Limit: limit}
}

// SystemPrompt renders the recalled facts with their scores.
func SystemPrompt(facts []Fact) string {
	var b strings.Builder
	b.WriteString("You are a memory-aware assistant. You answer the user's message and take into account ")
	b.WriteString("what you remember about them. Be precise and say so when you are unsure.\n\nMemory and Score:\n")
	if len(facts) == 0 {
		b.WriteString("(nothing remembered yet)\n")
	}
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s (%.2f)\n", f.Content, f.Score)
	}
	return b.String()
}

// Chat recalls memories for message, asks the model once and stores what
// the exchange taught about the user. A failure to store memories is
// logged, not returned.
func (c *Chatbot) Chat(ctx context.Context, message string) (string, error) {
	facts, err := c.memory.Search(ctx, message, c.User, c.Limit)
	if err != nil {
		return "", fmt.Errorf("recall: %w", err)
	}

	msgs := []session.Message{
		{Role: session.RoleSystem, Content: SystemPrompt(facts)},
		{Role: session.RoleUser, Content: message},
	}
	reply, err := c.provider.Complete(ctx, msgs, llm.Options{})
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}
	answer := reply.Text()
	msgs = append(msgs, session.Message{Role: session.RoleAssistant, Content: answer})

	if _, err := c.memory.Add(ctx, msgs, c.User); err != nil {
		logger.Warn("Failed to store memories", "user", c.User, "error", err)
	}
	return answer, nil
}
