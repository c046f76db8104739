package docs

import (
	"context"
	"fmt"

	"github.com/ehrlich-b/stepwise/internal/agent"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/ehrlich-b/stepwise/internal/step"
)

// Bot answers documentation questions. Each turn retrieves context for the
// query up front, records it in the transcript, then lets the step loop
// reason over it.
type Bot struct {
	Name         string
	retriever    *Retriever
	orchestrator *agent.Orchestrator
}

func NewBot(name string, r *Retriever, o *agent.Orchestrator) *Bot {
	if name == "" {
		name = "project"
	}
	return &Bot{Name: name, retriever: r, orchestrator: o}
}

// ContextMessage is the assistant message carrying retrieved passages.
func (b *Bot) ContextMessage(passages string) string {
	return fmt.Sprintf("Relevant %s documentation context:\n\n%s", b.Name, passages)
}

// Turn runs one question through retrieval and the step loop.
func (b *Bot) Turn(ctx context.Context, s *session.Session, query string) (step.Record, error) {
	found, err := b.retriever.Search(ctx, query)
	if err != nil {
		return step.Record{}, fmt.Errorf("retrieve context: %w", err)
	}
	logger.Debug("Retrieved documentation context", "query", query, "bytes", len(found))

	s.Append(session.RoleUser, query)
	s.Append(session.RoleAssistant, b.ContextMessage(found))
	return b.orchestrator.Continue(ctx, s)
}
