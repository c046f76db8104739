// Package memory keeps facts learned about a user across conversations.
// Facts are extracted from each exchange by the model, embedded, and
// recalled by vector similarity on later messages.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ehrlich-b/stepwise/internal/embedding"
	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/ehrlich-b/stepwise/internal/logger"
	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/ehrlich-b/stepwise/internal/store"
)

var ErrBadExtraction = errors.New("fact extraction reply is not valid JSON")

// Fact is one recalled memory with its similarity to the query.
type Fact struct {
	ID      string
	Content string
	Score   float32
}

// Store is the vector memory of every user.
type Store struct {
	db       *store.Store
	embedder embedding.Embedder
	provider llm.Provider
}

func New(db *store.Store, e embedding.Embedder, p llm.Provider) *Store {
	return &Store{db: db, embedder: e, provider: p}
}

// Search returns up to limit facts about user, most similar first.
func (s *Store) Search(ctx context.Context, query, user string, limit int) ([]Fact, error) {
	rows, err := s.db.ListMemories(user, s.embedder.Name())
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	qv, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(qv))
	}
	vecs := make([][]float32, len(rows))
	for i, r := range rows {
		vecs[i] = r.Embedding
	}

	matches := embedding.TopN(qv[0], vecs, limit)
	facts := make([]Fact, len(matches))
	for i, m := range matches {
		facts[i] = Fact{ID: rows[m.Index].ID, Content: rows[m.Index].Content, Score: m.Similarity}
	}
	return facts, nil
}

const extractPrompt = `You extract durable facts about the user from a conversation.
Return a JSON object {"facts": ["..."]} listing short standalone statements about the user:
preferences, personal details, plans and anything they asked to be remembered.
Return {"facts": []} when there is nothing worth remembering.`

// Add extracts facts from messages and stores the ones not already known.
// It returns the facts it stored.
func (s *Store) Add(ctx context.Context, messages []session.Message, user string) ([]Fact, error) {
	var convo strings.Builder
	for _, m := range messages {
		if m.Role == session.RoleSystem {
			continue
		}
		fmt.Fprintf(&convo, "%s: %s\n", m.Role, m.Content)
	}
	if convo.Len() == 0 {
		return nil, nil
	}

	reply, err := s.provider.Complete(ctx, []session.Message{
		{Role: session.RoleSystem, Content: extractPrompt},
		{Role: session.RoleUser, Content: convo.String()},
	}, llm.Options{JSON: true, Temperature: llm.Float32(0.2)})
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}
	candidates, err := parseFacts(reply.Text())
	if err != nil {
		return nil, err
	}

	known, err := s.db.ListMemories(user, s.embedder.Name())
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	seen := make(map[string]bool, len(known))
	for _, k := range known {
		seen[strings.ToLower(k.Content)] = true
	}
	var fresh []string
	for _, c := range candidates {
		key := strings.ToLower(c)
		if !seen[key] {
			seen[key] = true
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	vecs, err := s.embedder.Embed(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("embed facts: %w", err)
	}
	stored := make([]Fact, 0, len(fresh))
	for i, text := range fresh {
		row := &store.MemoryRow{UserID: user, Content: text, Embedder: s.embedder.Name(), Embedding: vecs[i]}
		if err := s.db.AddMemory(row); err != nil {
			return stored, err
		}
		stored = append(stored, Fact{ID: row.ID, Content: text})
	}
	logger.Debug("Stored memories", "user", user, "count", len(stored))
	return stored, nil
}

// Clear forgets everything about user.
func (s *Store) Clear(user string) (int64, error) {
	return s.db.ClearMemories(user)
}

func parseFacts(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var out struct {
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExtraction, err)
	}
	facts := out.Facts[:0]
	for _, f := range out.Facts {
		if f = strings.TrimSpace(f); f != "" {
			facts = append(facts, f)
		}
	}
	return facts, nil
}
