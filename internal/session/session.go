// Package session holds the transcript of one conversation: an ordered,
// append-only list of role-tagged messages.
package session

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Messages are never mutated after append.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session owns the transcript for a single REPL lifetime.
type Session struct {
	ID        string
	Profile   string
	CreatedAt time.Time
	messages  []Message
}

// New creates a session, seeding the system prompt when one is given.
func New(profile, systemPrompt string) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
	}
	if systemPrompt != "" {
		s.Append(RoleSystem, systemPrompt)
	}
	return s
}

// Restore rebuilds a session from persisted messages.
func Restore(id, profile string, createdAt time.Time, msgs []Message) *Session {
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	return &Session{ID: id, Profile: profile, CreatedAt: createdAt, messages: cp}
}

func (s *Session) Append(role Role, content string) {
	s.messages = append(s.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	cp := make([]Message, len(s.messages))
	copy(cp, s.messages)
	return cp
}

func (s *Session) Len() int {
	return len(s.messages)
}

// Last returns the newest message, or false on an empty transcript.
func (s *Session) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Since returns a copy of the messages appended at or after index i.
func (s *Session) Since(i int) []Message {
	if i < 0 {
		i = 0
	}
	if i >= len(s.messages) {
		return nil
	}
	cp := make([]Message, len(s.messages)-i)
	copy(cp, s.messages[i:])
	return cp
}
