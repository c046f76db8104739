package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/ehrlich-b/stepwise/internal/session"
)

var ErrScriptExhausted = errors.New("scripted provider has no replies left")

// Scripted replays canned replies in order and records every request.
type Scripted struct {
	mu      sync.Mutex
	replies []*Reply
	errs    []error
	calls   []Call
}

// Call is one recorded request.
type Call struct {
	Messages []session.Message
	Options  Options
}

// NewScripted creates a provider that returns each text as a single-choice reply.
func NewScripted(texts ...string) *Scripted {
	s := &Scripted{}
	for _, t := range texts {
		s.Push(t)
	}
	return s
}

// Push queues one single-choice reply.
func (s *Scripted) Push(text string) {
	s.PushReply(&Reply{Choices: []string{text}})
}

// PushReply queues a full reply (e.g. several choices).
func (s *Scripted) PushReply(r *Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
	s.errs = append(s.errs, nil)
}

// PushError queues a transport failure.
func (s *Scripted) PushError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, nil)
	s.errs = append(s.errs, err)
}

func (s *Scripted) Complete(ctx context.Context, messages []session.Message, opts Options) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]session.Message, len(messages))
	copy(cp, messages)
	s.calls = append(s.calls, Call{Messages: cp, Options: opts})

	if len(s.replies) == 0 {
		return nil, ErrScriptExhausted
	}
	r, err := s.replies[0], s.errs[0]
	s.replies, s.errs = s.replies[1:], s.errs[1:]
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Scripted) Name() string {
	return "scripted"
}

// Calls returns a copy of the recorded requests.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Call, len(s.calls))
	copy(cp, s.calls)
	return cp
}

// Remaining reports how many queued replies are left.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}
