package session

import (
	"testing"
	"time"
)

func TestNewSeedsSystemPrompt(t *testing.T) {
	s := New("coder", "be terse")
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	m, _ := s.Last()
	if m.Role != RoleSystem || m.Content != "be terse" {
		t.Errorf("first message = %+v", m)
	}
}

func TestNewWithoutPrompt(t *testing.T) {
	s := New("chat", "")
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if _, ok := s.Last(); ok {
		t.Error("expected no last message")
	}
}

func TestAppendOrderAndCopy(t *testing.T) {
	s := New("coder", "sys")
	s.Append(RoleUser, "hi")
	s.Append(RoleAssistant, `{"step":"output","content":"hello"}`)

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	want := []Role{RoleSystem, RoleUser, RoleAssistant}
	for i, r := range want {
		if msgs[i].Role != r {
			t.Errorf("msgs[%d].Role = %s, want %s", i, msgs[i].Role, r)
		}
	}

	// mutating the copy must not touch the transcript
	msgs[1].Content = "tampered"
	if s.Messages()[1].Content != "hi" {
		t.Error("transcript mutated through Messages() copy")
	}
}

func TestSince(t *testing.T) {
	s := New("coder", "sys")
	s.Append(RoleUser, "a")
	s.Append(RoleAssistant, "b")
	got := s.Since(1)
	if len(got) != 2 || got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("Since(1) = %+v", got)
	}
	if s.Since(10) != nil {
		t.Error("Since past end should be nil")
	}
}

func TestRestore(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msgs := []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "q"}}
	s := Restore("abc", "weather", created, msgs)
	msgs[0].Content = "changed"
	if s.ID != "abc" || s.Profile != "weather" || !s.CreatedAt.Equal(created) {
		t.Errorf("restored = %+v", s)
	}
	if s.Messages()[0].Content != "sys" {
		t.Error("restore must copy input slice")
	}
}
