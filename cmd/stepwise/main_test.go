package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ehrlich-b/stepwise/internal/session"
	"github.com/ehrlich-b/stepwise/internal/store"
)

func TestSessionTitle(t *testing.T) {
	if got := sessionTitle("  list files here "); got != "list files here" {
		t.Errorf("title = %q", got)
	}
	long := strings.Repeat("é", 70)
	got := sessionTitle(long)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != 61 {
		t.Errorf("long title = %q", got)
	}
}

func TestPrintTranscript(t *testing.T) {
	sess := session.New("code", "system prompt")
	sess.Append(session.RoleUser, "list files here")
	sess.Append(session.RoleAssistant, `{"step":"action","function":"scan_directory","input":"."}`)
	sess.Append(session.RoleAssistant, `{"step":"observe","content":["readme.txt"]}`)
	sess.Append(session.RoleAssistant, `{"step":"output","content":"One file."}`)

	var buf bytes.Buffer
	printTranscript(&buf, sess)
	out := buf.String()

	if strings.Contains(out, "system prompt") {
		t.Error("system prompt should be hidden")
	}
	for _, want := range []string{
		"> list files here",
		"[action] scan_directory → .",
		`[observe] ["readme.txt"]`,
		"[output] One file.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSessions(t *testing.T) {
	var buf bytes.Buffer
	printSessions(&buf, []*store.SessionInfo{{
		ID:           "abc",
		Profile:      "weather",
		Title:        "weather in Paris",
		UpdatedAt:    time.Now().Add(-2 * time.Hour),
		MessageCount: 4,
	}})
	out := buf.String()
	if !strings.Contains(out, "weather in Paris") || !strings.Contains(out, "2 hours ago") {
		t.Errorf("listing:\n%s", out)
	}
}
