package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ehrlich-b/stepwise/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Sessions ---

func TestSaveAndLoadSession(t *testing.T) {
	s := openTestStore(t)

	sess := session.New("code", "system prompt")
	sess.Append(session.RoleUser, "list files here")
	sess.Append(session.RoleAssistant, `{"step":"output","content":"done"}`)
	if err := s.SaveSession(sess, "list files"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadSession(sess.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Profile != "code" {
		t.Errorf("profile = %q", got.Profile)
	}
	want := sess.Messages()
	msgs := got.Messages()
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i := range want {
		if msgs[i].Role != want[i].Role || msgs[i].Content != want[i].Content {
			t.Errorf("message %d = %+v, want %+v", i, msgs[i], want[i])
		}
	}
}

func TestSaveSessionAppendsOnly(t *testing.T) {
	s := openTestStore(t)

	sess := session.New("weather", "sys")
	sess.Append(session.RoleUser, "paris?")
	if err := s.SaveSession(sess, "weather"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	sess.Append(session.RoleAssistant, "sunny")
	if err := s.SaveSession(sess, ""); err != nil {
		t.Fatalf("second save: %v", err)
	}

	info, err := s.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if info.MessageCount != 3 {
		t.Errorf("message count = %d, want 3", info.MessageCount)
	}
	if info.Title != "weather" {
		t.Errorf("title = %q, want kept from first save", info.Title)
	}
}

func TestListAndDeleteSessions(t *testing.T) {
	s := openTestStore(t)

	a := session.New("code", "sys")
	b := session.New("docs", "sys")
	if err := s.SaveSession(a, "a"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := s.SaveSession(b, "b"); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID {
		t.Fatalf("list = %+v, want newest first", list)
	}

	if err := s.DeleteSession(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.LoadSession(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("load deleted: %v", err)
	}
	if err := s.DeleteSession(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("delete twice: %v", err)
	}

	var n int
	s.DB().QueryRow(`SELECT COUNT(*) FROM session_messages WHERE session_id = ?`, a.ID).Scan(&n)
	if n != 0 {
		t.Errorf("%d orphaned messages after delete", n)
	}
}

// --- Docs ---

func TestDocChunks(t *testing.T) {
	s := openTestStore(t)

	chunks := []DocChunk{
		{Embedder: "hash-4", Source: "https://x/a", Title: "A", Content: "alpha", Embedding: []float32{1, 0, 0, 0}},
		{Embedder: "hash-4", Source: "https://x/a", Title: "A", Content: "beta", Embedding: []float32{0, 1, 0, 0}},
		{Embedder: "hash-4", Source: "https://x/b", Title: "B", Content: "gamma", Embedding: []float32{0, 0, 1, 0}},
		{Embedder: "other", Source: "https://x/c", Title: "C", Content: "delta", Embedding: []float32{1}},
	}
	if err := s.InsertDocChunks(chunks); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := s.CountDocChunks("hash-4")
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
	st, err := s.DocStats("hash-4")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Chunks != 3 || st.Sources != 2 || st.Bytes != int64(len("alpha")+len("beta")+len("gamma")) {
		t.Errorf("stats = %+v", st)
	}

	got, err := s.ListDocChunks("hash-4")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[1].Content != "beta" || got[1].Embedding[1] != 1 {
		t.Errorf("chunks = %+v", got)
	}

	if removed, err := s.DeleteDocChunks("hash-4"); err != nil || removed != 3 {
		t.Errorf("delete = %d, %v", removed, err)
	}
	if n, _ := s.CountDocChunks("other"); n != 1 {
		t.Errorf("other embedder lost chunks: %d", n)
	}
}

func TestRenameDocChunksReplacesTarget(t *testing.T) {
	s := openTestStore(t)

	chunks := []DocChunk{
		{Embedder: "hash-4", Source: "https://x/old", Content: "old", Embedding: []float32{1}},
		{Embedder: "hash-4.next", Source: "https://x/a", Content: "new a", Embedding: []float32{1}},
		{Embedder: "hash-4.next", Source: "https://x/b", Content: "new b", Embedding: []float32{1}},
	}
	if err := s.InsertDocChunks(chunks); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.RenameDocChunks("hash-4.next", "hash-4"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	got, err := s.ListDocChunks("hash-4")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Content != "new a" || got[1].Content != "new b" {
		t.Errorf("chunks after rename = %+v", got)
	}
	if n, _ := s.CountDocChunks("hash-4.next"); n != 0 {
		t.Errorf("staging key still holds %d chunks", n)
	}
}

// --- Memories ---

func TestMemories(t *testing.T) {
	s := openTestStore(t)

	m := &MemoryRow{UserID: "user_1", Content: "likes go", Embedder: "hash-2", Embedding: []float32{0.5, 0.5}}
	if err := s.AddMemory(m); err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.ID == "" || m.CreatedAt.IsZero() {
		t.Errorf("id/created_at not assigned: %+v", m)
	}
	s.AddMemory(&MemoryRow{UserID: "user_2", Content: "other user", Embedder: "hash-2", Embedding: []float32{1, 0}})

	got, err := s.ListMemories("user_1", "hash-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Content != "likes go" || got[0].Embedding[0] != 0.5 {
		t.Errorf("memories = %+v", got)
	}
	if all, _ := s.ListMemories("user_1", ""); len(all) != 1 {
		t.Errorf("empty embedder filter = %d rows", len(all))
	}
	if other, _ := s.ListMemories("user_1", "openai"); len(other) != 0 {
		t.Errorf("embedder filter leaked %d rows", len(other))
	}

	if err := s.DeleteMemory(m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := s.ClearMemories("user_2"); n != 1 {
		t.Errorf("clear removed %d", n)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
