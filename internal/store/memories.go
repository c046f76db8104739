package store

import (
	"fmt"
	"time"

	"github.com/ehrlich-b/stepwise/internal/embedding"
	"github.com/google/uuid"
)

// MemoryRow is one remembered fact about a user.
type MemoryRow struct {
	ID        string
	UserID    string
	Content   string
	Embedder  string
	Embedding []float32
	CreatedAt time.Time
}

// AddMemory stores m, assigning an ID and timestamp when they are unset.
func (s *Store) AddMemory(m *MemoryRow) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO memories (id, user_id, content, embedder, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Content, m.Embedder, embedding.VecAsBytes(m.Embedding), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// ListMemories returns the memories of userID embedded by embedder, oldest
// first. An empty embedder matches all.
func (s *Store) ListMemories(userID, embedder string) ([]MemoryRow, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, content, embedder, embedding, created_at FROM memories
		 WHERE user_id = ? AND (? = '' OR embedder = ?) ORDER BY created_at, id`,
		userID, embedder, embedder,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MemoryRow
	for rows.Next() {
		var m MemoryRow
		var blob []byte
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.Embedder, &blob, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		if m.Embedding, err = embedding.BytesAsVec(blob); err != nil {
			return nil, fmt.Errorf("memory %s: %w", m.ID, err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Store) DeleteMemory(id string) error {
	_, err := s.db.Exec(`DELETE FROM memories WHERE id = ?`, id)
	return err
}

// ClearMemories removes everything remembered about userID.
func (s *Store) ClearMemories(userID string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM memories WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
