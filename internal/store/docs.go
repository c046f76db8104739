package store

import (
	"fmt"

	"github.com/ehrlich-b/stepwise/internal/embedding"
)

// DocChunk is one embedded passage of the documentation index. Chunks are
// keyed by the embedder that produced them so a model switch rebuilds the
// index instead of mixing vector spaces.
type DocChunk struct {
	ID        int64
	Embedder  string
	Source    string
	Title     string
	Content   string
	Embedding []float32
}

// DocStats summarizes the index for one embedder.
type DocStats struct {
	Chunks  int
	Sources int
	Bytes   int64
}

func (s *Store) InsertDocChunks(chunks []DocChunk) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO doc_chunks (embedder, source, title, content, embedding) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.Exec(c.Embedder, c.Source, c.Title, c.Content, embedding.VecAsBytes(c.Embedding)); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *Store) CountDocChunks(embedder string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM doc_chunks WHERE embedder = ?`, embedder).Scan(&n)
	return n, err
}

func (s *Store) DocStats(embedder string) (DocStats, error) {
	var st DocStats
	err := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT source), COALESCE(SUM(LENGTH(content)), 0) FROM doc_chunks WHERE embedder = ?`,
		embedder,
	).Scan(&st.Chunks, &st.Sources, &st.Bytes)
	return st, err
}

// ListDocChunks loads every chunk for embedder in insertion order.
func (s *Store) ListDocChunks(embedder string) ([]DocChunk, error) {
	rows, err := s.db.Query(
		`SELECT id, embedder, source, title, content, embedding FROM doc_chunks WHERE embedder = ? ORDER BY id`,
		embedder,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DocChunk
	for rows.Next() {
		var c DocChunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Embedder, &c.Source, &c.Title, &c.Content, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if c.Embedding, err = embedding.BytesAsVec(blob); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.ID, err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteDocChunks drops the index built by embedder.
func (s *Store) DeleteDocChunks(embedder string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM doc_chunks WHERE embedder = ?`, embedder)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RenameDocChunks moves the chunks stored under from to embedder to,
// replacing whatever to held. Both steps commit together.
func (s *Store) RenameDocChunks(from, to string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM doc_chunks WHERE embedder = ?`, to); err != nil {
		return fmt.Errorf("drop %s: %w", to, err)
	}
	if _, err := tx.Exec(`UPDATE doc_chunks SET embedder = ? WHERE embedder = ?`, to, from); err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	return tx.Commit()
}
