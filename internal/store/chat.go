package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ehrlich-b/stepwise/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionInfo is the listing view of a saved session.
type SessionInfo struct {
	ID           string
	Profile      string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// SaveSession writes the full transcript of s. Saving again appends the
// messages added since the previous save; existing rows are never
// rewritten.
func (s *Store) SaveSession(sess *session.Session, title string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(
		`INSERT INTO sessions (id, profile, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at,
		 title = CASE WHEN excluded.title != '' THEN excluded.title ELSE sessions.title END`,
		sess.ID, sess.Profile, title, sess.CreatedAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	var saved int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM session_messages WHERE session_id = ?`, sess.ID).Scan(&saved); err != nil {
		return fmt.Errorf("count messages: %w", err)
	}

	for i, m := range sess.Since(saved) {
		_, err := tx.Exec(
			`INSERT INTO session_messages (session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			sess.ID, saved+i, string(m.Role), m.Content, m.Timestamp.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert message %d: %w", saved+i, err)
		}
	}
	return tx.Commit()
}

// LoadSession restores a saved transcript.
func (s *Store) LoadSession(id string) (*session.Session, error) {
	info, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT role, content, created_at FROM session_messages WHERE session_id = ? ORDER BY seq ASC`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []session.Message
	for rows.Next() {
		var m session.Message
		var role string
		if err := rows.Scan(&role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = session.Role(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return session.Restore(info.ID, info.Profile, info.CreatedAt, msgs), nil
}

func (s *Store) GetSession(id string) (*SessionInfo, error) {
	row := s.db.QueryRow(
		`SELECT s.id, s.profile, s.title, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM session_messages m WHERE m.session_id = s.id)
		 FROM sessions s WHERE s.id = ?`, id,
	)
	var info SessionInfo
	err := row.Scan(&info.ID, &info.Profile, &info.Title, &info.CreatedAt, &info.UpdatedAt, &info.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListSessions returns saved sessions, most recently updated first.
func (s *Store) ListSessions() ([]*SessionInfo, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.profile, s.title, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM session_messages m WHERE m.session_id = s.id)
		 FROM sessions s ORDER BY s.updated_at DESC, s.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Profile, &info.Title, &info.CreatedAt, &info.UpdatedAt, &info.MessageCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, &info)
	}
	return result, rows.Err()
}

// DeleteSession removes a saved session and its messages. Messages are
// deleted explicitly because foreign_keys is a per-connection pragma.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session_messages WHERE session_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return tx.Commit()
}
