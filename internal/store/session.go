package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents a measurement session stored in the database.
type Session struct {
	ID            string             `json:"id"`
	Side          string             `json:"side"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes"`
	SampleCount   int                `json:"sample_count"`
	AvgConfidence float64            `json:"avg_confidence"`
	Peaks         map[string]float64 `json:"peaks"`
	StartedAt     time.Time          `json:"started_at"`
	EndedAt       *time.Time         `json:"ended_at,omitempty"`
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	peaks, err := marshalPeaks(sess.Peaks)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO sessions (id, side, status, notes, sample_count, avg_confidence, peaks, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Side, sess.Status, sess.Notes, sess.SampleCount, sess.AvgConfidence,
		peaks, sess.StartedAt, sess.EndedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, side, status, notes, sample_count, avg_confidence, peaks, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, side, status, notes, sample_count, avg_confidence, peaks, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Update updates an existing session in the database.
func (r *SessionRepository) Update(sess *Session) error {
	peaks, err := marshalPeaks(sess.Peaks)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE sessions SET side = ?, status = ?, notes = ?, sample_count = ?, avg_confidence = ?, peaks = ?, ended_at = ?
		 WHERE id = ?`,
		sess.Side, sess.Status, sess.Notes, sess.SampleCount, sess.AvgConfidence, peaks, sess.EndedAt, sess.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a session and, through the foreign key cascade, its
// measurements.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var peaks string
	var endedAt sql.NullTime

	err := row.Scan(&sess.ID, &sess.Side, &sess.Status, &sess.Notes, &sess.SampleCount,
		&sess.AvgConfidence, &peaks, &sess.StartedAt, &endedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(peaks), &sess.Peaks); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	return sess, nil
}

func marshalPeaks(peaks map[string]float64) (string, error) {
	if peaks == nil {
		return "{}", nil
	}
	b, err := json.Marshal(peaks)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
