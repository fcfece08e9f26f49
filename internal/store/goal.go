package store

import (
	"database/sql"
	"errors"
	"time"
)

// Goal represents a per-channel range-of-motion target stored in the
// database.
type Goal struct {
	ID              string     `json:"id"`
	Channel         string     `json:"channel"`
	TargetDegrees   float64    `json:"target_degrees"`
	BaselineDegrees float64    `json:"baseline_degrees"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Enabled         bool       `json:"enabled"`
	CreatedAt       time.Time  `json:"created_at"`
}

// GoalRepository provides CRUD operations for goals.
type GoalRepository struct {
	db *sql.DB
}

// Goals returns the goal repository for this store.
func (s *Store) Goals() *GoalRepository {
	return &GoalRepository{db: s.db}
}

// Create inserts a new goal into the database. The unique index on enabled
// goals rejects a second enabled goal for the same channel.
func (r *GoalRepository) Create(g *Goal) error {
	g.CreatedAt = time.Now()

	enabled := 0
	if g.Enabled {
		enabled = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO goals (id, channel, target_degrees, baseline_degrees, deadline, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Channel, g.TargetDegrees, g.BaselineDegrees, g.Deadline, enabled, g.CreatedAt,
	)
	return err
}

// GetByID retrieves a goal by its ID.
func (r *GoalRepository) GetByID(id string) (*Goal, error) {
	row := r.db.QueryRow(
		`SELECT id, channel, target_degrees, baseline_degrees, deadline, enabled, created_at
		 FROM goals WHERE id = ?`,
		id,
	)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// GetEnabledByChannel retrieves the enabled goal for a channel.
// Returns nil, nil when the channel has no enabled goal.
func (r *GoalRepository) GetEnabledByChannel(channel string) (*Goal, error) {
	row := r.db.QueryRow(
		`SELECT id, channel, target_degrees, baseline_degrees, deadline, enabled, created_at
		 FROM goals WHERE channel = ? AND enabled = 1`,
		channel,
	)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No goal set for this channel
		}
		return nil, err
	}
	return g, nil
}

// List retrieves all goals from the database.
func (r *GoalRepository) List() ([]*Goal, error) {
	rows, err := r.db.Query(
		`SELECT id, channel, target_degrees, baseline_degrees, deadline, enabled, created_at
		 FROM goals ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}

// Update updates an existing goal in the database.
func (r *GoalRepository) Update(g *Goal) error {
	enabled := 0
	if g.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE goals SET channel = ?, target_degrees = ?, baseline_degrees = ?, deadline = ?, enabled = ?
		 WHERE id = ?`,
		g.Channel, g.TargetDegrees, g.BaselineDegrees, g.Deadline, enabled, g.ID,
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

// Delete removes a goal from the database by its ID.
func (r *GoalRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM goals WHERE id = ?`, id)
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

func scanGoal(row scanner) (*Goal, error) {
	g := &Goal{}
	var deadline sql.NullTime
	var enabled int

	err := row.Scan(&g.ID, &g.Channel, &g.TargetDegrees, &g.BaselineDegrees, &deadline, &enabled, &g.CreatedAt)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		g.Deadline = &deadline.Time
	}
	g.Enabled = enabled != 0
	return g, nil
}
