package store

// runMigrations brings the schema up to date. Every statement is
// idempotent, so reopening an existing database is safe.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per measurement session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			side TEXT NOT NULL CHECK(side IN ('left', 'right')),
			status TEXT NOT NULL CHECK(status IN ('active', 'paused', 'completed')),
			notes TEXT NOT NULL DEFAULT '',
			sample_count INTEGER NOT NULL DEFAULT 0,
			avg_confidence REAL NOT NULL DEFAULT 0,
			peaks TEXT NOT NULL DEFAULT '{}',
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Accepted per-frame angle readings, cascading with their session
		`CREATE TABLE IF NOT EXISTS measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			wrist_palmar_flexion REAL NOT NULL DEFAULT 0,
			wrist_dorsal_flexion REAL NOT NULL DEFAULT 0,
			wrist_ulnar_deviation REAL NOT NULL DEFAULT 0,
			wrist_radial_deviation REAL NOT NULL DEFAULT 0,
			thumb_flexion REAL NOT NULL DEFAULT 0,
			thumb_extension REAL NOT NULL DEFAULT 0,
			thumb_abduction REAL NOT NULL DEFAULT 0,
			thumb_adduction REAL NOT NULL DEFAULT 0,
			confidence REAL NOT NULL DEFAULT 0,
			hand_present INTEGER NOT NULL DEFAULT 1,
			captured_at DATETIME NOT NULL
		)`,

		// Per-channel range-of-motion targets
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			target_degrees REAL NOT NULL,
			baseline_degrees REAL NOT NULL DEFAULT 0,
			deadline DATETIME,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_measurements_session_id ON measurements(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_captured_at ON measurements(captured_at)`,

		// At most one enabled goal per channel
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_goals_enabled_channel ON goals(channel) WHERE enabled = 1`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
