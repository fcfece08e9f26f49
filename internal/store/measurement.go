package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nmehta/gonio/internal/angle"
)

// Measurement represents one accepted angle reading stored in the database.
// The eight channels are stored as columns so exports and peak queries can
// address them directly.
type Measurement struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	PalmarFlexion   float64   `json:"wrist_palmar_flexion"`
	DorsalFlexion   float64   `json:"wrist_dorsal_flexion"`
	UlnarDeviation  float64   `json:"wrist_ulnar_deviation"`
	RadialDeviation float64   `json:"wrist_radial_deviation"`
	ThumbFlexion    float64   `json:"thumb_flexion"`
	ThumbExtension  float64   `json:"thumb_extension"`
	ThumbAbduction  float64   `json:"thumb_abduction"`
	ThumbAdduction  float64   `json:"thumb_adduction"`
	Confidence      float64   `json:"confidence"`
	HandPresent     bool      `json:"hand_present"`
	CapturedAt      time.Time `json:"captured_at"`
}

// NewMeasurement flattens an angle measurement into its storage row.
func NewMeasurement(sessionID string, m *angle.Measurement, blended float64, capturedAt time.Time) *Measurement {
	return &Measurement{
		SessionID:       sessionID,
		PalmarFlexion:   m.Wrist.PalmarFlexion.Degrees,
		DorsalFlexion:   m.Wrist.DorsalFlexion.Degrees,
		UlnarDeviation:  m.Wrist.UlnarDeviation.Degrees,
		RadialDeviation: m.Wrist.RadialDeviation.Degrees,
		ThumbFlexion:    m.Thumb.Flexion.Degrees,
		ThumbExtension:  m.Thumb.Extension.Degrees,
		ThumbAbduction:  m.Thumb.Abduction.Degrees,
		ThumbAdduction:  m.Thumb.Adduction.Degrees,
		Confidence:      blended,
		HandPresent:     true,
		CapturedAt:      capturedAt,
	}
}

// Degrees returns the stored reading for the given channel.
func (m *Measurement) Degrees(ch angle.Channel) float64 {
	switch ch {
	case angle.WristPalmarFlexion:
		return m.PalmarFlexion
	case angle.WristDorsalFlexion:
		return m.DorsalFlexion
	case angle.WristUlnarDeviation:
		return m.UlnarDeviation
	case angle.WristRadialDeviation:
		return m.RadialDeviation
	case angle.ThumbFlexion:
		return m.ThumbFlexion
	case angle.ThumbExtension:
		return m.ThumbExtension
	case angle.ThumbAbduction:
		return m.ThumbAbduction
	case angle.ThumbAdduction:
		return m.ThumbAdduction
	}
	return 0
}

// MeasurementRepository provides storage operations for measurements.
type MeasurementRepository struct {
	db *sql.DB
}

// Measurements returns the measurement repository for this store.
func (s *Store) Measurements() *MeasurementRepository {
	return &MeasurementRepository{db: s.db}
}

// CreateBatch inserts all measurements of a session in a single
// transaction. Sessions flush their buffered records through this exactly
// once, when they stop.
func (r *MeasurementRepository) CreateBatch(measurements []*Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO measurements (session_id, wrist_palmar_flexion, wrist_dorsal_flexion,
		 wrist_ulnar_deviation, wrist_radial_deviation, thumb_flexion, thumb_extension,
		 thumb_abduction, thumb_adduction, confidence, hand_present, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range measurements {
		handPresent := 0
		if m.HandPresent {
			handPresent = 1
		}
		if _, err := stmt.Exec(m.SessionID, m.PalmarFlexion, m.DorsalFlexion,
			m.UlnarDeviation, m.RadialDeviation, m.ThumbFlexion, m.ThumbExtension,
			m.ThumbAbduction, m.ThumbAdduction, m.Confidence, handPresent, m.CapturedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession retrieves all measurements for a session in capture order.
func (r *MeasurementRepository) ListBySession(sessionID string) ([]*Measurement, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, wrist_palmar_flexion, wrist_dorsal_flexion,
		 wrist_ulnar_deviation, wrist_radial_deviation, thumb_flexion, thumb_extension,
		 thumb_abduction, thumb_adduction, confidence, hand_present, captured_at
		 FROM measurements WHERE session_id = ? ORDER BY captured_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var measurements []*Measurement
	for rows.Next() {
		m := &Measurement{}
		var handPresent int

		err := rows.Scan(&m.ID, &m.SessionID, &m.PalmarFlexion, &m.DorsalFlexion,
			&m.UlnarDeviation, &m.RadialDeviation, &m.ThumbFlexion, &m.ThumbExtension,
			&m.ThumbAbduction, &m.ThumbAdduction, &m.Confidence, &handPresent, &m.CapturedAt)
		if err != nil {
			return nil, err
		}

		m.HandPresent = handPresent != 0
		measurements = append(measurements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return measurements, nil
}

// MaxDegrees returns the highest stored reading for a channel across all
// sessions, or 0 when nothing is stored. Goal progress is computed against
// this.
func (r *MeasurementRepository) MaxDegrees(ch angle.Channel) (float64, error) {
	column := ""
	for _, known := range angle.Channels() {
		if ch == known {
			column = string(known)
			break
		}
	}
	if column == "" {
		return 0, fmt.Errorf("unknown channel %q", ch)
	}

	var max sql.NullFloat64
	err := r.db.QueryRow(`SELECT MAX(` + column + `) FROM measurements`).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Float64, nil
}
