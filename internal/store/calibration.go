package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/hand"
)

// Calibration is one solved calibration kept for history.
type Calibration struct {
	ID        string             `json:"id"`
	Matrix    calibration.Matrix `json:"matrix"`
	Points    []hand.Point       `json:"points"`
	Surface   hand.Size          `json:"surface"`
	CreatedAt time.Time          `json:"created_at"`
}

// CalibrationRepository stores calibration history.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Create inserts c, assigning its ID and creation time when unset.
func (r *CalibrationRepository) Create(c *Calibration) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	matrix, err := json.Marshal(c.Matrix)
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	points := c.Points
	if points == nil {
		points = []hand.Point{}
	}
	pointsJSON, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO calibrations (id, matrix, points, surface_width, surface_height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, string(matrix), string(pointsJSON), c.Surface.W, c.Surface.H, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a calibration by its ID.
func (r *CalibrationRepository) GetByID(id string) (*Calibration, error) {
	row := r.db.QueryRow(
		`SELECT id, matrix, points, surface_width, surface_height, created_at
		 FROM calibrations WHERE id = ?`,
		id,
	)
	c, err := scanCalibration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Latest returns the most recent calibration.
func (r *CalibrationRepository) Latest() (*Calibration, error) {
	row := r.db.QueryRow(
		`SELECT id, matrix, points, surface_width, surface_height, created_at
		 FROM calibrations ORDER BY created_at DESC LIMIT 1`,
	)
	c, err := scanCalibration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns up to limit calibrations, newest first. A limit of 0 or
// less returns all of them.
func (r *CalibrationRepository) List(limit int) ([]*Calibration, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, matrix, points, surface_width, surface_height, created_at
		 FROM calibrations ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Calibration
	for rows.Next() {
		c, err := scanCalibration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAll removes the whole history and returns how many rows were deleted.
func (r *CalibrationRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM calibrations`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalibration(s scanner) (*Calibration, error) {
	c := &Calibration{}
	var matrix, points string

	if err := s.Scan(&c.ID, &matrix, &points, &c.Surface.W, &c.Surface.H, &c.CreatedAt); err != nil {
		return nil, err
	}

	m, err := calibration.Decode([]byte(matrix))
	if err != nil {
		return nil, fmt.Errorf("calibration %s: %w", c.ID, err)
	}
	c.Matrix = m

	if err := json.Unmarshal([]byte(points), &c.Points); err != nil {
		return nil, fmt.Errorf("calibration %s: parse points: %w", c.ID, err)
	}
	return c, nil
}
