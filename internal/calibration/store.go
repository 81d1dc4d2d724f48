package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoCalibration is returned by Load when no matrix has been saved.
var ErrNoCalibration = errors.New("calibration: no saved matrix")

// Store persists the solved matrix between runs.
type Store interface {
	Save(m Matrix) error
	Load() (Matrix, error)
	Delete() error
}

// FileStore keeps the matrix as a JSON 3x3 array in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes m, replacing any previous matrix atomically.
func (s *FileStore) Save(m Matrix) error {
	if !m.Finite() {
		return fmt.Errorf("save calibration: matrix is not finite")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode calibration: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create calibration dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".calibration-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write calibration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write calibration: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace calibration: %w", err)
	}
	return nil
}

// Load reads the saved matrix. A missing file returns ErrNoCalibration.
func (s *FileStore) Load() (Matrix, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Matrix{}, ErrNoCalibration
		}
		return Matrix{}, fmt.Errorf("read calibration: %w", err)
	}
	return Decode(data)
}

// Delete removes the saved matrix. Deleting a missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete calibration: %w", err)
	}
	return nil
}

// Decode parses a JSON 3x3 array, rejecting any other shape.
func Decode(data []byte) (Matrix, error) {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return Matrix{}, fmt.Errorf("parse calibration: %w", err)
	}
	if len(rows) != 3 {
		return Matrix{}, fmt.Errorf("parse calibration: expected 3 rows, got %d", len(rows))
	}

	var m Matrix
	for i, row := range rows {
		if len(row) != 3 {
			return Matrix{}, fmt.Errorf("parse calibration: row %d has %d values, expected 3", i, len(row))
		}
		copy(m[i][:], row)
	}
	if !m.Finite() {
		return Matrix{}, fmt.Errorf("parse calibration: matrix is not finite")
	}
	return m, nil
}
