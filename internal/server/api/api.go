// Package api provides the HTTP handlers of the mudra control surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/store"
)

// Runtime is the part of the application the handlers drive.
type Runtime interface {
	Status() app.Status
	SetEnabled(enabled bool)
	SetMode(m control.Mode) error
	StartCalibration() error
	CancelCalibration()
	ResetCalibration() error
	Calibration() (calibration.Matrix, bool)
	History(limit int) ([]*store.Calibration, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
