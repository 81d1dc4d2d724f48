package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultHistoryLimit is the number of past calibrations returned by GET.
const DefaultHistoryLimit = 10

// CalibrationHandler handles /api/calibration.
type CalibrationHandler struct {
	rt Runtime
}

// NewCalibrationHandler creates a CalibrationHandler for rt.
func NewCalibrationHandler(rt Runtime) *CalibrationHandler {
	return &CalibrationHandler{rt: rt}
}

type calibrationResponse struct {
	State      calibration.State     `json:"state"`
	Calibrated bool                  `json:"calibrated"`
	Matrix     *calibration.Matrix   `json:"matrix,omitempty"`
	Progress   *calibration.Progress `json:"progress,omitempty"`
	History    []*store.Calibration  `json:"history"`
}

// ServeHTTP implements the http.Handler interface.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.start(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get returns the active matrix and recent history.
func (h *CalibrationHandler) get(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	history, err := h.rt.History(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calibrations")
		return
	}

	writeJSON(w, http.StatusOK, h.response(history))
}

// start begins a new calibration.
func (h *CalibrationHandler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.rt.StartCalibration(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, h.response(nil))
}

// delete cancels a capture, or with ?reset=true forgets the matrix and
// history.
func (h *CalibrationHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("reset") == "true" {
		if err := h.rt.ResetCalibration(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset calibration")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.rt.CancelCalibration()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CalibrationHandler) response(history []*store.Calibration) calibrationResponse {
	st := h.rt.Status()
	resp := calibrationResponse{
		State:      st.Calibration,
		Calibrated: st.Calibrated,
		Progress:   st.Progress,
		History:    history,
	}
	if resp.History == nil {
		resp.History = []*store.Calibration{}
	}
	if m, ok := h.rt.Calibration(); ok {
		resp.Matrix = &m
	}
	return resp
}
