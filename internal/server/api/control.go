package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/control"
)

// ControlHandler serves the status, mode and enabled endpoints.
type ControlHandler struct {
	rt Runtime
}

// NewControlHandler creates a ControlHandler for rt.
func NewControlHandler(rt Runtime) *ControlHandler {
	return &ControlHandler{rt: rt}
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// Status handles GET /api/status.
func (h *ControlHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.rt.Status())
}

// Mode handles GET and PUT /api/mode.
func (h *ControlHandler) Mode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, modeRequest{Mode: string(h.rt.Status().Mode)})

	case http.MethodPut:
		var req modeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		mode, err := control.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Mode must be screen or table")
			return
		}
		if err := h.rt.SetMode(mode); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to change mode")
			return
		}
		writeJSON(w, http.StatusOK, h.rt.Status())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Enabled handles GET and PUT /api/enabled.
func (h *ControlHandler) Enabled(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		enabled := h.rt.Status().Enabled
		writeJSON(w, http.StatusOK, enabledRequest{Enabled: &enabled})

	case http.MethodPut:
		var req enabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "Enabled is required")
			return
		}
		h.rt.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, h.rt.Status())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
