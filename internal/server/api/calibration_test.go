package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/store"
)

func TestCalibrationHandler_Get(t *testing.T) {
	rt := newFakeRuntime()
	rt.calibrated = true
	rt.matrix = calibration.Identity()
	rt.status.Calibration = calibration.Calibrated
	rt.status.Calibrated = true
	for i := 0; i < 3; i++ {
		rt.history = append(rt.history, &store.Calibration{
			ID:      string(rune('a' + i)),
			Matrix:  calibration.Identity(),
			Surface: hand.Size{W: 1920, H: 1080},
		})
	}
	h := NewCalibrationHandler(rt)

	req := httptest.NewRequest(http.MethodGet, "/api/calibration?limit=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp calibrationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Calibrated || resp.Matrix == nil || *resp.Matrix != calibration.Identity() {
		t.Errorf("unexpected matrix in %+v", resp)
	}
	if resp.State != calibration.Calibrated {
		t.Errorf("state = %v, want calibrated", resp.State)
	}
	if len(resp.History) != 2 {
		t.Errorf("history = %d entries, want 2", len(resp.History))
	}

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calibration?limit=zero", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestCalibrationHandler_Start(t *testing.T) {
	rt := newFakeRuntime()
	h := NewCalibrationHandler(rt)

	req := httptest.NewRequest(http.MethodPost, "/api/calibration", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rec.Code)
	}
	var resp calibrationResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.State != calibration.Capturing {
		t.Errorf("state = %v, want capturing", resp.State)
	}
	if resp.History == nil {
		t.Error("history should encode as an empty list")
	}

	t.Run("start fails", func(t *testing.T) {
		rt := newFakeRuntime()
		rt.startErr = errors.New("no surface")
		h := NewCalibrationHandler(rt)

		req := httptest.NewRequest(http.MethodPost, "/api/calibration", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
		}
	})
}

func TestCalibrationHandler_Delete(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		wantCancelled bool
		wantReset     bool
	}{
		{"cancel", "/api/calibration", true, false},
		{"reset", "/api/calibration?reset=true", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newFakeRuntime()
			h := NewCalibrationHandler(rt)

			req := httptest.NewRequest(http.MethodDelete, tt.target, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
			}
			if rt.cancelled != tt.wantCancelled || rt.reset != tt.wantReset {
				t.Errorf("cancelled=%v reset=%v, want %v %v", rt.cancelled, rt.reset, tt.wantCancelled, tt.wantReset)
			}
		})
	}
}

func TestCalibrationHandler_MethodNotAllowed(t *testing.T) {
	h := NewCalibrationHandler(newFakeRuntime())

	req := httptest.NewRequest(http.MethodPatch, "/api/calibration", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
