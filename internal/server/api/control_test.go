package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
)

func TestControlHandler_Status(t *testing.T) {
	rt := newFakeRuntime()
	h := NewControlHandler(rt)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var st app.Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if st.Mode != control.Screen || !st.Enabled {
		t.Errorf("unexpected status %+v", st)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec = httptest.NewRecorder()
	h.Status(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestControlHandler_Mode(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantMode   control.Mode
	}{
		{"get", http.MethodGet, "", http.StatusOK, control.Screen},
		{"set table", http.MethodPut, `{"mode":"table"}`, http.StatusOK, control.Table},
		{"unknown mode", http.MethodPut, `{"mode":"mesa"}`, http.StatusBadRequest, control.Screen},
		{"invalid json", http.MethodPut, `{mode`, http.StatusBadRequest, control.Screen},
		{"wrong method", http.MethodDelete, "", http.StatusMethodNotAllowed, control.Screen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newFakeRuntime()
			h := NewControlHandler(rt)

			req := httptest.NewRequest(tt.method, "/api/mode", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Mode(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if rt.status.Mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", rt.status.Mode, tt.wantMode)
			}
		})
	}
}

func TestControlHandler_Enabled(t *testing.T) {
	rt := newFakeRuntime()
	h := NewControlHandler(rt)

	req := httptest.NewRequest(http.MethodPut, "/api/enabled", strings.NewReader(`{"enabled":false}`))
	rec := httptest.NewRecorder()
	h.Enabled(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rt.status.Enabled {
		t.Error("expected runtime to be disabled")
	}

	t.Run("missing field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/enabled", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		h.Enabled(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/enabled", nil)
		rec := httptest.NewRecorder()
		h.Enabled(rec, req)

		var resp struct {
			Enabled bool `json:"enabled"`
		}
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Enabled {
			t.Error("expected enabled=false")
		}
	})
}
