package api

import (
	"errors"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/store"
)

// fakeRuntime records calls made by the handlers.
type fakeRuntime struct {
	status     app.Status
	matrix     calibration.Matrix
	calibrated bool
	history    []*store.Calibration

	startErr  error
	cancelled bool
	reset     bool
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{status: app.Status{Enabled: true, Mode: control.Screen}}
}

func (f *fakeRuntime) Status() app.Status { return f.status }

func (f *fakeRuntime) SetEnabled(enabled bool) { f.status.Enabled = enabled }

func (f *fakeRuntime) SetMode(m control.Mode) error {
	f.status.Mode = m
	return nil
}

func (f *fakeRuntime) StartCalibration() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.status.Mode = control.Table
	f.status.Calibration = calibration.Capturing
	return nil
}

func (f *fakeRuntime) CancelCalibration() {
	f.cancelled = true
	f.status.Calibration = calibration.Idle
}

func (f *fakeRuntime) ResetCalibration() error {
	f.reset = true
	f.calibrated = false
	f.history = nil
	return nil
}

func (f *fakeRuntime) Calibration() (calibration.Matrix, bool) { return f.matrix, f.calibrated }

func (f *fakeRuntime) History(limit int) ([]*store.Calibration, error) {
	if limit < 0 {
		return nil, errors.New("bad limit")
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}
