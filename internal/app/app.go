// Package app runs the capture, detection and control loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the collaborators and settings of the application.
type Config struct {
	// Store keeps calibration history and settings. Optional.
	Store *store.Store

	// CalibrationStore persists the active matrix. Optional.
	CalibrationStore calibration.Store

	// Camera defaults to capture.NewCamera(capture.DefaultConfig()).
	Camera capture.Camera

	// Detector defaults to MediaPipe built from DetectorConfig, falling
	// back to a detector that never sees a hand.
	Detector       detector.Detector
	DetectorConfig detector.Config

	// Injector receives the pointer actions. Required.
	Injector pointer.Injector

	Control control.Config
	Mode    control.Mode

	// MotionThreshold gates detection while no hand is in view. See
	// capture.IdleGate.
	MotionThreshold float64

	Logger *slog.Logger
}

// Status is a snapshot of the running application.
type Status struct {
	Enabled     bool                  `json:"enabled"`
	Running     bool                  `json:"running"`
	Mode        control.Mode          `json:"mode"`
	Calibration calibration.State     `json:"calibration"`
	Calibrated  bool                  `json:"calibrated"`
	Surface     hand.Size             `json:"surface"`
	Frames      uint64                `json:"frames"`
	LastEvent   gesture.Event         `json:"last_event"`
	Progress    *calibration.Progress `json:"progress,omitempty"`
	Events      HubStats              `json:"events"`
}

// App is the main application that turns camera frames into pointer actions.
type App struct {
	config     Config
	logger     *slog.Logger
	camera     capture.Camera
	gate       *capture.IdleGate
	detector   detector.Detector
	controller *control.Controller
	hub        *Hub

	// mu guards the controller and everything below.
	mu        sync.Mutex
	enabled   bool
	frames    uint64
	lastEvent gesture.Event
	progress  *calibration.Progress
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates an App. The previously stored calibration, if any, is loaded
// and the configured mode entered.
func New(config Config) (*App, error) {
	if config.Injector == nil {
		return nil, errors.New("app: pointer injector is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	config.Control.Logger = logger

	a := &App{
		config:   config,
		logger:   logger,
		camera:   config.Camera,
		gate:     capture.NewIdleGate(config.MotionThreshold),
		detector: config.Detector,
		hub:      NewHub(),
		enabled:  true,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultConfig())
	}
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			a.detector = mp
			logger.Info("app: using MediaPipe hand detection")
		} else {
			logger.Warn("app: MediaPipe not available, no hands will be detected", "err", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.controller = control.New(config.Injector, config.CalibrationStore, config.Control)
	a.controller.OnEvent(a.record)
	a.controller.OnCalibrated(a.saveHistory)

	if err := a.controller.LoadCalibration(); err != nil {
		logger.Warn("app: stored calibration ignored", "err", err)
	}

	mode := config.Mode
	if mode == "" {
		mode = control.Screen
	}
	if err := a.controller.SetMode(mode); err != nil {
		return nil, fmt.Errorf("enter %s mode: %w", mode, err)
	}

	return a, nil
}

// Hub returns the event hub.
func (a *App) Hub() *Hub {
	return a.hub
}

// Start opens the camera and runs the frame loop until ctx is cancelled or
// Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(ctx, a.done)

	a.logger.Info("app: frame loop started", "fps", a.camera.FPS(), "mode", a.controller.Mode())
	return nil
}

// Stop halts the frame loop, lifts any held button and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	a.mu.Lock()
	if err := a.controller.ReleaseAll(); err != nil {
		a.logger.Warn("app: release buttons", "err", err)
	}
	a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("app: close camera", "err", err)
	}
	a.gate.Close()
	if err := a.detector.Close(); err != nil {
		a.logger.Warn("app: close detector", "err", err)
	}
	a.hub.Close()

	a.logger.Info("app: frame loop stopped")
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done != nil
}

// SetEnabled pauses or resumes gesture control. Pausing releases any held
// button.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled == enabled {
		return
	}
	a.enabled = enabled
	if !enabled {
		if err := a.controller.ReleaseAll(); err != nil {
			a.logger.Warn("app: release buttons", "err", err)
		}
		a.controller.State().Reset()
	}
	a.persist(store.SettingEnabled, strconv.FormatBool(enabled))
	a.logger.Info("app: gesture control toggled", "enabled", enabled)
}

// IsEnabled returns whether gesture control is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Mode returns the current operating mode.
func (a *App) Mode() control.Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controller.Mode()
}

// SetMode switches the operating mode and remembers it.
func (a *App) SetMode(m control.Mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.controller.SetMode(m); err != nil {
		return err
	}
	a.progress = nil
	a.persist(store.SettingMode, string(m))
	return nil
}

// StartCalibration begins a table calibration.
func (a *App) StartCalibration() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.controller.StartCalibration(); err != nil {
		return err
	}
	a.persist(store.SettingMode, string(control.Table))
	return nil
}

// CancelCalibration abandons a calibration in progress.
func (a *App) CancelCalibration() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.controller.CancelCalibration()
	a.progress = nil
}

// ResetCalibration deletes the active matrix and the calibration history.
func (a *App) ResetCalibration() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.controller.ResetCalibration(); err != nil {
		return err
	}
	a.progress = nil
	if a.config.Store != nil {
		n, err := a.config.Store.Calibrations().DeleteAll()
		if err != nil {
			return fmt.Errorf("delete calibration history: %w", err)
		}
		a.logger.Info("app: calibration history deleted", "count", n)
	}
	return nil
}

// Calibration returns the active table transform.
func (a *App) Calibration() (calibration.Matrix, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controller.Calibration()
}

// History returns up to limit past calibrations, newest first.
func (a *App) History(limit int) ([]*store.Calibration, error) {
	if a.config.Store == nil {
		return []*store.Calibration{}, nil
	}
	return a.config.Store.Calibrations().List(limit)
}

// Status returns a snapshot of the application state.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, calibrated := a.controller.Calibration()
	s := Status{
		Enabled:     a.enabled,
		Running:     a.done != nil,
		Mode:        a.controller.Mode(),
		Calibration: a.controller.CalibrationState(),
		Calibrated:  calibrated,
		Surface:     a.controller.Surface(),
		Frames:      a.frames,
		LastEvent:   a.lastEvent,
		Events:      a.hub.Stats(),
	}
	if a.progress != nil {
		p := *a.progress
		s.Progress = &p
	}
	return s
}

// Process runs one frame of detected hands through the controller. size is
// the frame size used to denormalize the landmarks.
func (a *App) Process(hands []detector.HandLandmarks, size hand.Size, now time.Time) (control.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return control.Result{Mode: a.controller.Mode()}, nil
	}

	a.frames++
	return a.controller.HandleFrame(gesture.Frame{
		Hands: detector.Samples(hands, size),
		Size:  size,
		Time:  now,
	})
}

// ProcessFrame detects hands in frame and processes them. Frames the idle
// gate rejects are processed as frames without hands.
func (a *App) ProcessFrame(frame *gocv.Mat, now time.Time) (control.Result, error) {
	var hands []detector.HandLandmarks
	if a.IsEnabled() && a.gate.Allow(frame) {
		var err error
		hands, err = a.detector.Detect(frame)
		if err != nil {
			a.logger.Debug("app: hand detection failed", "err", err)
			hands = nil
		}
		a.gate.Tracking(len(hands) > 0)
	}
	return a.Process(hands, capture.Size(frame), now)
}

// record is the controller observer.
func (a *App) record(res control.Result) {
	a.lastEvent = res.Event
	if res.Calibrating {
		p := res.Progress
		a.progress = &p
	} else {
		a.progress = nil
	}
	a.hub.Publish(res)
}

func (a *App) saveHistory(m calibration.Matrix, points []hand.Point, surface hand.Size) {
	if a.config.Store == nil {
		return
	}
	c := &store.Calibration{Matrix: m, Points: points, Surface: surface}
	if err := a.config.Store.Calibrations().Create(c); err != nil {
		a.logger.Warn("app: save calibration history", "err", err)
		return
	}
	a.logger.Info("app: calibration recorded", "id", c.ID)
}

// persist stores a setting, logging failures. Callers hold a.mu.
func (a *App) persist(key, value string) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Settings().Set(key, value); err != nil {
		a.logger.Warn("app: save setting", "key", key, "err", err)
	}
}
