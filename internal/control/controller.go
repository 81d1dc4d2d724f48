// Package control runs the per-frame pipeline for the two operating modes:
// screen mode maps the camera onto the display directly, table mode maps it
// through a calibrated homography and captures that calibration on demand.
package control

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/pointer"
)

// Mode is the operating mode.
type Mode string

const (
	Screen Mode = "screen"
	Table  Mode = "table"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Screen, Table:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Config holds the settings of every stage of the pipeline.
type Config struct {
	Gesture         gesture.Config
	SmoothingWindow int
	ScreenMargin    float64
	Action          action.Config
	Calibration     calibration.Config
	Logger          *slog.Logger
}

// Result describes what happened to one frame.
type Result struct {
	Mode  Mode          `json:"mode"`
	Event gesture.Event `json:"event"`

	// Calibrating is set for frames consumed by the calibration capture;
	// Progress is then valid.
	Calibrating bool                 `json:"calibrating"`
	Progress    calibration.Progress `json:"progress"`

	// Calibrated is set on the frame that completed a calibration.
	Calibrated bool `json:"calibrated"`

	// Skipped is set when the pointer refused the frame's actions.
	Skipped bool `json:"skipped"`
}

// CalibratedFunc receives every successfully solved calibration.
type CalibratedFunc func(m calibration.Matrix, points []hand.Point, surface hand.Size)

// Controller owns the gesture state, the calibration engine and the
// active transform. It is not safe for concurrent use.
type Controller struct {
	config     Config
	logger     *slog.Logger
	mode       Mode
	state      *gesture.State
	classifier *gesture.Classifier
	dispatcher *action.Dispatcher
	engine     *calibration.Engine
	store      calibration.Store

	matrix     calibration.Matrix
	calibrated bool

	onEvent      func(Result)
	onCalibrated CalibratedFunc
}

// New creates a controller in screen mode. store may be nil, in which case
// calibrations only live for the session.
func New(inj pointer.Injector, store calibration.Store, config Config) *Controller {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.ScreenMargin == 0 {
		config.ScreenMargin = gesture.DefaultScreenMargin
	}

	return &Controller{
		config:     config,
		logger:     logger,
		mode:       Screen,
		state:      gesture.NewState(config.SmoothingWindow),
		classifier: gesture.NewClassifier(config.Gesture),
		dispatcher: action.NewDispatcher(inj, config.Action),
		engine:     calibration.NewEngine(config.Calibration),
		store:      store,
	}
}

// OnEvent registers a callback invoked with the result of every frame.
func (c *Controller) OnEvent(fn func(Result)) {
	c.onEvent = fn
}

// OnCalibrated registers a callback invoked when a calibration is solved.
func (c *Controller) OnCalibrated(fn CalibratedFunc) {
	c.onCalibrated = fn
}

// LoadCalibration adopts the stored matrix, if any. A missing calibration
// is not an error.
func (c *Controller) LoadCalibration() error {
	if c.store == nil {
		return nil
	}
	m, err := c.store.Load()
	if err != nil {
		if errors.Is(err, calibration.ErrNoCalibration) {
			return nil
		}
		return err
	}
	c.matrix = m
	c.calibrated = true
	c.engine.Restore(m, c.dispatcher.Surface())
	c.logger.Info("control: calibration loaded")
	return nil
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// State returns the gesture state.
func (c *Controller) State() *gesture.State {
	return c.state
}

// Surface returns the pointer target size.
func (c *Controller) Surface() hand.Size {
	return c.dispatcher.Surface()
}

// Calibration returns the active table transform.
func (c *Controller) Calibration() (calibration.Matrix, bool) {
	return c.matrix, c.calibrated
}

// CalibrationState returns the calibration engine state.
func (c *Controller) CalibrationState() calibration.State {
	return c.engine.State()
}

// Calibrating reports whether a calibration capture is in progress.
func (c *Controller) Calibrating() bool {
	return c.engine.Active()
}

// Marker returns the camera-space marker for the corner being captured.
func (c *Controller) Marker(frame hand.Size) (hand.Point, bool) {
	if !c.engine.Active() {
		return hand.Point{}, false
	}
	return c.engine.Marker(len(c.engine.Captured()), frame), true
}

// SetMode switches modes. Buttons are released and all gesture state is
// cleared. Entering table mode without a calibration starts one.
func (c *Controller) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}

	c.resetGestures()
	if c.engine.Active() {
		c.engine.Cancel()
	}
	c.mode = m
	c.logger.Info("control: mode changed", "mode", m)

	if m == Table && !c.calibrated {
		return c.StartCalibration()
	}
	return nil
}

// StartCalibration begins a new capture, switching to table mode. The
// current transform stays in use until the new one is solved.
func (c *Controller) StartCalibration() error {
	c.resetGestures()
	if err := c.engine.Start(c.dispatcher.Surface()); err != nil {
		return err
	}
	c.mode = Table
	c.logger.Info("control: calibration started", "surface", c.dispatcher.Surface())
	return nil
}

// CancelCalibration abandons a capture in progress.
func (c *Controller) CancelCalibration() {
	if !c.engine.Active() {
		return
	}
	c.engine.Cancel()
	c.logger.Info("control: calibration cancelled")
}

// ResetCalibration forgets the active transform and deletes the stored one.
func (c *Controller) ResetCalibration() error {
	c.engine.Reset()
	c.matrix = calibration.Matrix{}
	c.calibrated = false
	if c.store != nil {
		if err := c.store.Delete(); err != nil {
			return err
		}
	}
	c.logger.Info("control: calibration reset")
	return nil
}

// ReleaseAll lifts any held button and clears the latches.
func (c *Controller) ReleaseAll() error {
	return c.dispatcher.ReleaseAll(c.state)
}

// SetSurface changes the pointer target size.
func (c *Controller) SetSurface(s hand.Size) {
	c.dispatcher.SetSurface(s)
}

// HandleFrame processes one frame. While a table calibration is capturing
// the frame only feeds the capture; otherwise it is classified and the
// resulting gesture dispatched. Pointer refusals are logged and reported in
// the result, never returned. Calibration failures are returned.
func (c *Controller) HandleFrame(f gesture.Frame) (Result, error) {
	if c.mode == Table && c.engine.State() == calibration.Capturing {
		res, err := c.calibrate(f)
		c.notify(res)
		return res, err
	}

	ev := c.classifier.Classify(c.state, f, c.mapper())
	res := Result{Mode: c.mode, Event: ev}

	if err := c.dispatcher.Dispatch(c.state, ev); err != nil {
		res.Skipped = true
		c.logger.Warn("control: pointer action skipped", "gesture", ev.Kind, "err", err)
	}

	c.notify(res)
	return res, nil
}

func (c *Controller) calibrate(f gesture.Frame) (Result, error) {
	res := Result{
		Mode:        c.mode,
		Event:       gesture.Event{Kind: gesture.None, Time: f.Time},
		Calibrating: true,
	}

	tip, ok := indexTip(f.Hands)
	p, err := c.engine.Update(f.Time, tip, ok, f.Size)
	res.Progress = p
	if err != nil {
		res.Calibrating = false
		c.logger.Warn("control: calibration failed", "err", err)
		return res, err
	}

	if p.State != calibration.Calibrated {
		return res, nil
	}

	m, _ := c.engine.Matrix()
	c.matrix = m
	c.calibrated = true
	res.Calibrating = false
	res.Calibrated = true
	c.logger.Info("control: calibration complete", "matrix", m)

	if c.onCalibrated != nil {
		c.onCalibrated(m, c.engine.Captured(), c.engine.Surface())
	}
	if c.store != nil {
		if err := c.store.Save(m); err != nil {
			return res, fmt.Errorf("save calibration: %w", err)
		}
	}
	return res, nil
}

func (c *Controller) mapper() gesture.Mapper {
	if c.mode == Table {
		if c.calibrated {
			return c.matrix
		}
		return gesture.Identity
	}
	return gesture.ScreenMapper{Surface: c.dispatcher.Surface(), Margin: c.config.ScreenMargin}
}

func (c *Controller) resetGestures() {
	if err := c.dispatcher.ReleaseAll(c.state); err != nil {
		c.logger.Warn("control: release buttons", "err", err)
	}
	c.state.Reset()
}

func (c *Controller) notify(res Result) {
	if c.onEvent != nil {
		c.onEvent(res)
	}
}

// indexTip returns the index fingertip of the first complete hand.
func indexTip(hands []hand.Sample) (hand.Point, bool) {
	for _, h := range hands {
		if h.Valid() {
			return h[hand.IndexTip], true
		}
	}
	return hand.Point{}, false
}
