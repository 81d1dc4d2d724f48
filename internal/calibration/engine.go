package calibration

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// ErrNotCapturing is returned by Update when no calibration is in progress.
var ErrNotCapturing = errors.New("calibration: not capturing")

// NumCorners is the number of correspondences a calibration captures.
const NumCorners = 4

// Corner order for captured points and destinations.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

var cornerNames = [NumCorners]string{"top-left", "top-right", "bottom-right", "bottom-left"}

// CornerName returns a human readable name for corner i.
func CornerName(i int) string {
	if i < 0 || i >= NumCorners {
		return fmt.Sprintf("corner(%d)", i)
	}
	return cornerNames[i]
}

// State is the calibration engine state.
type State int

const (
	Idle State = iota
	Capturing
	Solving
	Calibrated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Solving:
		return "solving"
	case Calibrated:
		return "calibrated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for c := Idle; c <= Calibrated; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("calibration: unknown state %q", text)
}

// Config holds the capture parameters.
type Config struct {
	// Dwell is how long the fingertip must stay on a marker.
	Dwell time.Duration

	// Tolerance is the marker radius in camera pixels.
	Tolerance float64

	// MarkerInset keeps markers this many pixels inside the camera frame.
	MarkerInset float64
}

// DefaultConfig returns the default capture parameters.
func DefaultConfig() Config {
	return Config{
		Dwell:       3 * time.Second,
		Tolerance:   50,
		MarkerInset: 50,
	}
}

// Progress is a snapshot of the engine after an update.
type Progress struct {
	State    State         `json:"state"`
	Corner   int           `json:"corner"`
	Captured int           `json:"captured"`
	Marker   hand.Point    `json:"marker"`
	Dwell    float64       `json:"dwell"`
	Elapsed  time.Duration `json:"elapsed"`
	Matrix   *Matrix       `json:"matrix,omitempty"`
}

// Engine runs the four-corner capture. It is polled once per frame and never
// blocks; dwell time is measured against the frame timestamps it is given.
type Engine struct {
	config  Config
	state   State
	surface hand.Size

	corner   int
	captured []hand.Point

	dwelling   bool
	dwellStart time.Time

	matrix Matrix
}

// NewEngine creates an idle engine.
func NewEngine(config Config) *Engine {
	return &Engine{
		config:   config,
		captured: make([]hand.Point, 0, NumCorners),
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Active reports whether a capture is in progress.
func (e *Engine) Active() bool {
	return e.state == Capturing || e.state == Solving
}

// Matrix returns the solved transform, if calibrated.
func (e *Engine) Matrix() (Matrix, bool) {
	if e.state != Calibrated {
		return Matrix{}, false
	}
	return e.matrix, true
}

// Surface returns the surface the engine calibrates against.
func (e *Engine) Surface() hand.Size {
	return e.surface
}

// Captured returns a copy of the camera points captured so far.
func (e *Engine) Captured() []hand.Point {
	out := make([]hand.Point, len(e.captured))
	copy(out, e.captured)
	return out
}

// Start begins a new capture against surface, discarding any previous
// capture or matrix.
func (e *Engine) Start(surface hand.Size) error {
	if surface.Empty() {
		return fmt.Errorf("calibration: invalid surface %vx%v", surface.W, surface.H)
	}
	e.reset()
	e.surface = surface
	e.state = Capturing
	return nil
}

// Cancel abandons a capture in progress and returns to Idle. It has no
// effect once calibrated.
func (e *Engine) Cancel() {
	if e.state == Calibrated {
		return
	}
	e.reset()
}

// Reset drops everything, including a solved matrix.
func (e *Engine) Reset() {
	e.reset()
}

// Restore adopts a previously solved matrix.
func (e *Engine) Restore(m Matrix, surface hand.Size) {
	e.reset()
	e.surface = surface
	e.matrix = m
	e.state = Calibrated
}

func (e *Engine) reset() {
	e.state = Idle
	e.corner = 0
	e.captured = e.captured[:0]
	e.dwelling = false
	e.dwellStart = time.Time{}
	e.matrix = Matrix{}
}

// Destinations returns the surface corners in capture order.
func Destinations(surface hand.Size) [NumCorners]hand.Point {
	return [NumCorners]hand.Point{
		TopLeft:     {X: 0, Y: 0},
		TopRight:    {X: surface.W, Y: 0},
		BottomRight: {X: surface.W, Y: surface.H},
		BottomLeft:  {X: 0, Y: surface.H},
	}
}

// Marker returns where corner i is shown in the camera frame: the surface
// corner scaled into the frame and kept MarkerInset pixels from the edges.
func (e *Engine) Marker(i int, frame hand.Size) hand.Point {
	if i < 0 || i >= NumCorners || e.surface.Empty() {
		return hand.Point{}
	}
	dst := Destinations(e.surface)[i]
	inset := e.config.MarkerInset
	return hand.Point{
		X: clamp(dst.X/e.surface.W*frame.W, inset, frame.W-inset),
		Y: clamp(dst.Y/e.surface.H*frame.H, inset, frame.H-inset),
	}
}

// Update feeds one frame to the capture. ok reports whether a hand was seen;
// tip is its index fingertip in camera pixels. Leaving the marker radius or
// losing the hand restarts the dwell timer. When the fourth corner is
// captured the homography is solved; a degenerate capture returns the engine
// to Idle and the error wraps ErrDegenerate.
func (e *Engine) Update(now time.Time, tip hand.Point, ok bool, frame hand.Size) (Progress, error) {
	if e.state != Capturing {
		return e.progress(now, frame), ErrNotCapturing
	}

	marker := e.Marker(e.corner, frame)
	if !ok || hand.Distance(tip, marker) >= e.config.Tolerance {
		e.dwelling = false
		return e.progress(now, frame), nil
	}

	if !e.dwelling {
		e.dwelling = true
		e.dwellStart = now
	}
	if now.Sub(e.dwellStart) < e.config.Dwell {
		return e.progress(now, frame), nil
	}

	e.captured = append(e.captured, tip)
	e.corner++
	e.dwelling = false

	if e.corner < NumCorners {
		return e.progress(now, frame), nil
	}

	e.state = Solving
	var src [NumCorners]hand.Point
	copy(src[:], e.captured)
	m, err := Solve(src, Destinations(e.surface))
	if err != nil {
		e.reset()
		return e.progress(now, frame), fmt.Errorf("solve homography: %w", err)
	}

	e.matrix = m
	e.state = Calibrated
	return e.progress(now, frame), nil
}

func (e *Engine) progress(now time.Time, frame hand.Size) Progress {
	p := Progress{
		State:    e.state,
		Corner:   e.corner,
		Captured: len(e.captured),
	}
	if e.state == Capturing {
		p.Marker = e.Marker(e.corner, frame)
		if e.dwelling {
			p.Elapsed = now.Sub(e.dwellStart)
			if e.config.Dwell > 0 {
				p.Dwell = math.Min(1, float64(p.Elapsed)/float64(e.config.Dwell))
			}
		}
	}
	if e.state == Calibrated {
		m := e.matrix
		p.Matrix = &m
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(v, hi))
}
