package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// State is the gesture state carried across frames. The classifier reads
// and writes the press-tracking fields; the action dispatcher owns the
// button latches.
type State struct {
	// Button latches, maintained by the action dispatcher.
	Clicking       bool
	Dragging       bool
	RightClicking  bool
	DoubleClicking bool

	// ZoomActive is set while two closed fists are tracked.
	ZoomActive bool

	zoomBaseline float64
	smoother     *Smoother

	// fistAfterZoom suppresses the fist press for a fist left closed when
	// a zoom ends, until that fist opens.
	fistAfterZoom bool

	pinching   bool
	dragAnchor hand.Point

	// pressHeld is set while a click-qualifying press (pinch or fist)
	// continues across frames; doublePress marks a held double-click.
	pressHeld   bool
	doublePress bool
	lastClick   time.Time
}

// NewState creates a state whose smoother averages window positions.
func NewState(window int) *State {
	return &State{smoother: NewSmoother(window)}
}

// ZoomBaseline returns the fist distance recorded when the zoom began, or 0.
func (s *State) ZoomBaseline() float64 {
	return s.zoomBaseline
}

// LeftHeld reports whether the left button is latched down.
func (s *State) LeftHeld() bool {
	return s.Clicking || s.Dragging
}

// Reset clears every latch, the smoothing window and all press tracking.
func (s *State) Reset() {
	window := DefaultSmoothingWindow
	if s.smoother != nil {
		window = s.smoother.Size()
	}
	*s = State{smoother: NewSmoother(window)}
}

func (s *State) endZoom() {
	s.ZoomActive = false
	s.zoomBaseline = 0
}

func (s *State) endPinch() {
	s.pinching = false
	s.dragAnchor = hand.Point{}
}

func (s *State) endPress() {
	s.pressHeld = false
	s.doublePress = false
}

func (s *State) smooth(p hand.Point) hand.Point {
	if s.smoother == nil {
		s.smoother = NewSmoother(DefaultSmoothingWindow)
	}
	return s.smoother.Push(p)
}
