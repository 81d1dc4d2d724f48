package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// Config holds the classifier thresholds.
type Config struct {
	// PinchThreshold is the fingertip distance, in pixels, below which two
	// fingers count as pinched.
	PinchThreshold float64

	// ZoomInFactor and ZoomOutFactor bound the hysteresis band applied to
	// the ratio between the current and initial fist distance.
	ZoomInFactor  float64
	ZoomOutFactor float64

	// DoubleClickWindow is the longest gap between two presses that still
	// counts as a double click.
	DoubleClickWindow time.Duration
}

// DefaultConfig returns the classifier thresholds used when none are configured.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:    40,
		ZoomInFactor:      1.5,
		ZoomOutFactor:     0.7,
		DoubleClickWindow: 500 * time.Millisecond,
	}
}

// Frame is the classifier input for one video frame.
type Frame struct {
	Hands []hand.Sample
	Size  hand.Size
	Time  time.Time
}

// Classifier maps the hands seen in a frame to exactly one Event.
type Classifier struct {
	config Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	return &Classifier{config: config}
}

// Config returns the classifier thresholds.
func (c *Classifier) Config() Config {
	return c.config
}

// Classify produces the event for frame f, updating st. Positions are
// passed through m before smoothing; a nil m leaves them in camera space.
//
// Two closed fists take priority and drive zoom. Otherwise the first
// complete hand is tested, in order, for an index pinch (click, or drag
// while the button is held), a middle pinch (right click) and a closed
// fist (click). Anything else is plain cursor tracking.
func (c *Classifier) Classify(st *State, f Frame, m Mapper) Event {
	if m == nil {
		m = Identity
	}

	hands := make([]hand.Sample, 0, len(f.Hands))
	for _, h := range f.Hands {
		if h.Valid() {
			hands = append(hands, h)
		}
	}

	if len(hands) == 2 && hand.IsFistClosed(hands[0]) && hand.IsFistClosed(hands[1]) {
		st.endPinch()
		st.endPress()
		return c.zoom(st, hands[0], hands[1], f, m)
	}

	if st.ZoomActive {
		st.fistAfterZoom = true
	}
	st.endZoom()

	if len(hands) == 0 {
		st.endPinch()
		st.endPress()
		st.fistAfterZoom = false
		return Event{Kind: None, Time: f.Time}
	}

	h := hands[0]
	fist := hand.IsFistClosed(h)
	if !fist {
		st.fistAfterZoom = false
	}
	ev := Event{
		Kind:        Cursor,
		Position:    st.smooth(m.Map(h[hand.ThumbTip], f.Size)),
		HasPosition: true,
		Time:        f.Time,
	}

	pinchIndex := hand.Distance(h[hand.ThumbTip], h[hand.IndexTip])
	pinchMiddle := hand.Distance(h[hand.ThumbTip], h[hand.MiddleTip])

	switch {
	case pinchIndex < c.config.PinchThreshold:
		if !st.pinching {
			st.pinching = true
			st.dragAnchor = ev.Position
		}
		ev.Kind = c.press(st, f.Time)
		if ev.Kind == Drag {
			ev.Anchor = st.dragAnchor
			ev.HasAnchor = true
		}

	case pinchMiddle < c.config.PinchThreshold:
		st.endPinch()
		st.endPress()
		ev.Kind = RightClick

	case fist && !st.fistAfterZoom:
		st.endPinch()
		ev.Kind = c.press(st, f.Time)

	default:
		st.endPinch()
		st.endPress()
	}

	return ev
}

// press resolves a click-qualifying frame. The double-click window is only
// consulted on the frame the press begins, before drag promotion, so a
// quick second press is always a double click and never starts a drag.
func (c *Classifier) press(st *State, now time.Time) Kind {
	if !st.pressHeld {
		st.pressHeld = true
		if !st.lastClick.IsZero() && now.Sub(st.lastClick) < c.config.DoubleClickWindow {
			st.doublePress = true
			st.lastClick = time.Time{}
			return DoubleClick
		}
		st.doublePress = false
		st.lastClick = now
		if st.LeftHeld() {
			return Drag
		}
		return Click
	}

	if st.doublePress {
		return DoubleClick
	}
	if st.LeftHeld() {
		return Drag
	}
	return Click
}

func (c *Classifier) zoom(st *State, a, b hand.Sample, f Frame, m Mapper) Event {
	ev := Event{
		Kind:        None,
		Position:    m.Map(hand.Midpoint(a[hand.Wrist], b[hand.Wrist]), f.Size),
		HasPosition: true,
		Time:        f.Time,
	}

	dist := hand.Distance(a[hand.Wrist], b[hand.Wrist])
	if !st.ZoomActive || st.zoomBaseline <= 0 {
		st.ZoomActive = true
		st.zoomBaseline = dist
		ev.Ratio = 1
		return ev
	}

	ev.Ratio = dist / st.zoomBaseline
	switch {
	case ev.Ratio > c.config.ZoomInFactor:
		ev.Kind = ZoomIn
	case ev.Ratio < c.config.ZoomOutFactor:
		ev.Kind = ZoomOut
	}
	return ev
}
