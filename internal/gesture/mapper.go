package gesture

import "github.com/ayusman/mudra/internal/hand"

// DefaultScreenMargin is the camera border, in pixels, that maps to the
// screen edges in screen mode.
const DefaultScreenMargin = 100

// Mapper converts a camera-space point into target-surface coordinates.
type Mapper interface {
	Map(p hand.Point, frame hand.Size) hand.Point
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(p hand.Point, frame hand.Size) hand.Point

// Map calls f(p, frame).
func (f MapperFunc) Map(p hand.Point, frame hand.Size) hand.Point {
	return f(p, frame)
}

// Identity returns camera points unchanged.
var Identity Mapper = MapperFunc(func(p hand.Point, _ hand.Size) hand.Point { return p })

// ScreenMapper stretches the camera frame, minus a margin on every side,
// onto the surface so the whole screen is reachable without leaving the
// camera's field of view.
type ScreenMapper struct {
	Surface hand.Size
	Margin  float64
}

// Map interpolates p into the surface and clamps the result to it.
func (m ScreenMapper) Map(p hand.Point, frame hand.Size) hand.Point {
	return hand.Point{
		X: interp(p.X, m.Margin, frame.W-m.Margin, m.Surface.W),
		Y: interp(p.Y, m.Margin, frame.H-m.Margin, m.Surface.H),
	}
}

// interp maps v from [lo, hi] onto [0, span], clamping at both ends.
func interp(v, lo, hi, span float64) float64 {
	if hi <= lo {
		return span / 2
	}
	if v <= lo {
		return 0
	}
	if v >= hi {
		return span
	}
	return (v - lo) / (hi - lo) * span
}
