package gesture

import "github.com/ayusman/mudra/internal/hand"

// DefaultSmoothingWindow is the number of positions averaged by default.
const DefaultSmoothingWindow = 5

// Smoother is a fixed-window moving average over pointer positions.
type Smoother struct {
	size   int
	window []hand.Point
}

// NewSmoother creates a smoother averaging the last size positions.
// Sizes below 1 disable smoothing.
func NewSmoother(size int) *Smoother {
	if size < 1 {
		size = 1
	}
	return &Smoother{
		size:   size,
		window: make([]hand.Point, 0, size),
	}
}

// Push adds p to the window, evicting the oldest position once full, and
// returns the per-axis mean of the retained positions.
func (s *Smoother) Push(p hand.Point) hand.Point {
	if len(s.window) == s.size {
		copy(s.window, s.window[1:])
		s.window = s.window[:s.size-1]
	}
	s.window = append(s.window, p)

	// Incremental mean: a window of identical points yields that point exactly.
	mean := s.window[0]
	for i := 1; i < len(s.window); i++ {
		n := float64(i + 1)
		mean.X += (s.window[i].X - mean.X) / n
		mean.Y += (s.window[i].Y - mean.Y) / n
	}
	return mean
}

// Len returns the number of retained positions.
func (s *Smoother) Len() int {
	return len(s.window)
}

// Size returns the window capacity.
func (s *Smoother) Size() int {
	return s.size
}

// Reset empties the window.
func (s *Smoother) Reset() {
	s.window = s.window[:0]
}
