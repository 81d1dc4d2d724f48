// Package hand holds the pixel-space hand model shared by the gesture and
// calibration layers: landmark indices, points, and the geometric predicates
// evaluated on a single hand.
package hand

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a position in pixels. Y grows downward, as in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Size is a width/height pair in pixels, used for both camera frames and
// the target surface.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Sample is the ordered set of landmarks for one hand in one frame,
// indexed by the constants above.
type Sample []Point

// Valid reports whether the sample carries the full landmark set.
func (s Sample) Valid() bool {
	return len(s) == NumLandmarks
}

// With returns a copy of the sample with landmark i replaced by p.
func (s Sample) With(i int, p Point) Sample {
	out := make(Sample, len(s))
	copy(out, s)
	if i >= 0 && i < len(out) {
		out[i] = p
	}
	return out
}

// Translate returns a copy of the sample shifted by (dx, dy).
func (s Sample) Translate(dx, dy float64) Sample {
	out := make(Sample, len(s))
	for i, p := range s {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}
