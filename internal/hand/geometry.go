package hand

import "math"

// curlRatio scales the wrist-to-index-base distance into the radius inside
// which a fingertip counts as curled into the palm.
const curlRatio = 1.3

// fingers pairs each non-thumb fingertip with its base knuckle.
var fingers = [4][2]int{
	{IndexTip, IndexMCP},
	{MiddleTip, MiddleMCP},
	{RingTip, RingMCP},
	{PinkyTip, PinkyMCP},
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// IsFistClosed reports whether at least three fingers are bent below their
// knuckle and at least three fingertips sit inside the curl radius around
// the wrist. Incomplete samples are never a fist.
func IsFistClosed(s Sample) bool {
	if !s.Valid() {
		return false
	}

	wrist := s[Wrist]
	radius := curlRatio * Distance(s[IndexMCP], wrist)

	bent, curled := 0, 0
	for _, f := range fingers {
		tip, base := s[f[0]], s[f[1]]
		if tip.Y > base.Y {
			bent++
		}
		if Distance(tip, wrist) < radius {
			curled++
		}
	}

	return bent >= 3 && curled >= 3
}
