package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	blurSize      = 21
	diffThreshold = 25
)

// IdleGate decides whether a frame is worth sending to the hand detector.
// While a hand is in view every frame passes. With no hand in view a frame
// passes only if enough pixels changed since the previous one.
type IdleGate struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
	tracking  bool
}

// NewIdleGate creates a gate. threshold is the percentage of pixels that
// must change; zero or less lets every frame through.
func NewIdleGate(threshold float64) *IdleGate {
	return &IdleGate{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Allow reports whether frame should be processed. It always updates the
// motion baseline.
func (g *IdleGate) Allow(frame *gocv.Mat) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.threshold <= 0 {
		return true
	}
	if frame == nil || frame.Empty() {
		return false
	}

	changed := g.diff(frame)
	return g.tracking || changed > g.threshold
}

// Tracking tells the gate whether the last processed frame contained a hand.
func (g *IdleGate) Tracking(seen bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracking = seen
}

// diff returns the percentage of pixels that changed since the previous
// frame. The first frame counts as fully changed.
func (g *IdleGate) diff(frame *gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	defer blurred.CopyTo(&g.prev)
	if !g.primed || g.prev.Rows() != blurred.Rows() || g.prev.Cols() != blurred.Cols() {
		g.primed = true
		return 100
	}

	delta := gocv.NewMat()
	defer delta.Close()
	gocv.AbsDiff(blurred, g.prev, &delta)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(delta, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100
}

// Close releases the baseline frame.
func (g *IdleGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prev.Close()
	g.primed = false
}
