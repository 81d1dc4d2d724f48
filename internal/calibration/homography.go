// Package calibration maps camera space onto a target surface: it captures
// four corner correspondences with a dwell timer, solves the homography
// between them and persists the result.
package calibration

import (
	"errors"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/hand"
)

// ErrDegenerate is returned when the correspondences do not determine a
// homography, e.g. when three of the points are collinear.
var ErrDegenerate = errors.New("calibration: degenerate point set")

const (
	// collinearEps bounds the sine of the angle at which three points are
	// treated as collinear.
	collinearEps = 1e-6
	// scaleEps rejects a solution whose H[2][2] cannot be normalized.
	scaleEps = 1e-12
)

// Matrix is a 3x3 projective transform acting on homogeneous column vectors.
type Matrix [3][3]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Apply maps p through the transform and divides by the homogeneous w. A
// zero w leaves p unchanged.
func (m Matrix) Apply(p hand.Point) hand.Point {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]
	w := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]
	if w == 0 {
		return p
	}
	return hand.Point{X: x / w, Y: y / w}
}

// Map applies the transform; the frame size is not needed once calibrated.
func (m Matrix) Map(p hand.Point, _ hand.Size) hand.Point {
	return m.Apply(p)
}

// Finite reports whether every element is a finite number.
func (m Matrix) Finite() bool {
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Solve returns the homography H with H*src[i] ~ dst[i] for all four pairs.
// H is normalized so that H[2][2] == 1.
func Solve(src, dst [4]hand.Point) (Matrix, error) {
	if anyCollinear(src) || anyCollinear(dst) {
		return Matrix{}, ErrDegenerate
	}

	sv := gocv.NewPoint2fVectorFromPoints(points2f(src))
	defer sv.Close()
	dv := gocv.NewPoint2fVectorFromPoints(points2f(dst))
	defer dv.Close()

	h := gocv.GetPerspectiveTransform2f(sv, dv)
	defer h.Close()
	if h.Empty() || h.Rows() != 3 || h.Cols() != 3 {
		return Matrix{}, ErrDegenerate
	}

	var m Matrix
	for i := range m {
		for j := range m[i] {
			m[i][j] = h.GetDoubleAt(i, j)
		}
	}

	w := m[2][2]
	if math.Abs(w) < scaleEps {
		return Matrix{}, ErrDegenerate
	}
	for i := range m {
		for j := range m[i] {
			m[i][j] /= w
		}
	}
	if !m.Finite() {
		return Matrix{}, ErrDegenerate
	}
	return m, nil
}

func points2f(p [4]hand.Point) []gocv.Point2f {
	out := make([]gocv.Point2f, len(p))
	for i, q := range p {
		out[i] = gocv.Point2f{X: float32(q.X), Y: float32(q.Y)}
	}
	return out
}

// anyCollinear reports whether any three of the points are collinear or
// coincident.
func anyCollinear(p [4]hand.Point) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				if collinear(p[i], p[j], p[k]) {
					return true
				}
			}
		}
	}
	return false
}

func collinear(a, b, c hand.Point) bool {
	abx, aby := b.X-a.X, b.Y-a.Y
	acx, acy := c.X-a.X, c.Y-a.Y
	scale := math.Hypot(abx, aby) * math.Hypot(acx, acy)
	if scale == 0 {
		return true
	}
	return math.Abs(abx*acy-aby*acx) <= collinearEps*scale
}
