// Package detector finds hand landmarks in camera frames.
package detector

import "github.com/ayusman/mudra/internal/hand"

// Point3D is a landmark in normalized image coordinates: X and Y in [0, 1]
// relative to the frame, Z a relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Complete reports whether all hand.NumLandmarks points are present.
func (h HandLandmarks) Complete() bool {
	return len(h.Points) == hand.NumLandmarks
}

// Pixels converts the landmarks to frame pixels, dropping depth.
func (h HandLandmarks) Pixels(frame hand.Size) hand.Sample {
	s := make(hand.Sample, len(h.Points))
	for i, p := range h.Points {
		s[i] = hand.Point{X: p.X * frame.W, Y: p.Y * frame.H}
	}
	return s
}

// Mirror flips the landmarks horizontally and swaps the handedness label,
// matching a mirrored frame.
func (h HandLandmarks) Mirror() HandLandmarks {
	out := HandLandmarks{
		Points: make([]Point3D, len(h.Points)),
		Score:  h.Score,
	}
	for i, p := range h.Points {
		out.Points[i] = Point3D{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	switch h.Handedness {
	case "Left":
		out.Handedness = "Right"
	case "Right":
		out.Handedness = "Left"
	default:
		out.Handedness = h.Handedness
	}
	return out
}

// FromSample builds normalized landmarks from a pixel-space hand.
func FromSample(s hand.Sample, frame hand.Size) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, len(s)),
		Handedness: "Right",
		Score:      0.95,
	}
	if frame.Empty() {
		return h
	}
	for i, p := range s {
		h.Points[i] = Point3D{X: p.X / frame.W, Y: p.Y / frame.H}
	}
	return h
}

// Samples converts every complete hand to pixel space.
func Samples(hands []HandLandmarks, frame hand.Size) []hand.Sample {
	out := make([]hand.Sample, 0, len(hands))
	for _, h := range hands {
		if h.Complete() {
			out = append(out, h.Pixels(frame))
		}
	}
	return out
}
