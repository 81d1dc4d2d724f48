package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestIdleGate_Disabled(t *testing.T) {
	g := NewIdleGate(0)
	defer g.Close()

	if !g.Allow(nil) {
		t.Error("disabled gate should allow every frame")
	}
}

func TestIdleGate_Motion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewIdleGate(1.0)
	defer g.Close()

	still := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer still.Close()

	if !g.Allow(&still) {
		t.Error("first frame should pass")
	}
	if g.Allow(&still) {
		t.Error("identical frame with no hand should be gated")
	}

	moved := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer moved.Close()
	gocv.Rectangle(&moved, image.Rect(100, 100, 400, 400), color.RGBA{255, 255, 255, 0}, -1)

	if !g.Allow(&moved) {
		t.Error("frame with motion should pass")
	}
}

func TestIdleGate_Tracking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewIdleGate(1.0)
	defer g.Close()

	still := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer still.Close()

	g.Allow(&still)
	g.Tracking(true)
	if !g.Allow(&still) {
		t.Error("still frame should pass while a hand is tracked")
	}

	g.Tracking(false)
	if g.Allow(&still) {
		t.Error("still frame should be gated once the hand is gone")
	}
}
