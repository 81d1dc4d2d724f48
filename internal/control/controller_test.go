package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/pointer"
)

var (
	frameSize = hand.Size{W: 640, H: 480}
	surface   = hand.Size{W: 1920, H: 1080}
	t0        = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func testConfig() Config {
	return Config{
		Gesture:         gesture.DefaultConfig(),
		SmoothingWindow: 1,
		Action:          action.Config{Surface: surface},
		Calibration: calibration.Config{
			Dwell:       300 * time.Millisecond,
			Tolerance:   50,
			MarkerInset: 50,
		},
	}
}

func newTestController(t *testing.T) (*Controller, *pointer.Recorder, *calibration.FileStore) {
	t.Helper()
	rec := pointer.NewRecorder()
	fs := calibration.NewFileStore(filepath.Join(t.TempDir(), "calibration.json"))
	return New(rec, fs, testConfig()), rec, fs
}

func cursorAt(p hand.Point) hand.Sample {
	return hand.WithThumbAt(hand.OpenPalm(hand.Point{}), p)
}

func frameOf(now time.Time, hands ...hand.Sample) gesture.Frame {
	return gesture.Frame{Hands: hands, Size: frameSize, Time: now}
}

// runCalibration points at each marker in turn until the capture finishes.
func runCalibration(t *testing.T, c *Controller, start time.Time) (Result, time.Time) {
	t.Helper()
	now := start
	var res Result
	for i := 0; i < 100; i++ {
		marker, ok := c.Marker(frameSize)
		if !ok {
			break
		}
		h := hand.OpenPalm(hand.Point{X: 320, Y: 300}).With(hand.IndexTip, marker)
		var err error
		res, err = c.HandleFrame(frameOf(now, h))
		if err != nil {
			t.Fatalf("HandleFrame during calibration: %v", err)
		}
		now = now.Add(100 * time.Millisecond)
	}
	return res, now
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"screen", Screen, false},
		{"table", Table, false},
		{"", "", true},
		{"mesa", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestController_ScreenModeCursor(t *testing.T) {
	c, rec, _ := newTestController(t)
	if c.Mode() != Screen {
		t.Fatalf("initial mode = %v, want screen", c.Mode())
	}

	res, err := c.HandleFrame(frameOf(t0, cursorAt(hand.Point{X: 320, Y: 240})))
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	if res.Event.Kind != gesture.Cursor {
		t.Errorf("kind = %v, want cursor", res.Event.Kind)
	}

	last, ok := rec.Last(pointer.OpMove)
	if !ok {
		t.Fatal("no move issued")
	}
	if last.X != 960 || last.Y != 540 {
		t.Errorf("move = (%d, %d), want (960, 540)", last.X, last.Y)
	}
}

func TestController_TableModeStartsCalibration(t *testing.T) {
	c, rec, _ := newTestController(t)

	if err := c.SetMode(Table); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if !c.Calibrating() {
		t.Fatal("expected calibration to start in table mode")
	}

	res, err := c.HandleFrame(frameOf(t0, cursorAt(hand.Point{X: 320, Y: 240})))
	if err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	if !res.Calibrating || res.Event.Kind != gesture.None {
		t.Errorf("result = %+v, want calibrating with no gesture", res)
	}
	if n := rec.Count(pointer.OpMove); n != 0 {
		t.Errorf("pointer moved %d times during calibration", n)
	}
}

func TestController_Calibrate(t *testing.T) {
	c, rec, fs := newTestController(t)

	var hooked []hand.Point
	c.OnCalibrated(func(m calibration.Matrix, points []hand.Point, s hand.Size) {
		hooked = points
		if s != surface {
			t.Errorf("hook surface = %v, want %v", s, surface)
		}
	})

	if err := c.SetMode(Table); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	res, now := runCalibration(t, c, t0)
	if !res.Calibrated {
		t.Fatalf("last result = %+v, want calibrated", res)
	}
	if c.Calibrating() {
		t.Error("still calibrating after the fourth corner")
	}
	if len(hooked) != calibration.NumCorners {
		t.Errorf("hook got %d points, want %d", len(hooked), calibration.NumCorners)
	}
	if _, err := os.Stat(fs.Path()); err != nil {
		t.Errorf("calibration not saved: %v", err)
	}

	// The frame centre lies halfway between the markers, which map to the
	// surface corners.
	if _, err := c.HandleFrame(frameOf(now, cursorAt(hand.Point{X: 320, Y: 240}))); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	last, ok := rec.Last(pointer.OpMove)
	if !ok {
		t.Fatal("no move issued after calibration")
	}
	if last.X != 960 || last.Y != 540 {
		t.Errorf("move = (%d, %d), want (960, 540)", last.X, last.Y)
	}
}

func TestController_CancelKeepsPreviousCalibration(t *testing.T) {
	c, _, _ := newTestController(t)
	c.SetMode(Table)
	runCalibration(t, c, t0)

	before, ok := c.Calibration()
	if !ok {
		t.Fatal("expected a calibration")
	}

	if err := c.StartCalibration(); err != nil {
		t.Fatalf("StartCalibration: %v", err)
	}
	c.CancelCalibration()

	if c.Calibrating() {
		t.Error("still calibrating after cancel")
	}
	after, ok := c.Calibration()
	if !ok || after != before {
		t.Errorf("calibration after cancel = %v (%v), want %v", after, ok, before)
	}
}

func TestController_LoadCalibration(t *testing.T) {
	dir := t.TempDir()
	fs := calibration.NewFileStore(filepath.Join(dir, "calibration.json"))

	c := New(pointer.NewRecorder(), fs, testConfig())
	if err := c.LoadCalibration(); err != nil {
		t.Fatalf("LoadCalibration with no file: %v", err)
	}
	if _, ok := c.Calibration(); ok {
		t.Fatal("expected no calibration")
	}

	m := calibration.Identity()
	m[0][2] = 15
	if err := fs.Save(m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c = New(pointer.NewRecorder(), fs, testConfig())
	if err := c.LoadCalibration(); err != nil {
		t.Fatalf("LoadCalibration: %v", err)
	}
	got, ok := c.Calibration()
	if !ok || got != m {
		t.Errorf("Calibration() = %v (%v), want %v", got, ok, m)
	}

	// Entering table mode with a loaded matrix does not recalibrate.
	if err := c.SetMode(Table); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if c.Calibrating() {
		t.Error("calibration started despite a loaded matrix")
	}
}

func TestController_ResetCalibration(t *testing.T) {
	c, _, fs := newTestController(t)
	c.SetMode(Table)
	runCalibration(t, c, t0)

	if err := c.ResetCalibration(); err != nil {
		t.Fatalf("ResetCalibration: %v", err)
	}
	if _, ok := c.Calibration(); ok {
		t.Error("calibration survived reset")
	}
	if _, err := fs.Load(); !errors.Is(err, calibration.ErrNoCalibration) {
		t.Errorf("Load after reset error = %v, want ErrNoCalibration", err)
	}
}

func TestController_SetModeReleasesButton(t *testing.T) {
	c, rec, _ := newTestController(t)

	if _, err := c.HandleFrame(frameOf(t0, hand.Fist(hand.Point{X: 320, Y: 300}))); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	if n := rec.Count(pointer.OpButtonDown); n != 1 {
		t.Fatalf("button downs = %d, want 1", n)
	}

	if err := c.SetMode(Screen); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if n := rec.Count(pointer.OpButtonUp); n != 1 {
		t.Errorf("button ups = %d, want 1", n)
	}
	if st := c.State(); st.Clicking || st.Dragging {
		t.Errorf("latches not cleared: %+v", st)
	}
}

func TestController_PointerRefusalSkipsFrame(t *testing.T) {
	c, rec, _ := newTestController(t)
	rec.FailOn(pointer.OpMove, pointer.ErrFailSafe)

	var seen []Result
	c.OnEvent(func(r Result) { seen = append(seen, r) })

	res, err := c.HandleFrame(frameOf(t0, cursorAt(hand.Point{X: 320, Y: 240})))
	if err != nil {
		t.Fatalf("HandleFrame returned %v, want nil", err)
	}
	if !res.Skipped {
		t.Error("expected the frame to be reported as skipped")
	}
	if len(seen) != 1 || !seen[0].Skipped {
		t.Errorf("observer saw %+v", seen)
	}
}

func TestController_SetModeRejectsUnknown(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.SetMode("mesa"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if c.Mode() != Screen {
		t.Errorf("mode = %v, want screen", c.Mode())
	}
}
