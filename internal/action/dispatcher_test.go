package action

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/pointer"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDispatcher() (*Dispatcher, *pointer.Recorder, *gesture.State) {
	rec := pointer.NewRecorder()
	d := NewDispatcher(rec, Config{
		Surface:      hand.Size{W: 1920, H: 1080},
		ScrollStep:   DefaultScrollStep,
		ZoomCooldown: DefaultZoomCooldown,
	})
	return d, rec, gesture.NewState(gesture.DefaultSmoothingWindow)
}

func event(kind gesture.Kind, offset time.Duration) gesture.Event {
	return gesture.Event{
		Kind:        kind,
		Position:    hand.Point{X: 500, Y: 400},
		HasPosition: true,
		Time:        t0.Add(offset),
	}
}

func TestDispatch_ClickLatch(t *testing.T) {
	d, rec, st := newTestDispatcher()

	for i := 0; i < 5; i++ {
		if err := d.Dispatch(st, event(gesture.Click, time.Duration(i)*33*time.Millisecond)); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if got := rec.Count(pointer.OpButtonDown); got != 1 {
		t.Errorf("button downs = %d, want 1", got)
	}
	if !st.Clicking {
		t.Error("Clicking latch should be set")
	}

	d.Dispatch(st, event(gesture.Cursor, 200*time.Millisecond))
	d.Dispatch(st, event(gesture.Cursor, 233*time.Millisecond))

	if got := rec.Count(pointer.OpButtonUp); got != 1 {
		t.Errorf("button ups = %d, want 1", got)
	}
	if st.Clicking || st.Dragging {
		t.Error("latches should be cleared after release")
	}
}

func TestDispatch_Drag(t *testing.T) {
	d, rec, st := newTestDispatcher()

	d.Dispatch(st, event(gesture.Click, 0))
	for i := 1; i <= 3; i++ {
		ev := event(gesture.Drag, time.Duration(i)*33*time.Millisecond)
		ev.Position = hand.Point{X: 500 + float64(i)*20, Y: 400}
		d.Dispatch(st, ev)
	}

	if got := rec.Count(pointer.OpButtonDown); got != 1 {
		t.Errorf("button downs = %d, want 1 (drag adds no new press)", got)
	}
	if !st.Dragging {
		t.Error("Dragging latch should be set")
	}
	if last, _ := rec.Last(pointer.OpMove); last.X != 560 {
		t.Errorf("cursor should follow the drag, last move = %+v", last)
	}

	d.Dispatch(st, event(gesture.None, 200*time.Millisecond))
	if got := rec.Count(pointer.OpButtonUp); got != 1 {
		t.Errorf("button ups = %d, want 1", got)
	}
}

func TestDispatch_DragWithoutPressRecoversButtonDown(t *testing.T) {
	d, rec, st := newTestDispatcher()

	d.Dispatch(st, event(gesture.Drag, 0))
	d.Dispatch(st, event(gesture.Drag, 33*time.Millisecond))

	if got := rec.Count(pointer.OpButtonDown); got != 1 {
		t.Errorf("button downs = %d, want 1", got)
	}
}

func TestDispatch_RightClickOneShot(t *testing.T) {
	d, rec, st := newTestDispatcher()

	for i := 0; i < 4; i++ {
		d.Dispatch(st, event(gesture.RightClick, time.Duration(i)*33*time.Millisecond))
	}
	if got := rec.Count(pointer.OpRightClick); got != 1 {
		t.Errorf("right clicks = %d, want 1", got)
	}

	d.Dispatch(st, event(gesture.Cursor, 200*time.Millisecond))
	d.Dispatch(st, event(gesture.RightClick, 233*time.Millisecond))
	if got := rec.Count(pointer.OpRightClick); got != 2 {
		t.Errorf("right clicks after re-arm = %d, want 2", got)
	}
}

func TestDispatch_RightClickIndependentOfLeftLatch(t *testing.T) {
	d, rec, st := newTestDispatcher()

	d.Dispatch(st, event(gesture.Click, 0))
	d.Dispatch(st, event(gesture.RightClick, 33*time.Millisecond))

	if rec.Count(pointer.OpButtonUp) != 1 {
		t.Error("the left button should be released when the right click starts")
	}
	if rec.Count(pointer.OpRightClick) != 1 {
		t.Error("expected one right click")
	}
}

func TestDispatch_DoubleClick(t *testing.T) {
	d, rec, st := newTestDispatcher()

	d.Dispatch(st, event(gesture.DoubleClick, 0))
	d.Dispatch(st, event(gesture.DoubleClick, 33*time.Millisecond))

	if got := rec.Count(pointer.OpLeftClick); got != 1 {
		t.Errorf("left clicks = %d, want 1", got)
	}
	if rec.Count(pointer.OpButtonDown) != 0 {
		t.Error("double click should not latch the button down")
	}

	d.Dispatch(st, event(gesture.Cursor, 66*time.Millisecond))
	if st.DoubleClicking {
		t.Error("DoubleClicking should clear once the press ends")
	}
}

func TestDispatch_DoubleClickReleasesHeldButton(t *testing.T) {
	d, rec, st := newTestDispatcher()

	d.Dispatch(st, event(gesture.Click, 0))
	d.Dispatch(st, event(gesture.DoubleClick, 33*time.Millisecond))

	if rec.Count(pointer.OpButtonUp) != 1 {
		t.Error("expected the held button to be released before the double click")
	}
	if st.LeftHeld() {
		t.Error("left latch should be cleared")
	}
}

func TestDispatch_ZoomCooldown(t *testing.T) {
	d, rec, st := newTestDispatcher()

	offsets := []time.Duration{0, 30 * time.Millisecond, 60 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond, 210 * time.Millisecond}
	for _, off := range offsets {
		d.Dispatch(st, event(gesture.ZoomIn, off))
	}

	calls := rec.Calls()
	var amounts []int
	for _, c := range calls {
		if c.Op == pointer.OpScroll {
			amounts = append(amounts, c.Amount)
		}
	}
	// Scrolls at 0, 100ms and 210ms.
	if len(amounts) != 3 {
		t.Fatalf("scrolls = %v, want 3 scrolls", amounts)
	}
	for _, a := range amounts {
		if a != DefaultScrollStep {
			t.Errorf("zoom in scrolled %d, want %d", a, DefaultScrollStep)
		}
	}

	d.Dispatch(st, event(gesture.ZoomOut, 400*time.Millisecond))
	if last, _ := rec.Last(pointer.OpScroll); last.Amount != -DefaultScrollStep {
		t.Errorf("zoom out scrolled %d, want %d", last.Amount, -DefaultScrollStep)
	}
}

func TestDispatch_CursorClamped(t *testing.T) {
	tests := []struct {
		name  string
		in    hand.Point
		wantX int
		wantY int
	}{
		{name: "inside", in: hand.Point{X: 10.4, Y: 20.6}, wantX: 10, wantY: 21},
		{name: "negative", in: hand.Point{X: -50, Y: -1}, wantX: 0, wantY: 0},
		{name: "beyond far edge", in: hand.Point{X: 1920, Y: 5000}, wantX: 1919, wantY: 1079},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec, st := newTestDispatcher()
			ev := gesture.Event{Kind: gesture.Cursor, Position: tt.in, HasPosition: true, Time: t0}

			if err := d.Dispatch(st, ev); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			last, ok := rec.Last(pointer.OpMove)
			if !ok {
				t.Fatal("expected a move")
			}
			if last.X != tt.wantX || last.Y != tt.wantY {
				t.Errorf("moved to (%d, %d), want (%d, %d)", last.X, last.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDispatch_NoPositionNoMove(t *testing.T) {
	d, rec, st := newTestDispatcher()

	d.Dispatch(st, gesture.Event{Kind: gesture.None, Time: t0})
	if rec.Count(pointer.OpMove) != 0 {
		t.Error("events without a position must not move the cursor")
	}
}

func TestDispatch_FailSafeLeavesLatchesUnchanged(t *testing.T) {
	d, rec, st := newTestDispatcher()

	rec.FailOn(pointer.OpButtonDown, pointer.ErrFailSafe)
	err := d.Dispatch(st, event(gesture.Click, 0))
	if !errors.Is(err, pointer.ErrFailSafe) {
		t.Fatalf("expected ErrFailSafe, got %v", err)
	}
	if st.Clicking {
		t.Error("latch must not change when the press was refused")
	}

	// Next frame succeeds and presses once.
	rec.FailOn(pointer.OpButtonDown, nil)
	if err := d.Dispatch(st, event(gesture.Click, 33*time.Millisecond)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !st.Clicking || rec.Count(pointer.OpButtonDown) != 1 {
		t.Error("expected one press after the refusal cleared")
	}

	// A refused release keeps the button latched so it is retried.
	rec.FailOn(pointer.OpButtonUp, pointer.ErrFailSafe)
	if err := d.Dispatch(st, event(gesture.Cursor, 66*time.Millisecond)); err == nil {
		t.Fatal("expected the release to fail")
	}
	if !st.Clicking {
		t.Error("latch must stay set when the release was refused")
	}
	rec.FailOn(pointer.OpButtonUp, nil)
	d.Dispatch(st, event(gesture.Cursor, 99*time.Millisecond))
	if st.Clicking || rec.Count(pointer.OpButtonUp) != 1 {
		t.Error("expected exactly one release once the refusal cleared")
	}
}

func TestDispatch_FailedMoveSkipsFrame(t *testing.T) {
	d, rec, st := newTestDispatcher()
	rec.FailOn(pointer.OpMove, pointer.ErrFailSafe)

	if err := d.Dispatch(st, event(gesture.RightClick, 0)); err == nil {
		t.Fatal("expected error")
	}
	if rec.Count(pointer.OpRightClick) != 0 || st.RightClicking {
		t.Error("no action should run after the move was refused")
	}
}

func TestReleaseAll(t *testing.T) {
	t.Run("releases a held button", func(t *testing.T) {
		d, rec, st := newTestDispatcher()
		d.Dispatch(st, event(gesture.Click, 0))
		st.RightClicking = true

		if err := d.ReleaseAll(st); err != nil {
			t.Fatalf("ReleaseAll: %v", err)
		}
		if rec.Count(pointer.OpButtonUp) != 1 {
			t.Error("expected one button up")
		}
		if st.Clicking || st.Dragging || st.RightClicking || st.DoubleClicking {
			t.Error("all latches should be cleared")
		}
	})

	t.Run("no-op when nothing is held", func(t *testing.T) {
		d, rec, st := newTestDispatcher()
		if err := d.ReleaseAll(st); err != nil {
			t.Fatalf("ReleaseAll: %v", err)
		}
		if len(rec.Calls()) != 0 {
			t.Errorf("expected no calls, got %v", rec.Calls())
		}
	})
}
