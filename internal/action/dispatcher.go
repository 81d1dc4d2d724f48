// Package action turns gesture events into paired pointer actions.
package action

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/pointer"
)

// Defaults for zoom scrolling.
const (
	DefaultScrollStep   = 10
	DefaultZoomCooldown = 100 * time.Millisecond
)

// Config holds dispatcher settings.
type Config struct {
	// Surface bounds cursor moves to [0, W-1] x [0, H-1].
	Surface hand.Size

	// ScrollStep is the scroll amount issued per zoom step.
	ScrollStep int

	// ZoomCooldown is the minimum time between two zoom scrolls.
	ZoomCooldown time.Duration
}

// Dispatcher executes one event per frame against an Injector. It owns the
// button latches in gesture.State so that every button-down is paired with
// exactly one button-up.
type Dispatcher struct {
	config     Config
	injector   pointer.Injector
	lastScroll time.Time
}

// NewDispatcher creates a dispatcher issuing actions through inj.
func NewDispatcher(inj pointer.Injector, config Config) *Dispatcher {
	if config.ScrollStep == 0 {
		config.ScrollStep = DefaultScrollStep
	}
	if config.ZoomCooldown < 0 {
		config.ZoomCooldown = 0
	}
	return &Dispatcher{
		config:   config,
		injector: inj,
	}
}

// SetSurface changes the cursor bounds.
func (d *Dispatcher) SetSurface(s hand.Size) {
	d.config.Surface = s
}

// Surface returns the cursor bounds.
func (d *Dispatcher) Surface() hand.Size {
	return d.config.Surface
}

// Dispatch performs the actions for ev and updates the latches in st.
//
// The cursor follows every event that carries a position. A left press is
// issued once when Click first appears and released on the first event that
// is not a press. DoubleClick and RightClick fire once per activation. Zoom
// events scroll at most once per cooldown.
//
// If the injector refuses an action, Dispatch returns its error at once and
// leaves st exactly as it found it.
func (d *Dispatcher) Dispatch(st *gesture.State, ev gesture.Event) error {
	next := *st

	if ev.HasPosition {
		x, y := d.clamp(ev.Position)
		if err := d.injector.MoveTo(x, y); err != nil {
			return fmt.Errorf("move cursor: %w", err)
		}
	}

	if !ev.Kind.IsPress() && next.LeftHeld() {
		if err := d.injector.ButtonUp(); err != nil {
			return fmt.Errorf("release left button: %w", err)
		}
		next.Clicking = false
		next.Dragging = false
	}
	if ev.Kind != gesture.DoubleClick {
		next.DoubleClicking = false
	}
	if ev.Kind != gesture.RightClick {
		next.RightClicking = false
	}

	switch ev.Kind {
	case gesture.Click:
		if !next.LeftHeld() {
			if err := d.injector.ButtonDown(); err != nil {
				return fmt.Errorf("press left button: %w", err)
			}
			next.Clicking = true
		}

	case gesture.Drag:
		// A drag always continues a press; recover the button-down if the
		// press frame was lost.
		if !next.LeftHeld() {
			if err := d.injector.ButtonDown(); err != nil {
				return fmt.Errorf("press left button: %w", err)
			}
		}
		next.Dragging = true

	case gesture.DoubleClick:
		if !next.DoubleClicking {
			if next.LeftHeld() {
				if err := d.injector.ButtonUp(); err != nil {
					return fmt.Errorf("release left button: %w", err)
				}
				next.Clicking = false
				next.Dragging = false
			}
			if err := d.injector.LeftClick(); err != nil {
				return fmt.Errorf("double click: %w", err)
			}
			next.DoubleClicking = true
		}

	case gesture.RightClick:
		if !next.RightClicking {
			if err := d.injector.RightClick(); err != nil {
				return fmt.Errorf("right click: %w", err)
			}
			next.RightClicking = true
		}

	case gesture.ZoomIn, gesture.ZoomOut:
		if d.lastScroll.IsZero() || ev.Time.Sub(d.lastScroll) >= d.config.ZoomCooldown {
			amount := d.config.ScrollStep
			if ev.Kind == gesture.ZoomOut {
				amount = -amount
			}
			if err := d.injector.Scroll(amount); err != nil {
				return fmt.Errorf("scroll: %w", err)
			}
			d.lastScroll = ev.Time
		}
	}

	*st = next
	return nil
}

// ReleaseAll lifts a held left button and clears every latch. It is safe to
// call at any time, including when nothing is held.
func (d *Dispatcher) ReleaseAll(st *gesture.State) error {
	if st.LeftHeld() {
		if err := d.injector.ButtonUp(); err != nil {
			return fmt.Errorf("release left button: %w", err)
		}
	}
	st.Clicking = false
	st.Dragging = false
	st.DoubleClicking = false
	st.RightClicking = false
	return nil
}

func (d *Dispatcher) clamp(p hand.Point) (int, int) {
	x, y := math.Round(p.X), math.Round(p.Y)
	if s := d.config.Surface; !s.Empty() {
		x = math.Max(0, math.Min(x, s.W-1))
		y = math.Max(0, math.Min(y, s.H-1))
	}
	return int(x), int(y)
}
