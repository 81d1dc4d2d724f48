package pointer

import (
	"fmt"
	"sync"

	"github.com/go-vgo/robotgo"
)

// Robot injects pointer input through robotgo.
type Robot struct {
	failSafe bool
	mu       sync.Mutex
}

// NewRobot creates an injector. With failSafe set, every action is refused
// while the OS pointer rests in the kill corner, and moves into the corner
// are refused as well.
func NewRobot(failSafe bool) *Robot {
	return &Robot{failSafe: failSafe}
}

// ScreenSize returns the primary screen size in pixels.
func ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (r *Robot) check() error {
	if !r.failSafe {
		return nil
	}
	if x, y := robotgo.Location(); inKillCorner(x, y) {
		return ErrFailSafe
	}
	return nil
}

// MoveTo moves the cursor to (x, y).
func (r *Robot) MoveTo(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(); err != nil {
		return err
	}
	if r.failSafe && inKillCorner(x, y) {
		return ErrFailSafe
	}
	robotgo.Move(x, y)
	return nil
}

// ButtonDown presses the left button without releasing it.
func (r *Robot) ButtonDown() error {
	return r.toggle("down")
}

// ButtonUp releases the left button.
func (r *Robot) ButtonUp() error {
	return r.toggle("up")
}

func (r *Robot) toggle(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(); err != nil {
		return err
	}
	if err := robotgo.Toggle("left", dir); err != nil {
		return fmt.Errorf("left button %s: %w", dir, err)
	}
	return nil
}

// LeftClick presses and releases the left button.
func (r *Robot) LeftClick() error {
	return r.click("left")
}

// RightClick presses and releases the right button.
func (r *Robot) RightClick() error {
	return r.click("right")
}

func (r *Robot) click(button string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(); err != nil {
		return err
	}
	robotgo.Click(button)
	return nil
}

// Scroll scrolls vertically. Positive amounts scroll up.
func (r *Robot) Scroll(amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(); err != nil {
		return err
	}
	robotgo.Scroll(0, amount)
	return nil
}
