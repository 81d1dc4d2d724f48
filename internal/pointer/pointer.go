// Package pointer is the boundary to the operating system's pointer: cursor
// moves, button presses and scrolling.
package pointer

import "errors"

// ErrFailSafe is returned when an action is refused because the pointer sits
// in the kill corner. Moving the physical mouse into the top-left corner of
// the primary screen stops all injected input until it is moved away.
var ErrFailSafe = errors.New("pointer: fail-safe triggered")

// Injector issues single pointer actions. Each call is one OS call; an error
// means the action was not performed.
type Injector interface {
	MoveTo(x, y int) error
	ButtonDown() error
	ButtonUp() error
	LeftClick() error
	RightClick() error
	Scroll(amount int) error
}

// Op names an Injector method, as recorded by Recorder.
type Op string

const (
	OpMove       Op = "move"
	OpButtonDown Op = "button_down"
	OpButtonUp   Op = "button_up"
	OpLeftClick  Op = "left_click"
	OpRightClick Op = "right_click"
	OpScroll     Op = "scroll"
)

// inKillCorner reports whether (x, y) is the reserved fail-safe position.
func inKillCorner(x, y int) bool {
	return x <= 0 && y <= 0
}
