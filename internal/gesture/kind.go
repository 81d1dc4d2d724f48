// Package gesture turns per-frame hand samples into pointer gestures.
package gesture

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// Kind identifies the gesture recognized in a frame.
type Kind int

const (
	None Kind = iota
	Cursor
	Click
	DoubleClick
	Drag
	RightClick
	ZoomIn
	ZoomOut
)

var kindNames = [...]string{
	None:        "none",
	Cursor:      "cursor",
	Click:       "click",
	DoubleClick: "double_click",
	Drag:        "drag",
	RightClick:  "right_click",
	ZoomIn:      "zoom_in",
	ZoomOut:     "zoom_out",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name for JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gesture kind %q", text)
}

// IsPress reports whether the kind holds the left button down.
func (k Kind) IsPress() bool {
	return k == Click || k == Drag || k == DoubleClick
}

// IsZoom reports whether the kind is one of the zoom gestures.
func (k Kind) IsZoom() bool {
	return k == ZoomIn || k == ZoomOut
}

// Event is the single gesture produced for one frame.
type Event struct {
	Kind Kind `json:"kind"`

	// Position is the mapped, smoothed pointer target. Valid only when
	// HasPosition is set.
	Position    hand.Point `json:"position"`
	HasPosition bool       `json:"has_position"`

	// Ratio is the current-to-baseline fist distance while zooming.
	Ratio float64 `json:"ratio,omitempty"`

	// Anchor is where the pinch closed, attached to Drag events.
	Anchor    hand.Point `json:"anchor"`
	HasAnchor bool       `json:"has_anchor"`

	Time time.Time `json:"time"`
}
