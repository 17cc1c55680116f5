// Package engine is the per-frame interaction state machine. It turns one
// classified gesture per frame into mutations of the canvas, the text store,
// the guide navigator and the undo history.
package engine

import (
	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/gesture"
)

// Mode is the interaction behavior active for one frame.
type Mode int

const (
	ModeReset Mode = iota
	ModeSelection
	ModeGuideBrowsing
	ModeDrawing
	ModeTextDragging
)

var modeNames = [...]string{
	ModeReset:         "reset",
	ModeSelection:     "selection",
	ModeGuideBrowsing: "guide_browsing",
	ModeDrawing:       "drawing",
	ModeTextDragging:  "text_dragging",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// Flags are the session toggles that take part in mode selection.
type Flags struct {
	KeyboardActive bool
	GuideVisible   bool
}

// ModeFor picks the mode for a gesture. It is a pure function.
//
// Two fingers select, except while typing: then they drag text unless the
// index tip rests on a control zone, so the header stays reachable.
// One finger browses the guide when it is visible and draws otherwise;
// while typing it does nothing.
func ModeFor(g gesture.Gesture, f Flags, l chrome.Layout) Mode {
	switch g.Kind {
	case gesture.TwoFingerSelect:
		if f.KeyboardActive {
			if _, onZone := l.Hit(g.Index); !onZone {
				return ModeTextDragging
			}
		}
		return ModeSelection
	case gesture.OneFingerPoint:
		switch {
		case f.KeyboardActive:
			return ModeReset
		case f.GuideVisible:
			return ModeGuideBrowsing
		default:
			return ModeDrawing
		}
	default:
		return ModeReset
	}
}
