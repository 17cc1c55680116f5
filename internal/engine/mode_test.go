package engine

import (
	"image"
	"testing"

	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/gesture"
)

func TestModeFor(t *testing.T) {
	l := chrome.DefaultLayout()
	two := func(x, y int) gesture.Gesture {
		return gesture.Gesture{Kind: gesture.TwoFingerSelect, Index: image.Pt(x, y), Middle: image.Pt(x+30, y)}
	}
	one := gesture.Gesture{Kind: gesture.OneFingerPoint, Index: image.Pt(400, 400)}
	idle := gesture.Gesture{Kind: gesture.Idle}

	tests := []struct {
		name  string
		g     gesture.Gesture
		flags Flags
		want  Mode
	}{
		{name: "two fingers select", g: two(400, 400), want: ModeSelection},
		{name: "two fingers in header", g: two(300, 50), want: ModeSelection},
		{name: "two fingers typing drags", g: two(400, 400), flags: Flags{KeyboardActive: true}, want: ModeTextDragging},
		{name: "two fingers typing on header zone selects", g: two(300, 50), flags: Flags{KeyboardActive: true}, want: ModeSelection},
		{name: "two fingers typing on size zone selects", g: two(1250, 700), flags: Flags{KeyboardActive: true}, want: ModeSelection},
		{name: "two fingers with guide select", g: two(400, 400), flags: Flags{GuideVisible: true}, want: ModeSelection},
		{name: "one finger draws", g: one, want: ModeDrawing},
		{name: "one finger with guide browses", g: one, flags: Flags{GuideVisible: true}, want: ModeGuideBrowsing},
		{name: "one finger typing resets", g: one, flags: Flags{KeyboardActive: true}, want: ModeReset},
		{name: "one finger typing with guide resets", g: one, flags: Flags{KeyboardActive: true, GuideVisible: true}, want: ModeReset},
		{name: "idle resets", g: idle, want: ModeReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModeFor(tt.g, tt.flags, l); got != tt.want {
				t.Errorf("ModeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	if ModeDrawing.String() != "drawing" || ModeTextDragging.String() != "text_dragging" {
		t.Error("unexpected mode names")
	}
	if Mode(42).String() != "unknown" {
		t.Error("out-of-range mode should be unknown")
	}
}

func TestSizeLimits(t *testing.T) {
	l := DefaultSizeLimits()
	tests := []struct {
		name string
		got  int
		want int
	}{
		{name: "brush low", got: l.ClampBrush(0), want: 1},
		{name: "brush high", got: l.ClampBrush(99), want: 50},
		{name: "brush ok", got: l.ClampBrush(10), want: 10},
		{name: "eraser low", got: l.ClampEraser(5), want: 10},
		{name: "eraser high", got: l.ClampEraser(250), want: 200},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}
