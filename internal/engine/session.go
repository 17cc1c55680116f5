package engine

import (
	"image"
	"image/color"

	"github.com/ayusman/beyondbrush/internal/canvas"
)

// SizeLimits bounds brush and eraser widths and sets the step of one size adjustment.
type SizeLimits struct {
	BrushMin   int `mapstructure:"brush_min" yaml:"brush_min"`
	BrushMax   int `mapstructure:"brush_max" yaml:"brush_max"`
	BrushStep  int `mapstructure:"brush_step" yaml:"brush_step"`
	EraserMin  int `mapstructure:"eraser_min" yaml:"eraser_min"`
	EraserMax  int `mapstructure:"eraser_max" yaml:"eraser_max"`
	EraserStep int `mapstructure:"eraser_step" yaml:"eraser_step"`
}

// DefaultSizeLimits: brush 1..50 by 1, eraser 10..200 by 5.
func DefaultSizeLimits() SizeLimits {
	return SizeLimits{
		BrushMin: 1, BrushMax: 50, BrushStep: 1,
		EraserMin: 10, EraserMax: 200, EraserStep: 5,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampBrush clamps a brush width.
func (l SizeLimits) ClampBrush(v int) int { return clampInt(v, l.BrushMin, l.BrushMax) }

// ClampEraser clamps an eraser width.
func (l SizeLimits) ClampEraser(v int) int { return clampInt(v, l.EraserMin, l.EraserMax) }

// Session is every piece of per-session mutable state the dispatcher owns.
// The exported fields are the user's tool choices; the rest is transient
// gesture tracking that is cleared whenever the mode changes.
type Session struct {
	Eraser     bool
	BrushColor color.RGBA
	BrushSize  int
	EraserSize int
	// Header is the name of the last selected header zone.
	Header string

	prev        image.Point
	hasPrev     bool
	hoverZone   string
	dragPending bool
}

// ActiveTool returns the tool strokes are drawn with.
func (s Session) ActiveTool() canvas.Tool {
	if s.Eraser {
		return canvas.NewEraser(s.EraserSize)
	}
	return canvas.NewBrush(s.BrushColor, s.BrushSize)
}

// ActiveSize returns the width of the active tool.
func (s Session) ActiveSize() int {
	if s.Eraser {
		return s.EraserSize
	}
	return s.BrushSize
}

func (s *Session) resetTransient() {
	s.resetStroke()
	s.hoverZone = ""
}

// resetStroke drops the stroke origin and pending drag but keeps the hovered
// zone, so a one-shot zone that restores history does not fire again.
func (s *Session) resetStroke() {
	s.prev = image.Point{}
	s.hasPrev = false
	s.dragPending = false
}
