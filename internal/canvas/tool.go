package canvas

import "image/color"

// ToolKind selects how a stroke is applied to the raster.
type ToolKind int

const (
	Brush ToolKind = iota
	Eraser
)

// String returns the tool name used in telemetry.
func (k ToolKind) String() string {
	if k == Eraser {
		return "eraser"
	}
	return "brush"
}

// Default stroke widths.
const (
	DefaultBrushWidth  = 10
	DefaultEraserWidth = 100
)

// Background is the neutral canvas color. Pixels of this color are
// treated as transparent when the canvas is composed over video.
var Background = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// Tool is the active stroke tool. Color is ignored for the eraser.
type Tool struct {
	Kind  ToolKind
	Color color.RGBA
	Width int
}

// NewBrush returns a brush tool with the given color and width.
func NewBrush(c color.RGBA, width int) Tool {
	return Tool{Kind: Brush, Color: c, Width: width}
}

// NewEraser returns an eraser tool with the given width.
func NewEraser(width int) Tool {
	return Tool{Kind: Eraser, Color: Background, Width: width}
}

// IsEraser reports whether the tool erases.
func (t Tool) IsEraser() bool {
	return t.Kind == Eraser
}

// DrawColor returns the color actually written to the raster.
func (t Tool) DrawColor() color.RGBA {
	if t.IsEraser() {
		return Background
	}
	return t.Color
}
