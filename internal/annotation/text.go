// Package annotation holds the movable text objects drawn over the canvas
// and the in-progress typing caret.
package annotation

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Font is the Hershey face every annotation is rendered with.
const Font = gocv.FontHersheySimplex

// Measurer returns the rendered width and height of text (baseline excluded).
type Measurer func(text string, scale float64, thickness int) image.Point

// MeasureHershey measures text with OpenCV's metrics for Font.
func MeasureHershey(text string, scale float64, thickness int) image.Point {
	return gocv.GetTextSize(text, Font, scale, thickness)
}

// Style is the default appearance applied to newly committed text.
type Style struct {
	Color     color.RGBA
	Scale     float64
	Thickness int
}

// DefaultStyle is white Hershey simplex at scale 1.0, thickness 2.
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Scale:     1.0,
		Thickness: 2,
	}
}

// TextObject is one committed annotation. Position is the bottom-left of the text baseline.
type TextObject struct {
	Text      string      `json:"text"`
	Position  image.Point `json:"position"`
	Color     color.RGBA  `json:"color"`
	Scale     float64     `json:"scale"`
	Thickness int         `json:"thickness"`
	Selected  bool        `json:"selected"`
}

// Bounds returns the rendered box of the object: x..x+w horizontally and y-h..y vertically.
func (o TextObject) Bounds(measure Measurer) image.Rectangle {
	sz := measure(o.Text, o.Scale, o.Thickness)
	return image.Rect(o.Position.X, o.Position.Y-sz.Y, o.Position.X+sz.X, o.Position.Y)
}

// Contains reports whether p falls inside the rendered box, edges included.
func (o TextObject) Contains(p image.Point, measure Measurer) bool {
	return containsInclusive(o.Bounds(measure), p)
}

func containsInclusive(r image.Rectangle, p image.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
