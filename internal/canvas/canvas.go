// Package canvas owns the persistent raster surface that strokes are written into.
package canvas

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultSubdivisions is the number of segments a stroke between two
// consecutive samples is split into.
const DefaultSubdivisions = 10

// ErrSizeMismatch is returned when restoring a snapshot taken from a canvas of a different size.
var ErrSizeMismatch = errors.New("snapshot size does not match canvas")

// Canvas is a BGR raster the same size as the video frame. It is not safe
// for concurrent use; the pipeline owns it from a single goroutine.
type Canvas struct {
	mat          gocv.Mat
	width        int
	height       int
	subdivisions int
}

// New creates a blank canvas of the given size.
func New(width, height int) *Canvas {
	return &Canvas{
		mat:          gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
		width:        width,
		height:       height,
		subdivisions: DefaultSubdivisions,
	}
}

// SetSubdivisions sets the stroke interpolation count. Values below 1 are ignored.
func (c *Canvas) SetSubdivisions(n int) {
	if n < 1 {
		return
	}
	c.subdivisions = n
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Mat returns the live raster. Callers must not close it and should treat it as read-only.
func (c *Canvas) Mat() *gocv.Mat {
	return &c.mat
}

// Interpolate returns n+1 evenly spaced points from `from` to `to`, both
// endpoints included. n below 1 is treated as 1.
func Interpolate(from, to image.Point, n int) []image.Point {
	if n < 1 {
		n = 1
	}
	pts := make([]image.Point, n+1)
	dx, dy := to.X-from.X, to.Y-from.Y
	for i := 0; i <= n; i++ {
		pts[i] = image.Pt(from.X+dx*i/n, from.Y+dy*i/n)
	}
	return pts
}

// Stroke draws a line from `from` to `to` with the tool's width and color,
// as a chain of short segments between interpolated points.
func (c *Canvas) Stroke(from, to image.Point, tool Tool) {
	width := tool.Width
	if width < 1 {
		width = 1
	}
	col := tool.DrawColor()

	pts := Interpolate(from, to, c.subdivisions)
	for i := 1; i < len(pts); i++ {
		gocv.Line(&c.mat, pts[i-1], pts[i], col, width)
	}
}

// Clear resets every pixel to the background color.
func (c *Canvas) Clear() {
	blank := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	defer blank.Close()
	blank.CopyTo(&c.mat)
}

// Snapshot returns an independent copy of the raster.
func (c *Canvas) Snapshot() Snapshot {
	return Snapshot{
		rows: c.mat.Rows(),
		cols: c.mat.Cols(),
		pix:  c.mat.ToBytes(),
	}
}

// Restore replaces the raster contents with the snapshot. The snapshot is
// left untouched and can be restored again later.
func (c *Canvas) Restore(s Snapshot) error {
	if s.rows != c.height || s.cols != c.width {
		return fmt.Errorf("restore %dx%d into %dx%d: %w", s.cols, s.rows, c.width, c.height, ErrSizeMismatch)
	}

	tmp, err := gocv.NewMatFromBytes(s.rows, s.cols, gocv.MatTypeCV8UC3, s.Bytes())
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	defer tmp.Close()

	tmp.CopyTo(&c.mat)
	return nil
}

// Close releases the raster.
func (c *Canvas) Close() error {
	return c.mat.Close()
}
