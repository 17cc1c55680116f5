// Package testdata builds synthetic camera frames, guide pages and hand
// sequences for tests. Everything is generated so no binary fixtures are
// checked in.
package testdata

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/ayusman/beyondbrush/internal/detector"
)

// Frame returns a blank BGR frame.
func Frame(width, height int) *gocv.Mat {
	m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	return &m
}

// MovingFrames returns n frames with a bright square sliding left to right,
// so consecutive frames differ enough to register as motion.
func MovingFrames(n, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	side := height / 4
	for i := 0; i < n; i++ {
		f := Frame(width, height)
		x := (i * width / max(n, 1)) % (width - side)
		gocv.Rectangle(f, image.Rect(x, height/2-side/2, x+side, height/2+side/2),
			color.RGBA{R: 230, G: 230, B: 230, A: 255}, -1)
		frames = append(frames, f)
	}
	return frames
}

// CloseAll releases every frame.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

// pageColors tints guide pages so tests can tell them apart.
var pageColors = []color.RGBA{
	{R: 200, G: 40, B: 40, A: 255},
	{R: 40, G: 200, B: 40, A: 255},
	{R: 40, G: 40, B: 200, A: 255},
}

// WriteGuidePages writes n numbered PNG pages (page_01.png, ...) into dir.
func WriteGuidePages(dir string, n, width, height int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		page := gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(float64(pageColors[i%len(pageColors)].B), float64(pageColors[i%len(pageColors)].G), float64(pageColors[i%len(pageColors)].R), 0),
			height, width, gocv.MatTypeCV8UC3)
		gocv.PutText(&page, fmt.Sprintf("Step %d", i+1), image.Pt(20, 60),
			gocv.FontHersheySimplex, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 3)
		path := filepath.Join(dir, fmt.Sprintf("page_%02d.png", i+1))
		ok := gocv.IMWrite(path, page)
		page.Close()
		if !ok {
			return fmt.Errorf("write guide page %s", path)
		}
	}
	return nil
}

// WriteHeader writes a solid header image named <zone>.png into dir.
func WriteHeader(dir, zone string, width, height int, c color.RGBA) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		height, width, gocv.MatTypeCV8UC3)
	defer img.Close()
	path := filepath.Join(dir, zone+".png")
	if !gocv.IMWrite(path, img) {
		return fmt.Errorf("write header %s", path)
	}
	return nil
}

// Point is a normalized image position.
type Point struct{ X, Y float64 }

// Stroke returns one detection per frame for a pointing hand whose index tip
// moves from a to b in steps equal increments (both ends included).
func Stroke(a, b Point, steps int) [][]detector.HandLandmarks {
	if steps < 1 {
		steps = 1
	}
	out := make([][]detector.HandLandmarks, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		out = append(out, []detector.HandLandmarks{
			detector.PointingLandmarks(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t),
		})
	}
	return out
}

// Hover returns n identical detections of hand.
func Hover(hand detector.HandLandmarks, n int) [][]detector.HandLandmarks {
	out := make([][]detector.HandLandmarks, n)
	for i := range out {
		out[i] = []detector.HandLandmarks{hand}
	}
	return out
}

// NoHands returns n empty detections.
func NoHands(n int) [][]detector.HandLandmarks {
	return make([][]detector.HandLandmarks, n)
}
