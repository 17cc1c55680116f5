// Package compositor merges the camera frame, the canvas, the header chrome,
// the text layer and the guide overlay into the displayed image.
package compositor

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/beyondbrush/internal/annotation"
	"github.com/ayusman/beyondbrush/internal/engine"
)

// Compositing constants.
const (
	MaskThreshold    = 50
	OutlineThickness = 4
	SelectionPad     = 5
	CaretHeight      = 30
	TypingStripH     = 100
	HintText         = "Selection Mode - Two Fingers Up"
	TypingHint       = "Press Enter to confirm text, ESC to cancel"
)

var (
	white        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black        = color.RGBA{A: 255}
	selectGreen  = color.RGBA{G: 255, A: 255}
	hintGray     = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	stripShade   = gocv.NewScalar(50, 50, 50, 0)
	hintPosition = image.Pt(50, 150)
)

// Options tunes blending.
type Options struct {
	GuideOpacity    float64 `mapstructure:"opacity" yaml:"opacity"`
	GuideUnderlay   float64 `mapstructure:"underlay" yaml:"underlay"`
	StripOpacity    float64 `mapstructure:"strip_opacity" yaml:"strip_opacity"`
	ShowHint        bool    `mapstructure:"show_hint" yaml:"show_hint"`
	GuideLabelInset int     `mapstructure:"label_inset" yaml:"label_inset"`
}

// DefaultOptions: guide at 0.3 over the frame at 0.3, typing strip at 0.3.
func DefaultOptions() Options {
	return Options{
		GuideOpacity:    0.3,
		GuideUnderlay:   0.3,
		StripOpacity:    0.3,
		ShowHint:        true,
		GuideLabelInset: 180,
	}
}

// Scene is everything drawn over one camera frame.
type Scene struct {
	Canvas       *gocv.Mat
	Header       *gocv.Mat
	HeaderHeight int
	Texts        []annotation.TextObject
	Caret        annotation.CaretView
	Style        annotation.Style
	Measure      annotation.Measurer
	Markers      []engine.Marker
	Guide        *gocv.Mat
	GuideLabel   string
}

// Compositor owns scratch buffers reused across frames. It is not safe for concurrent use.
type Compositor struct {
	opts  Options
	gray  gocv.Mat
	mask  gocv.Mat
	mask3 gocv.Mat
}

// New creates a compositor.
func New(opts Options) *Compositor {
	return &Compositor{
		opts:  opts,
		gray:  gocv.NewMat(),
		mask:  gocv.NewMat(),
		mask3: gocv.NewMat(),
	}
}

// Close releases scratch buffers.
func (c *Compositor) Close() {
	c.gray.Close()
	c.mask.Close()
	c.mask3.Close()
}

// Compose draws the scene onto frame in place. The frame must be BGR and the
// same size as the canvas.
//
// Order: feedback markers, canvas mask, header band, typing strip, text
// layer and caret, guide overlay.
func (c *Compositor) Compose(frame *gocv.Mat, s Scene) {
	if frame == nil || frame.Empty() {
		return
	}
	measure := s.Measure
	if measure == nil {
		measure = annotation.MeasureHershey
	}

	c.drawMarkers(frame, s.Markers)
	if c.opts.ShowHint {
		outlinedText(frame, HintText, hintPosition, 0.7, white, 2)
	}

	if s.Canvas != nil && !s.Canvas.Empty() {
		c.overlayCanvas(frame, s.Canvas)
	}

	if s.Header != nil && !s.Header.Empty() && s.HeaderHeight > 0 {
		pasteRegion(frame, s.Header, image.Rect(0, 0, frame.Cols(), s.HeaderHeight))
	}

	if s.Caret.Active {
		c.typingStrip(frame)
	}
	DrawTexts(frame, s.Texts, measure)
	if s.Caret.Active {
		drawCaret(frame, s.Caret, s.Style, measure)
	}

	if s.Guide != nil && !s.Guide.Empty() {
		c.overlayGuide(frame, s.Guide, s.HeaderHeight)
		outlinedText(frame, s.GuideLabel, image.Pt(frame.Cols()-c.opts.GuideLabelInset, 150), 0.7, white, 2)
	}
}

// overlayCanvas replaces frame pixels wherever the canvas is not background.
func (c *Compositor) overlayCanvas(frame, canvas *gocv.Mat) {
	gocv.CvtColor(*canvas, &c.gray, gocv.ColorBGRToGray)
	gocv.Threshold(c.gray, &c.mask, MaskThreshold, 255, gocv.ThresholdBinaryInv)
	gocv.CvtColor(c.mask, &c.mask3, gocv.ColorGrayToBGR)
	gocv.BitwiseAnd(*frame, c.mask3, frame)
	gocv.BitwiseOr(*frame, *canvas, frame)
}

func (c *Compositor) typingStrip(frame *gocv.Mat) {
	h, w := frame.Rows(), frame.Cols()
	top := max(h-TypingStripH, 0)
	strip := frame.Region(image.Rect(0, top, w, h))
	defer strip.Close()

	shade := gocv.NewMatWithSizeFromScalar(stripShade, h-top, w, gocv.MatTypeCV8UC3)
	defer shade.Close()
	gocv.AddWeighted(strip, 1-c.opts.StripOpacity, shade, c.opts.StripOpacity, 0, &strip)

	gocv.PutText(frame, TypingHint, image.Pt(20, h-20), annotation.Font, 0.5, hintGray, 1)
}

func (c *Compositor) overlayGuide(frame, page *gocv.Mat, headerHeight int) {
	area := image.Rect(0, headerHeight, frame.Cols(), frame.Rows())
	if area.Empty() {
		return
	}
	region := frame.Region(area)
	defer region.Close()

	src := *page
	if page.Cols() != area.Dx() || page.Rows() != area.Dy() {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(*page, &resized, area.Size(), 0, 0, gocv.InterpolationLinear)
		src = resized
	}
	gocv.AddWeighted(src, c.opts.GuideOpacity, region, c.opts.GuideUnderlay, 0, &region)
}

func (c *Compositor) drawMarkers(frame *gocv.Mat, markers []engine.Marker) {
	for _, m := range markers {
		switch m.Shape {
		case engine.MarkerCircle:
			gocv.Circle(frame, m.Center, m.Radius, m.Color, -1)
		case engine.MarkerRect:
			gocv.Rectangle(frame, m.Rect, m.Color, -1)
		}
	}
}

// pasteRegion copies src into dst at r, resizing src if needed.
func pasteRegion(dst, src *gocv.Mat, r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, dst.Cols(), dst.Rows()))
	if r.Empty() {
		return
	}
	region := dst.Region(r)
	defer region.Close()

	if src.Cols() == r.Dx() && src.Rows() == r.Dy() {
		src.CopyTo(&region)
		return
	}
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(*src, &resized, r.Size(), 0, 0, gocv.InterpolationLinear)
	resized.CopyTo(&region)
}

// outlinedText draws text with a black outline for legibility on video.
func outlinedText(img *gocv.Mat, text string, org image.Point, scale float64, col color.RGBA, thickness int) {
	if text == "" {
		return
	}
	gocv.PutText(img, text, org, annotation.Font, scale, black, OutlineThickness)
	gocv.PutText(img, text, org, annotation.Font, scale, col, thickness)
}

// DrawTexts renders committed text objects in z-order with outline then fill.
// Selected objects get a padded green box.
func DrawTexts(img *gocv.Mat, texts []annotation.TextObject, measure annotation.Measurer) {
	for _, o := range texts {
		outlinedText(img, o.Text, o.Position, o.Scale, o.Color, o.Thickness)
		if o.Selected {
			box := o.Bounds(measure).Inset(-SelectionPad)
			gocv.Rectangle(img, box, selectGreen, 2)
		}
	}
}

func drawCaret(img *gocv.Mat, caret annotation.CaretView, style annotation.Style, measure annotation.Measurer) {
	outlinedText(img, caret.Text, caret.Position, style.Scale, style.Color, style.Thickness)
	if !caret.Visible {
		return
	}
	w := 0
	if caret.Text != "" {
		w = measure(caret.Text, style.Scale, style.Thickness).X
	}
	bottom := image.Pt(caret.Position.X+w, caret.Position.Y)
	gocv.Line(img, bottom, image.Pt(bottom.X, bottom.Y-CaretHeight), white, 2)
}
