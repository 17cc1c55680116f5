package engine

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/beyondbrush/internal/annotation"
	"github.com/ayusman/beyondbrush/internal/canvas"
	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/gesture"
	"github.com/ayusman/beyondbrush/internal/guide"
	"github.com/ayusman/beyondbrush/internal/history"
)

// Granularity controls how often continuous gestures record undo entries.
type Granularity string

const (
	// GranularityGesture records one entry per stroke or drag.
	GranularityGesture Granularity = "gesture"
	// GranularityFrame records an entry on every frame that mutates state.
	GranularityFrame Granularity = "frame"
)

// Feedback geometry.
const (
	MarkerRadius     = 15
	SelectionPadding = 25
)

var (
	guideMarkerColor = color.RGBA{G: 255, A: 255}
	dragMarkerColor  = color.RGBA{R: 255, G: 255, A: 255}
	defaultBrush     = color.RGBA{R: 255, B: 255, A: 255}
)

// Options configures a Dispatcher.
type Options struct {
	Layout      chrome.Layout
	Limits      SizeLimits
	BrushSize   int
	EraserSize  int
	Granularity Granularity
}

// DefaultOptions returns the stock layout, limits and sizes.
func DefaultOptions() Options {
	return Options{
		Layout:      chrome.DefaultLayout(),
		Limits:      DefaultSizeLimits(),
		BrushSize:   canvas.DefaultBrushWidth,
		EraserSize:  canvas.DefaultEraserWidth,
		Granularity: GranularityGesture,
	}
}

// MarkerShape is the kind of feedback marker.
type MarkerShape int

const (
	MarkerCircle MarkerShape = iota
	MarkerRect
)

// Marker is transient feedback drawn over the video for one frame. Markers
// are filled and never touch the canvas.
type Marker struct {
	Shape  MarkerShape
	Center image.Point
	Radius int
	Rect   image.Rectangle
	Color  color.RGBA
}

// Result describes what one Step did.
type Result struct {
	Mode    Mode
	Gesture gesture.Gesture
	Markers []Marker
	// Zone is the control zone under the index tip in selection mode.
	Zone string
	// Save is set when the save zone fired; persisting is the caller's job.
	Save       bool
	GuidePaged bool
	Committed  bool
	Err        error
}

// Dispatcher routes gestures, key events and commands to the components it
// owns. It is driven from a single goroutine and does no locking.
type Dispatcher struct {
	opts    Options
	canvas  *canvas.Canvas
	texts   *annotation.Store
	history *history.Manager
	guide   *guide.Navigator
	session Session
	mode    Mode
}

// New wires a dispatcher over the given components.
func New(c *canvas.Canvas, texts *annotation.Store, h *history.Manager, nav *guide.Navigator, opts Options) *Dispatcher {
	if opts.Granularity == "" {
		opts.Granularity = GranularityGesture
	}
	brush := defaultBrush
	if z, ok := opts.Layout.FirstColor(); ok {
		if col, ok := z.RGBA(); ok {
			brush = col
		}
	}
	return &Dispatcher{
		opts:    opts,
		canvas:  c,
		texts:   texts,
		history: h,
		guide:   nav,
		session: Session{
			BrushColor: brush,
			BrushSize:  opts.Limits.ClampBrush(opts.BrushSize),
			EraserSize: opts.Limits.ClampEraser(opts.EraserSize),
			Header:     chrome.IdleHeader,
		},
	}
}

// Canvas returns the canvas.
func (d *Dispatcher) Canvas() *canvas.Canvas { return d.canvas }

// Texts returns the text store.
func (d *Dispatcher) Texts() *annotation.Store { return d.texts }

// History returns the history manager.
func (d *Dispatcher) History() *history.Manager { return d.history }

// Guide returns the guide navigator.
func (d *Dispatcher) Guide() *guide.Navigator { return d.guide }

// Layout returns the zone table.
func (d *Dispatcher) Layout() chrome.Layout { return d.opts.Layout }

// Mode returns the mode of the last step.
func (d *Dispatcher) Mode() Mode { return d.mode }

// Session returns a copy of the session state.
func (d *Dispatcher) Session() Session { return d.session }

// Flags returns the current session toggles.
func (d *Dispatcher) Flags() Flags {
	return Flags{KeyboardActive: d.texts.Typing(), GuideVisible: d.guide.Visible()}
}

// Step processes one frame. A nil sample means no hand was detected.
func (d *Dispatcher) Step(sample *gesture.FingerSample) Result {
	g := gesture.Classify(sample)
	mode := ModeFor(g, d.Flags(), d.opts.Layout)
	if mode != d.mode {
		d.leave()
		d.mode = mode
	}

	res := Result{Mode: mode, Gesture: g}
	switch mode {
	case ModeSelection:
		d.selection(g, &res)
	case ModeGuideBrowsing:
		d.browse(g, &res)
	case ModeDrawing:
		d.draw(g, &res)
	case ModeTextDragging:
		d.dragText(g, &res)
	}
	return res
}

// leave clears all transient tracking: stroke origin, swipe, drag and zone hover.
func (d *Dispatcher) leave() {
	d.session.resetTransient()
	d.guide.Reset()
	d.texts.EndDrag()
}

func (d *Dispatcher) selection(g gesture.Gesture, res *Result) {
	res.Markers = append(res.Markers, Marker{
		Shape: MarkerRect,
		Rect: image.Rect(g.Index.X, g.Index.Y-SelectionPadding,
			g.Middle.X, g.Middle.Y+SelectionPadding),
		Color: d.session.ActiveTool().DrawColor(),
	})

	z, ok := d.opts.Layout.Hit(g.Index)
	if !ok {
		d.session.hoverZone = ""
		return
	}
	res.Zone = z.Name

	fresh := d.session.hoverZone != z.Name
	d.session.hoverZone = z.Name
	if z.Action.OneShot() && !fresh {
		return
	}
	if z.MaxY <= d.opts.Layout.HeaderHeight {
		d.session.Header = z.Name
	}

	switch z.Action {
	case chrome.ActionSave:
		res.Save = true
		d.guide.Hide()
	case chrome.ActionColor:
		c, _ := z.RGBA()
		d.SetTool(canvas.NewBrush(c, d.session.BrushSize))
		d.texts.CancelTyping()
		d.guide.Hide()
	case chrome.ActionEraser:
		d.SetTool(canvas.NewEraser(d.session.EraserSize))
		d.texts.CancelTyping()
		d.guide.Hide()
		if _, sel := d.texts.Selected(); sel {
			d.commit()
			d.texts.DeleteSelected()
			res.Committed = true
		}
	case chrome.ActionUndo:
		d.guide.Hide()
		if _, err := d.Undo(); err != nil {
			res.Err = err
		}
	case chrome.ActionRedo:
		d.guide.Hide()
		if _, err := d.Redo(); err != nil {
			res.Err = err
		}
	case chrome.ActionGuide:
		d.guide.Show()
		d.texts.CancelTyping()
	case chrome.ActionKeyboard:
		if !d.texts.Typing() {
			d.texts.BeginTyping()
		}
		d.guide.Hide()
	case chrome.ActionShrink:
		d.AdjustSize(-1)
	case chrome.ActionGrow:
		d.AdjustSize(1)
	}
}

func (d *Dispatcher) browse(g gesture.Gesture, res *Result) {
	res.GuidePaged = d.guide.Update(g.Index.X)
	res.Markers = append(res.Markers, Marker{
		Shape: MarkerCircle, Center: g.Index, Radius: MarkerRadius, Color: guideMarkerColor,
	})
}

func (d *Dispatcher) draw(g gesture.Gesture, res *Result) {
	p := g.Index
	tool := d.session.ActiveTool()

	if !d.session.hasPrev || d.opts.Granularity == GranularityFrame {
		d.commit()
		res.Committed = true
	}

	if tool.IsEraser() {
		if i, ok := d.texts.HitTest(p); ok {
			d.texts.DeleteAt(i)
		}
	}

	from := p
	if d.session.hasPrev {
		from = d.session.prev
	}
	d.canvas.Stroke(from, p, tool)
	d.session.prev, d.session.hasPrev = p, true

	res.Markers = append(res.Markers, Marker{
		Shape: MarkerCircle, Center: p, Radius: MarkerRadius, Color: tool.DrawColor(),
	})
}

// dragText grabs on the first frame that lands on something and moves the
// grabbed object afterwards. The pre-drag state is recorded on the first
// frame that actually moves an object, so a grab without motion leaves no
// undo entry.
func (d *Dispatcher) dragText(g gesture.Gesture, res *Result) {
	center := g.Center()
	res.Markers = append(res.Markers, Marker{
		Shape: MarkerCircle, Center: center, Radius: MarkerRadius, Color: dragMarkerColor,
	})

	if d.texts.Dragging() == annotation.DragNone {
		if d.texts.BeginDrag(center) == annotation.DragObject {
			d.session.dragPending = true
		}
		d.session.prev, d.session.hasPrev = center, true
		return
	}

	moved := center != d.session.prev
	d.session.prev = center
	if !moved {
		return
	}
	if d.texts.Dragging() == annotation.DragObject &&
		(d.session.dragPending || d.opts.Granularity == GranularityFrame) {
		d.commit()
		d.session.dragPending = false
		res.Committed = true
	}
	d.texts.ContinueDrag(center)
}

func (d *Dispatcher) snapshot() history.Entry {
	return history.NewEntry(d.canvas.Snapshot(), d.texts.Objects())
}

// commit records the current state as the pre-state of a committing action.
func (d *Dispatcher) commit() {
	d.history.Push(d.snapshot())
}

func (d *Dispatcher) apply(e history.Entry) error {
	d.texts.Replace(e.Texts)
	d.session.resetStroke()
	if err := d.canvas.Restore(e.Canvas); err != nil {
		return fmt.Errorf("apply history entry: %w", err)
	}
	return nil
}

// Undo restores the previous state. It reports false when there is nothing to undo.
func (d *Dispatcher) Undo() (bool, error) {
	e, ok := d.history.Undo(d.snapshot())
	if !ok {
		return false, nil
	}
	return true, d.apply(e)
}

// Redo re-applies the last undone state. It reports false when there is nothing to redo.
func (d *Dispatcher) Redo() (bool, error) {
	e, ok := d.history.Redo(d.snapshot())
	if !ok {
		return false, nil
	}
	return true, d.apply(e)
}

// SetTool switches tool. A positive width also sets that tool's size, clamped.
func (d *Dispatcher) SetTool(t canvas.Tool) {
	if t.IsEraser() {
		d.session.Eraser = true
		if t.Width > 0 {
			d.session.EraserSize = d.opts.Limits.ClampEraser(t.Width)
		}
		return
	}
	d.session.Eraser = false
	d.session.BrushColor = t.Color
	if t.Width > 0 {
		d.session.BrushSize = d.opts.Limits.ClampBrush(t.Width)
	}
}

// SetSizes restores persisted brush and eraser widths. Non-positive values are ignored.
func (d *Dispatcher) SetSizes(brush, eraser int) {
	if brush > 0 {
		d.session.BrushSize = d.opts.Limits.ClampBrush(brush)
	}
	if eraser > 0 {
		d.session.EraserSize = d.opts.Limits.ClampEraser(eraser)
	}
}

// AdjustSize changes the active tool's width by steps increments and returns the new width.
func (d *Dispatcher) AdjustSize(steps int) int {
	l := d.opts.Limits
	if d.session.Eraser {
		d.session.EraserSize = l.ClampEraser(d.session.EraserSize + steps*l.EraserStep)
		return d.session.EraserSize
	}
	d.session.BrushSize = l.ClampBrush(d.session.BrushSize + steps*l.BrushStep)
	return d.session.BrushSize
}

// ToggleGuide flips guide visibility and reports the new state. Showing the
// guide ends any typing session.
func (d *Dispatcher) ToggleGuide() bool {
	visible := d.guide.Toggle()
	if visible {
		d.texts.CancelTyping()
	}
	return visible
}

// Clear wipes the canvas and all text as one undoable action.
func (d *Dispatcher) Clear() {
	d.commit()
	d.canvas.Clear()
	d.texts.Replace(nil)
	d.session.resetStroke()
}

// Tick advances time-based state such as the caret blink by dt seconds.
func (d *Dispatcher) Tick(dt float64) {
	d.texts.Tick(dt)
}
