package app

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/beyondbrush/internal/capture"
	"github.com/ayusman/beyondbrush/internal/compositor"
	"github.com/ayusman/beyondbrush/internal/detector"
	"github.com/ayusman/beyondbrush/internal/engine"
	"github.com/ayusman/beyondbrush/internal/gesture"
)

// fpsSmoothing weighs the newest frame interval in the reported FPS.
const fpsSmoothing = 0.1

// Telemetry is reported with every composed frame.
type Telemetry struct {
	Frame      uint64  `json:"frame"`
	FPS        float64 `json:"fps"`
	CameraFPS  int     `json:"camera_fps"`
	Motion     bool    `json:"motion"`
	Hands      int     `json:"hands"`
	Gesture    string  `json:"gesture"`
	Mode       string  `json:"mode"`
	Tool       string  `json:"tool"`
	Size       int     `json:"size"`
	Zone       string  `json:"zone,omitempty"`
	Typing     bool    `json:"typing"`
	Texts      int     `json:"texts"`
	Guide      bool    `json:"guide"`
	GuidePage  int     `json:"guide_page"`
	GuidePages int     `json:"guide_pages"`
	UndoDepth  int     `json:"undo_depth"`
	RedoDepth  int     `json:"redo_depth"`
	Dropped    int64   `json:"dropped"`
	Paused     bool    `json:"paused"`
}

// run is the pipeline loop. It owns the engine: requests from other
// goroutines are executed here between frames.
func (a *App) run(ctx context.Context, grabber *capture.Grabber, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-a.requests:
			fn()
		case frame, ok := <-grabber.Frames():
			if !ok {
				return
			}
			now := time.Now()
			a.observeMotion(frame, now)
			a.ProcessFrame(frame, now)
			a.publish(frame, grabber.Dropped())
			frame.Close()
		}
	}
}

// observeMotion switches the camera between the active and idle frame rates.
// Detection keeps running at either rate so a still hand does not end a stroke.
func (a *App) observeMotion(frame *gocv.Mat, now time.Time) {
	moving, percent := a.motion.Detect(frame)
	if fps, changed := a.rate.Observe(moving, now); changed {
		a.camera.SetFPS(fps)
		a.logger.Debug("frame rate changed", "fps", fps, "motion_percent", percent)
	}
	a.mu.Lock()
	a.telemetry.Motion = moving
	a.telemetry.CameraFPS = a.rate.FPS()
	a.mu.Unlock()
}

// ProcessFrame runs one frame through key polling, detection, dispatch and
// composition. The frame must be the camera image at canvas size; it is
// composed in place. A save requested by the save zone is performed here.
func (a *App) ProcessFrame(frame *gocv.Mat, now time.Time) engine.Result {
	a.pollKeys()

	hands := 0
	var sample *gesture.FingerSample
	if a.IsEnabled() {
		sample, hands = a.detect(frame)
	}

	res := a.engine.Step(sample)
	if res.Err != nil {
		a.logger.Warn("step", "mode", res.Mode, "err", res.Err)
	}
	if res.GuidePaged {
		a.logger.Debug("guide page", "index", a.engine.Guide().Index())
	}
	if res.Save {
		if _, err := a.save(); err != nil {
			a.logger.Warn("save from header", "err", err)
		}
	}

	a.mu.Lock()
	var dt float64
	if !a.lastFrame.IsZero() {
		dt = now.Sub(a.lastFrame).Seconds()
	}
	a.lastFrame = now
	a.mu.Unlock()
	if dt > 0 {
		a.engine.Tick(dt)
	}

	a.compose(frame, res)
	a.record(res, hands, dt)
	return res
}

func (a *App) detect(frame *gocv.Mat) (*gesture.FingerSample, int) {
	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.logger.Debug("hand detection failed", "err", err)
		return nil, 0
	}
	hand, ok := detector.Primary(hands, a.cfg.Detector.MinScore)
	if !ok {
		return nil, len(hands)
	}
	s := hand.ToSample(frame.Cols(), frame.Rows())
	return &s, len(hands)
}

func (a *App) compose(frame *gocv.Mat, res engine.Result) {
	d := a.engine
	texts := d.Texts()
	scene := compositor.Scene{
		Canvas:       d.Canvas().Mat(),
		HeaderHeight: d.Layout().HeaderHeight,
		Texts:        texts.Objects(),
		Caret:        texts.Caret(),
		Style:        texts.Style(),
		Measure:      texts.Measure(),
		Markers:      res.Markers,
	}
	if a.headers != nil {
		scene.Header = a.headers.Get(d.Session().Header)
	}
	if nav := d.Guide(); nav.Visible() {
		scene.Guide = a.book.Page(nav.Index())
		scene.GuideLabel = nav.Label()
	}
	a.comp.Compose(frame, scene)
}

func (a *App) record(res engine.Result, hands int, dt float64) {
	d := a.engine
	s := d.Session()
	nav := d.Guide()

	a.mu.Lock()
	defer a.mu.Unlock()
	t := &a.telemetry
	t.Frame++
	if dt > 0 {
		fps := 1 / dt
		if t.FPS == 0 {
			t.FPS = fps
		} else {
			t.FPS += fpsSmoothing * (fps - t.FPS)
		}
	}
	t.Hands = hands
	t.Gesture = res.Gesture.Kind.String()
	t.Mode = res.Mode.String()
	t.Tool = s.ActiveTool().Kind.String()
	t.Size = s.ActiveSize()
	t.Zone = res.Zone
	t.Typing = d.Texts().Typing()
	t.Texts = d.Texts().Len()
	t.Guide = nav.Visible()
	t.GuidePage = nav.Index()
	t.GuidePages = nav.Pages()
	t.UndoDepth = d.History().UndoLen()
	t.RedoDepth = d.History().RedoLen()
}

func (a *App) publish(frame *gocv.Mat, dropped int64) {
	a.mu.Lock()
	a.telemetry.Dropped = dropped
	t := a.telemetry
	t.Paused = !a.enabled
	sinks := append([]Sink(nil), a.sinks...)
	a.mu.Unlock()

	for _, s := range sinks {
		s.Publish(frame, t)
	}
}

// pollKeys samples the key source once and applies the event before dispatch.
func (a *App) pollKeys() {
	a.mu.RLock()
	src := a.keys
	a.mu.RUnlock()
	if src == nil {
		return
	}
	code, ok := src.PollKey()
	if !ok {
		return
	}
	ev, quit, ok := DecodeKey(code, a.engine.Texts().Typing())
	if quit {
		a.logger.Info("quit requested from keyboard")
		a.RequestQuit()
		return
	}
	if ok {
		a.engine.HandleKey(ev)
	}
}

// Raw key codes reported by gocv.Window.WaitKey.
const (
	keyBackspace = 8
	keyEnter     = 13
	keyEscape    = 27
	keyDelete    = 127
)

// DecodeKey turns a raw key code into a key event. While typing, printable
// ASCII is text; otherwise 'q' asks to quit and everything else is ignored.
func DecodeKey(code int, typing bool) (ev engine.KeyEvent, quit bool, ok bool) {
	code &= 0xff
	if !typing {
		return engine.KeyEvent{}, code == 'q', false
	}
	switch {
	case code == keyEnter || code == '\n':
		return engine.KeyEvent{Kind: engine.KeyCommit}, false, true
	case code == keyEscape:
		return engine.KeyEvent{Kind: engine.KeyCancel}, false, true
	case code == keyBackspace || code == keyDelete:
		return engine.KeyEvent{Kind: engine.KeyBackspace}, false, true
	case code >= 32 && code <= 126:
		return engine.CharTyped(rune(code)), false, true
	}
	return engine.KeyEvent{}, false, false
}
