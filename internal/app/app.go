// Package app runs the painter: it pulls camera frames, feeds hand samples to
// the interaction engine, composes the display image and hands it to the sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"pkt.systems/pslog"

	"github.com/ayusman/beyondbrush/internal/annotation"
	"github.com/ayusman/beyondbrush/internal/canvas"
	"github.com/ayusman/beyondbrush/internal/capture"
	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/compositor"
	"github.com/ayusman/beyondbrush/internal/config"
	"github.com/ayusman/beyondbrush/internal/detector"
	"github.com/ayusman/beyondbrush/internal/engine"
	"github.com/ayusman/beyondbrush/internal/export"
	"github.com/ayusman/beyondbrush/internal/guide"
	"github.com/ayusman/beyondbrush/internal/history"
	"github.com/ayusman/beyondbrush/internal/store"
)

var (
	// ErrNotRunning is returned by requests made while the pipeline is stopped.
	ErrNotRunning = errors.New("pipeline is not running")
	// ErrExportDisabled is returned by Save when no exporter is configured.
	ErrExportDisabled = errors.New("export is not configured")
)

// Sink receives every composed frame on the pipeline goroutine. The frame is
// only valid for the duration of the call.
type Sink interface {
	Publish(frame *gocv.Mat, t Telemetry)
}

// KeySource is polled once per frame before dispatch. It returns a raw key
// code as reported by gocv.Window.WaitKey.
type KeySource interface {
	PollKey() (int, bool)
}

// Options wires an App. Camera and Detector default to the ones described by Config.
type Options struct {
	Config   config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Store    *store.Store
}

// App owns the engine and everything it draws with. Only the pipeline
// goroutine touches the engine; other goroutines reach it through requests.
type App struct {
	cfg      config.Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	rate     *capture.RateGovernor
	detector detector.Detector
	engine   *engine.Dispatcher
	comp     *compositor.Compositor
	headers  *chrome.Headers
	book     *guide.Book
	exporter *export.Exporter
	store    *store.Store
	logger   pslog.Logger

	requests chan func()
	quit     chan struct{}
	quitOnce sync.Once

	mu        sync.RWMutex
	enabled   bool
	sinks     []Sink
	keys      KeySource
	telemetry Telemetry
	cancel    context.CancelFunc
	done      chan struct{}
	grabber   *capture.Grabber
	lastFrame time.Time
}

// NewDetector builds the detector named by cfg.Backend. When the MediaPipe
// service cannot be found the mock detector is used instead.
func NewDetector(ctx context.Context, cfg config.DetectorConfig) detector.Detector {
	logger := pslog.Ctx(ctx)
	if cfg.Backend == "mock" {
		return detector.NewMockDetector()
	}
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConf,
		Script:          cfg.Script,
		Python:          cfg.Python,
	})
	if err != nil {
		logger.Warn("mediapipe not available, using mock detector", "err", err)
		return detector.NewMockDetector()
	}
	logger.Info("using mediapipe hand detection")
	return mp
}

// New builds the engine and its collaborators from opts. Persisted brush and
// eraser sizes are restored when a store is given.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	logger := pslog.Ctx(ctx)

	style, err := textStyle(cfg.Text)
	if err != nil {
		return nil, err
	}

	cam := opts.Camera
	if cam == nil {
		cam = capture.NewCamera(capture.Config{
			Device: cfg.Camera.Device,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.ActiveFPS,
		})
	}
	det := opts.Detector
	if det == nil {
		det = NewDetector(ctx, cfg.Detector)
	}

	layout := cfg.Chrome.Layout
	headers, err := chrome.LoadHeaders(cfg.Chrome.HeaderDir, layout)
	if err != nil {
		return nil, fmt.Errorf("load headers: %w", err)
	}
	book, err := guide.LoadBook(cfg.Guide.Dir, image.Pt(layout.Width, layout.Height-layout.HeaderHeight))
	if err != nil {
		headers.Close()
		return nil, fmt.Errorf("load guide: %w", err)
	}
	logger.Info("chrome loaded", "headers", headers.Len(), "guide_pages", book.Len())

	var exporter *export.Exporter
	if cfg.Export.Dir != "" {
		format, err := export.ParseFormat(cfg.Export.Format)
		if err != nil {
			headers.Close()
			book.Close()
			return nil, err
		}
		var recorder export.Recorder
		if opts.Store != nil {
			recorder = opts.Store.Paintings()
		}
		exporter, err = export.New(cfg.Export.Dir, format, recorder)
		if err != nil {
			headers.Close()
			book.Close()
			return nil, err
		}
	}

	cv := canvas.New(layout.Width, layout.Height)
	cv.SetSubdivisions(cfg.Canvas.Subdivisions)
	texts := annotation.NewStore(cfg.Text.Capacity,
		annotation.WithStyle(style),
		annotation.WithBlinkInterval(cfg.Text.BlinkSeconds),
		annotation.WithCaretHome(image.Pt(cfg.Text.CaretX, cfg.Text.CaretY)),
	)
	nav := guide.NewNavigator(book.Len(), cfg.Guide.SwipeThreshold)
	eng := engine.New(cv, texts, history.NewManager(cfg.History.Capacity), nav, engine.Options{
		Layout:      layout,
		Limits:      cfg.Canvas.Limits,
		BrushSize:   cfg.Canvas.BrushSize,
		EraserSize:  cfg.Canvas.EraserSize,
		Granularity: engine.Granularity(cfg.History.Granularity),
	})

	a := &App{
		cfg:      cfg,
		camera:   cam,
		motion:   capture.NewMotionDetector(cfg.Camera.MotionThreshold),
		rate:     capture.NewRateGovernor(cfg.Camera.ActiveFPS, cfg.Camera.IdleFPS, time.Now()),
		detector: det,
		engine:   eng,
		comp: compositor.New(compositor.Options{
			GuideOpacity:    cfg.Guide.Opacity,
			GuideUnderlay:   cfg.Guide.Underlay,
			StripOpacity:    compositor.DefaultOptions().StripOpacity,
			ShowHint:        cfg.Chrome.ShowHint,
			GuideLabelInset: cfg.Guide.LabelInset,
		}),
		headers:  headers,
		book:     book,
		exporter: exporter,
		store:    opts.Store,
		logger:   logger,
		requests: make(chan func()),
		quit:     make(chan struct{}),
		enabled:  true,
	}
	a.restoreSizes()
	return a, nil
}

func textStyle(cfg config.TextConfig) (annotation.Style, error) {
	col, err := chrome.ParseHex(cfg.Color)
	if err != nil {
		return annotation.Style{}, fmt.Errorf("text color: %w", err)
	}
	return annotation.Style{Color: col, Scale: cfg.FontScale, Thickness: cfg.Thickness}, nil
}

func (a *App) restoreSizes() {
	if a.store == nil || !a.cfg.Canvas.PersistSizes {
		return
	}
	settings := a.store.Settings()
	brush, err := settings.GetInt(store.SettingBrushSize, 0)
	if err != nil {
		a.logger.Warn("restore brush size", "err", err)
	}
	eraser, err := settings.GetInt(store.SettingEraserSize, 0)
	if err != nil {
		a.logger.Warn("restore eraser size", "err", err)
	}
	a.engine.SetSizes(brush, eraser)
	a.logger.Debug("sizes restored", "brush", a.engine.Session().BrushSize, "eraser", a.engine.Session().EraserSize)
}

func (a *App) persistSizes() {
	if a.store == nil || !a.cfg.Canvas.PersistSizes {
		return
	}
	s := a.engine.Session()
	settings := a.store.Settings()
	if err := settings.SetInt(store.SettingBrushSize, s.BrushSize); err != nil {
		a.logger.Warn("persist brush size", "err", err)
	}
	if err := settings.SetInt(store.SettingEraserSize, s.EraserSize); err != nil {
		a.logger.Warn("persist eraser size", "err", err)
	}
}

// AddSink registers a display sink.
func (a *App) AddSink(s Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, s)
}

// SetKeySource sets the keyboard polled before each frame is dispatched.
func (a *App) SetKeySource(k KeySource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = k
}

// SetEnabled pauses or resumes hand tracking. A paused app keeps displaying frames.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled != enabled {
		a.logger.Info("tracking", "enabled", enabled)
	}
	a.enabled = enabled
}

// IsEnabled reports whether hand tracking is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Telemetry returns the state reported with the last frame.
func (a *App) Telemetry() Telemetry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t := a.telemetry
	t.Paused = !a.enabled
	return t
}

// Engine returns the dispatcher. It must only be used from the pipeline
// goroutine, or before Start.
func (a *App) Engine() *engine.Dispatcher { return a.engine }

// Exporter returns the painting exporter, or nil when export is disabled.
func (a *App) Exporter() *export.Exporter { return a.exporter }

// Quit is closed when the user asks to quit from a display window or the tray.
func (a *App) Quit() <-chan struct{} { return a.quit }

// RequestQuit closes Quit. It is safe to call more than once.
func (a *App) RequestQuit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Start opens the camera and runs the grabber and the pipeline until ctx is
// cancelled or Stop is called. Failing to open the camera is the only fatal error.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(a.rate.FPS())

	ctx, cancel := context.WithCancel(pslog.ContextWithLogger(ctx, a.logger))
	a.cancel = cancel
	a.done = make(chan struct{})
	a.grabber = capture.NewGrabber(a.camera, a.cfg.Camera.Buffer, a.cfg.Camera.Mirror)
	go a.grabber.Run(ctx)
	go a.run(ctx, a.grabber, a.done)

	a.logger.Info("pipeline started", "fps", a.rate.FPS(), "mirror", a.cfg.Camera.Mirror)
	return nil
}

// Stop halts the pipeline, closes the camera and persists the tool sizes.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done, grabber := a.cancel, a.done, a.grabber
	a.cancel, a.done, a.grabber = nil, nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	<-grabber.Done()

	if err := a.camera.Close(); err != nil {
		a.logger.Warn("close camera", "err", err)
	}
	a.persistSizes()
	a.logger.Info("pipeline stopped", "dropped", grabber.Dropped(), "failed_reads", grabber.Failed())
}

// Close stops the pipeline and releases every resource the app owns.
func (a *App) Close() {
	a.Stop()
	a.comp.Close()
	a.motion.Close()
	a.headers.Close()
	a.book.Close()
	if err := a.engine.Canvas().Close(); err != nil {
		a.logger.Warn("close canvas", "err", err)
	}
	if err := a.detector.Close(); err != nil {
		a.logger.Warn("close detector", "err", err)
	}
}

// do runs fn on the pipeline goroutine and waits for it.
func (a *App) do(ctx context.Context, fn func()) error {
	a.mu.RLock()
	done := a.done
	a.mu.RUnlock()
	if done == nil {
		return ErrNotRunning
	}

	finished := make(chan struct{})
	req := func() {
		defer close(finished)
		fn()
	}
	select {
	case a.requests <- req:
	case <-done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Command applies a UI command between frames.
func (a *App) Command(ctx context.Context, cmd engine.Command) error {
	var applyErr error
	if err := a.do(ctx, func() {
		applyErr = a.engine.Apply(cmd)
		a.logger.Debug("command", "kind", cmd.Kind, "err", applyErr)
	}); err != nil {
		return err
	}
	return applyErr
}

// Key applies a keyboard event between frames. It reports whether the typing
// session changed.
func (a *App) Key(ctx context.Context, ev engine.KeyEvent) (bool, error) {
	var changed bool
	err := a.do(ctx, func() { changed = a.engine.HandleKey(ev) })
	return changed, err
}

// Save flattens the canvas and committed text between frames and exports it.
func (a *App) Save(ctx context.Context) (*store.Painting, error) {
	var (
		p       *store.Painting
		saveErr error
	)
	if err := a.do(ctx, func() { p, saveErr = a.save() }); err != nil {
		return nil, err
	}
	return p, saveErr
}

// save must run on the pipeline goroutine.
func (a *App) save() (*store.Painting, error) {
	if a.exporter == nil {
		return nil, ErrExportDisabled
	}
	texts := a.engine.Texts().Objects()
	flat := compositor.Flatten(a.engine.Canvas().Mat(), texts)
	defer flat.Close()

	p, err := a.exporter.Save(&flat, len(texts))
	if err != nil {
		if p != nil {
			a.logger.Warn("painting saved but not recorded", "path", p.Path, "err", err)
			return p, err
		}
		a.logger.Error("save painting", "err", err)
		return nil, err
	}
	a.logger.Info("painting saved", "path", p.Path, "format", p.Format, "texts", p.TextCount)
	return p, nil
}
