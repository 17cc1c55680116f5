package app

import (
	"context"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// keyBuffer is how many key presses the window holds between frames.
const keyBuffer = 16

// Window is a local preview window. It is a Sink and a KeySource: frames are
// handed over by the pipeline and shown by Run, which must own the calling
// OS thread, and key presses flow back one per frame.
type Window struct {
	name   string
	mu     sync.Mutex
	latest gocv.Mat
	fresh  bool
	keys   chan int
}

// NewWindow creates a window titled name. Nothing is shown until Run.
func NewWindow(name string) *Window {
	return &Window{
		name:   name,
		latest: gocv.NewMat(),
		keys:   make(chan int, keyBuffer),
	}
}

// Publish keeps a copy of the newest composed frame.
func (w *Window) Publish(frame *gocv.Mat, _ Telemetry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	frame.CopyTo(&w.latest)
	w.fresh = true
}

// PollKey returns the oldest unread key press.
func (w *Window) PollKey() (int, bool) {
	select {
	case k := <-w.keys:
		return k, true
	default:
		return 0, false
	}
}

// Run shows frames until ctx is done or the window is closed by the user,
// in which case onClose is called.
func (w *Window) Run(ctx context.Context, onClose func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win := gocv.NewWindow(w.name)
	defer win.Close()
	shown := gocv.NewMat()
	defer shown.Close()

	for ctx.Err() == nil {
		w.mu.Lock()
		if w.fresh {
			w.latest.CopyTo(&shown)
			w.fresh = false
		}
		w.mu.Unlock()

		if !shown.Empty() {
			win.IMShow(shown)
		}
		if key := win.WaitKey(10); key >= 0 {
			select {
			case w.keys <- key:
			default:
			}
		}
		if !win.IsOpen() {
			if onClose != nil {
				onClose()
			}
			return
		}
	}
}

// Close releases the frame copy.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest.Close()
}
