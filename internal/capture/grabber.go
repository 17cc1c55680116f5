package capture

import (
	"context"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
	"pkt.systems/pslog"
)

// Grabber reads a Camera on its own goroutine into a bounded queue. When the
// consumer falls behind the oldest queued frame is dropped, so the pipeline
// always works on the freshest frames.
type Grabber struct {
	camera  Camera
	mirror  bool
	frames  chan *gocv.Mat
	dropped atomic.Int64
	failed  atomic.Int64
	logger  pslog.Logger
	done    chan struct{}
}

// NewGrabber queues at most buffer frames. Mirrored frames are flipped
// horizontally before they are queued.
func NewGrabber(camera Camera, buffer int, mirror bool) *Grabber {
	if buffer < 1 {
		buffer = 1
	}
	return &Grabber{
		camera: camera,
		mirror: mirror,
		frames: make(chan *gocv.Mat, buffer),
		done:   make(chan struct{}),
	}
}

// Frames returns the queue. It is closed when Run returns.
func (g *Grabber) Frames() <-chan *gocv.Mat { return g.frames }

// Dropped returns the number of frames discarded because the queue was full.
func (g *Grabber) Dropped() int64 { return g.dropped.Load() }

// Failed returns the number of failed camera reads.
func (g *Grabber) Failed() int64 { return g.failed.Load() }

// Done is closed when Run returns.
func (g *Grabber) Done() <-chan struct{} { return g.done }

// Run reads frames until ctx is cancelled, pacing reads at the camera's
// current FPS. Read failures are logged at debug and skipped.
func (g *Grabber) Run(ctx context.Context) {
	g.logger = pslog.Ctx(ctx)
	defer close(g.done)
	defer g.drain()

	for {
		started := time.Now()
		if ctx.Err() != nil {
			return
		}

		frame, err := g.camera.ReadFrame()
		if err != nil {
			g.failed.Add(1)
			g.logger.Debug("frame read failed", "err", err)
		} else {
			if g.mirror {
				gocv.Flip(*frame, frame, 1)
			}
			g.push(frame)
		}

		fps := g.camera.FPS()
		if fps <= 0 {
			fps = DefaultFPS
		}
		wait := time.Second/time.Duration(fps) - time.Since(started)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// push queues frame, dropping the oldest queued frame when full.
func (g *Grabber) push(frame *gocv.Mat) {
	for {
		select {
		case g.frames <- frame:
			return
		default:
		}
		select {
		case old := <-g.frames:
			old.Close()
			g.dropped.Add(1)
		default:
		}
	}
}

// drain closes the queue and releases frames nobody consumed.
func (g *Grabber) drain() {
	close(g.frames)
	for f := range g.frames {
		f.Close()
	}
}
