package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestGrabber_DropsOldest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.SetFPS(1000)
	cam.Open()
	defer cam.Close()

	g := NewGrabber(cam, 2, false)
	ctx, cancel := context.WithCancel(context.Background())
	go g.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for g.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-g.Done()

	if g.Dropped() == 0 {
		t.Error("expected frames to be dropped while nobody consumed")
	}
	if int64(cam.Reads()) < g.Dropped()+1 {
		t.Errorf("reads = %d, dropped = %d", cam.Reads(), g.Dropped())
	}
	for range g.Frames() {
		t.Fatal("queue should be drained after Run returns")
	}
}

func TestGrabber_MirrorsFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(0, 0, 8, 48), color.RGBA{R: 255, A: 255}, -1)

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.SetFPS(100)
	cam.Open()
	defer cam.Close()

	g := NewGrabber(cam, 1, true)
	ctx, cancel := context.WithCancel(context.Background())
	go g.Run(ctx)
	defer func() {
		cancel()
		<-g.Done()
	}()

	select {
	case got := <-g.Frames():
		defer got.Close()
		if v := got.GetVecbAt(10, 60); v[2] != 255 {
			t.Errorf("right edge = %v, want the red band after mirroring", v)
		}
		if v := got.GetVecbAt(10, 2); v[2] != 0 {
			t.Errorf("left edge = %v, want black after mirroring", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame grabbed")
	}
}

func TestGrabber_SkipsReadErrors(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.SetFPS(1000)
	cam.Open()
	cam.SetReadError(errors.New("transient"))

	g := NewGrabber(cam, 1, false)
	ctx, cancel := context.WithCancel(context.Background())
	go g.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for g.Failed() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-g.Done()

	if g.Failed() < 3 {
		t.Errorf("Failed() = %d, want the loop to keep going after errors", g.Failed())
	}
}
