package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/ayusman/beyondbrush/internal/app"
	"gocv.io/x/gocv"
)

// FrameHub is an app.Sink that JPEG-encodes composed frames for MJPEG viewers.
// Frames are only encoded while at least one viewer is connected, and a slow
// viewer skips frames instead of stalling the pipeline.
type FrameHub struct {
	quality int

	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	closed bool
}

// NewFrameHub creates a hub encoding at the given JPEG quality (1..100).
func NewFrameHub(quality int) *FrameHub {
	if quality < 1 || quality > 100 {
		quality = 80
	}
	return &FrameHub{
		quality: quality,
		subs:    make(map[chan []byte]struct{}),
	}
}

// Publish implements app.Sink.
func (h *FrameHub) Publish(frame *gocv.Mat, _ app.Telemetry) {
	if h.Viewers() == 0 || frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), h.quality})
	if err != nil {
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- data
	}
}

// Subscribe registers a viewer. The channel holds at most the newest frame
// and is closed when the hub closes. ok is false after Close.
func (h *FrameHub) Subscribe() (ch chan []byte, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch = make(chan []byte, 1)
	h.subs[ch] = struct{}{}
	return ch, true
}

// Unsubscribe removes a viewer.
func (h *FrameHub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Viewers returns the number of connected viewers.
func (h *FrameHub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects all viewers and rejects new ones.
func (h *FrameHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// StreamHandler serves the composed frames as MJPEG.
type StreamHandler struct {
	hub *FrameHub
}

// NewStreamHandler creates a new StreamHandler reading from hub.
func NewStreamHandler(hub *FrameHub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// ServeHTTP streams MJPEG frames until the client goes away or the hub closes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frames, ok := h.hub.Subscribe()
	if !ok {
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	}
	defer h.hub.Unsubscribe(frames)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-frames:
			if !ok {
				return
			}
			if err := writePart(w, data); err != nil {
				return
			}
		}
	}
}

// writePart writes one multipart JPEG frame and flushes it.
func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
