package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a scripted Detector for tests and the mock backend.
// Queued results are returned one per Detect call; once the queue is
// drained the fixed hands set by SetHands are returned.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the queue is empty.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-frame results. A nil entry means no hand that frame.
func (m *MockDetector) Queue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Pending returns the number of queued frames not yet consumed.
func (m *MockDetector) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Detect returns the next queued result, the fixed hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Hand presets. Coordinates are normalized; (x, y) places the index
// fingertip and the rest of the hand is laid out below it.

// PointingLandmarks returns a hand with only the index finger extended.
func PointingLandmarks(x, y float64) HandLandmarks {
	h := curledHand(x, y)
	extend(&h, IndexMCP, x, y)
	return h
}

// TwoFingerLandmarks returns a hand with index and middle extended. The
// middle fingertip sits dx to the right of the index fingertip.
func TwoFingerLandmarks(x, y, dx float64) HandLandmarks {
	h := curledHand(x, y)
	extend(&h, IndexMCP, x, y)
	extend(&h, MiddleMCP, x+dx, y)
	return h
}

// OpenPalmLandmarks returns a hand with every finger extended.
func OpenPalmLandmarks(x, y float64) HandLandmarks {
	h := curledHand(x, y)
	extend(&h, IndexMCP, x, y)
	extend(&h, MiddleMCP, x-0.04, y-0.02)
	extend(&h, RingMCP, x-0.08, y)
	extend(&h, PinkyMCP, x-0.12, y+0.04)
	h.Points[ThumbIP] = Point3D{X: x + 0.08, Y: y + 0.28}
	h.Points[ThumbTip] = Point3D{X: x + 0.12, Y: y + 0.24}
	return h
}

// FistLandmarks returns a hand with every finger curled.
func FistLandmarks(x, y float64) HandLandmarks {
	return curledHand(x, y)
}

// curledHand lays out a closed right hand (as seen in a mirrored frame)
// whose knuckles sit around (x, y+0.2).
func curledHand(x, y float64) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	base := y + 0.2
	h.Points[Wrist] = Point3D{X: x, Y: base + 0.15}
	h.Points[ThumbCMC] = Point3D{X: x + 0.04, Y: base + 0.12}
	h.Points[ThumbMCP] = Point3D{X: x + 0.06, Y: base + 0.08}
	h.Points[ThumbIP] = Point3D{X: x + 0.05, Y: base + 0.04}
	h.Points[ThumbTip] = Point3D{X: x + 0.02, Y: base + 0.04}
	for i, mcp := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		fx := x - float64(i)*0.04
		h.Points[mcp] = Point3D{X: fx, Y: base}
		h.Points[mcp+1] = Point3D{X: fx, Y: base - 0.03}
		h.Points[mcp+2] = Point3D{X: fx, Y: base - 0.01}
		h.Points[mcp+3] = Point3D{X: fx, Y: base + 0.01}
	}
	return h
}

// extend straightens the finger starting at mcp so its tip lands on (x, y).
func extend(h *HandLandmarks, mcp int, x, y float64) {
	base := h.Points[mcp]
	for j := 1; j < 3; j++ {
		t := float64(j) / 3
		h.Points[mcp+j] = Point3D{
			X: base.X + (x-base.X)*t,
			Y: base.Y + (y-base.Y)*t,
		}
	}
	h.Points[mcp+3] = Point3D{X: x, Y: y}
}
