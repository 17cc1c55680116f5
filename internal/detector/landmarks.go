// Package detector turns camera frames into hand landmarks and adapts them
// into the finger samples the engine consumes.
package detector

import "github.com/ayusman/beyondbrush/internal/gesture"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// fingerTips and the joint each tip is compared against, thumb first.
var (
	fingerTips   = [gesture.NumFingers]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}
	fingerJoints = [gesture.NumFingers]int{ThumbIP, IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
)

// Point3D is a landmark in normalized image coordinates: X and Y in [0,1]
// with Y growing downward, Z relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FingersUp applies the extension rules to a mirrored frame: the thumb is up
// when its tip lies right of its IP joint, the other fingers when their tip
// lies above their PIP joint.
func (h *HandLandmarks) FingersUp() [gesture.NumFingers]bool {
	var up [gesture.NumFingers]bool
	if h == nil {
		return up
	}
	up[gesture.Thumb] = h.Points[ThumbTip].X > h.Points[ThumbIP].X
	for f := gesture.Index; f < gesture.NumFingers; f++ {
		up[f] = h.Points[fingerTips[f]].Y < h.Points[fingerJoints[f]].Y
	}
	return up
}

// ToSample scales the landmarks to pixel coordinates of a width x height
// frame, truncating toward zero.
func (h *HandLandmarks) ToSample(width, height int) gesture.FingerSample {
	var s gesture.FingerSample
	if h == nil {
		return s
	}
	for i, p := range h.Points {
		s.Landmarks[i] = gesture.Landmark{
			ID: i,
			X:  int(p.X * float64(width)),
			Y:  int(p.Y * float64(height)),
		}
	}
	s.FingersUp = h.FingersUp()
	return s
}

// Primary returns the highest scoring hand at or above minScore.
func Primary(hands []HandLandmarks, minScore float64) (*HandLandmarks, bool) {
	best := -1
	for i := range hands {
		if hands[i].Score < minScore {
			continue
		}
		if best < 0 || hands[i].Score > hands[best].Score {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}
	return &hands[best], true
}
