// Package gesture classifies per-frame finger samples into discrete interaction gestures.
package gesture

import "image"

// Finger positions in a FingersUp vector.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// Landmark ids used by the classifier.
const (
	IndexTipID   = 8
	MiddleTipID  = 12
	NumLandmarks = 21
)

// Landmark is a single hand point in pixel space.
type Landmark struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// FingerSample is the detector output for the active hand in one frame.
// It is read-only to the engine and discarded after the frame.
type FingerSample struct {
	Landmarks [NumLandmarks]Landmark `json:"landmarks"`
	FingersUp [NumFingers]bool       `json:"fingers_up"`
}

// Point returns the pixel position of landmark id.
// Ids outside [0, NumLandmarks) yield the zero point.
func (s *FingerSample) Point(id int) image.Point {
	if s == nil || id < 0 || id >= NumLandmarks {
		return image.Point{}
	}
	lm := s.Landmarks[id]
	return image.Pt(lm.X, lm.Y)
}

// IndexTip returns the index fingertip position.
func (s *FingerSample) IndexTip() image.Point {
	return s.Point(IndexTipID)
}

// MiddleTip returns the middle fingertip position.
func (s *FingerSample) MiddleTip() image.Point {
	return s.Point(MiddleTipID)
}

// Up reports whether finger f is extended.
func (s *FingerSample) Up(f int) bool {
	if s == nil || f < 0 || f >= NumFingers {
		return false
	}
	return s.FingersUp[f]
}
