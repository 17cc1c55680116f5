package gesture

import "image"

// Kind is the discrete classification of one frame's finger configuration.
type Kind int

const (
	// Idle covers every configuration that drives no interaction, including no hand at all.
	Idle Kind = iota
	// TwoFingerSelect is index and middle fingers extended.
	TwoFingerSelect
	// OneFingerPoint is the index finger extended with the middle finger folded.
	OneFingerPoint
)

// String returns the kind name used in logs and telemetry.
func (k Kind) String() string {
	switch k {
	case TwoFingerSelect:
		return "two_finger_select"
	case OneFingerPoint:
		return "one_finger_point"
	default:
		return "idle"
	}
}

// Gesture is the classified frame. Index is set for OneFingerPoint and
// TwoFingerSelect, Middle only for TwoFingerSelect.
type Gesture struct {
	Kind   Kind
	Index  image.Point
	Middle image.Point
}

// Center returns the midpoint between the two tracked fingertips, which is
// the drag cursor of a two-finger gesture.
func (g Gesture) Center() image.Point {
	return image.Pt((g.Index.X+g.Middle.X)/2, (g.Index.Y+g.Middle.Y)/2)
}

// Classify maps a sample to a Gesture. A nil sample (no hand detected) is Idle.
//
// Rules in priority order:
//  1. index and middle up -> TwoFingerSelect
//  2. index up            -> OneFingerPoint
//  3. otherwise           -> Idle
//
// Thumb, ring and pinky do not take part in the decision.
func Classify(s *FingerSample) Gesture {
	if s == nil {
		return Gesture{Kind: Idle}
	}

	index, middle := s.Up(Index), s.Up(Middle)
	switch {
	case index && middle:
		return Gesture{Kind: TwoFingerSelect, Index: s.IndexTip(), Middle: s.MiddleTip()}
	case index:
		return Gesture{Kind: OneFingerPoint, Index: s.IndexTip()}
	default:
		return Gesture{Kind: Idle}
	}
}
