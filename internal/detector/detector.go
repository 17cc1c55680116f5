package detector

import "gocv.io/x/gocv"

// Detector finds hands in a mirrored BGR camera frame. Detect returns no
// error and an empty slice for a frame without hands.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the landmark service.
type Config struct {
	// MaxHands bounds how many hands the service reports. The painter only
	// follows the primary one.
	MaxHands int

	// MinConfidence and MinTrackingConf are MediaPipe's detection and
	// tracking thresholds in [0, 1].
	MinConfidence   float64
	MinTrackingConf float64

	// Script is the service script; empty searches the usual locations.
	Script string

	// Python is the interpreter; empty prefers a venv python, then python3.
	Python string
}

// DefaultConfig matches the painter's tracking defaults: one hand,
// detection confidence 0.85.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.85,
		MinTrackingConf: 0.5,
	}
}
