package detector

import "gocv.io/x/gocv"

// A Detector turns video frames into hand landmark frames.
type Detector interface {
	// Detect analyzes one frame. It returns an empty slice when no hand
	// is in view.
	Detect(frame *gocv.Mat) ([]Frame, error)

	// Close stops whatever backs the detector. Detect must not be
	// called after Close.
	Close() error
}

// Config holds the detection tuning passed to the landmark service.
type Config struct {
	// MaxHands is the maximum number of hands to detect. The measurement
	// pipeline tracks a single hand, so the default is 1.
	MaxHands int

	// MinConfidence is the minimum detection confidence (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the tuning the measurement pipeline runs with.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
