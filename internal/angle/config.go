package angle

// Config carries the tunable constants of the angle algorithms. All length
// quantities are in the detector's normalized image space, all angles in
// degrees. Zero values are not usable; start from DefaultConfig.
type Config struct {
	// ReferenceLength is the segment length that maps to full geometric
	// confidence. Shorter segments scale confidence down linearly.
	ReferenceLength float64

	// MinAcceptable is the confidence floor below which a sample is
	// marked invalid.
	MinAcceptable float64

	// FlexionGate is the vertical wrist-to-knuckle offset under which
	// flexion reads as zero. Keeps palmar and dorsal mutually exclusive
	// around the neutral pose.
	FlexionGate float64

	// MinHorizontal floors the horizontal span in the flexion ratio so a
	// vertical hand cannot blow the angle up to 90 on noise.
	MinHorizontal float64

	// TipGate is the fingertip deviation past the knuckle line that
	// triggers the deep-flexion correction.
	TipGate float64

	// PalmarCorrection and DorsalCorrection convert fingertip deviation
	// into additional degrees when the tip dips past TipGate.
	PalmarCorrection float64
	DorsalCorrection float64

	// MaxFlexion caps the reported flexion angle. Values <= 0 disable
	// the cap.
	MaxFlexion float64

	// ThumbFlexPivot is the raw CMC-MCP-IP angle of a neutral thumb.
	// Smaller raw angles read as flexion, larger as extension.
	ThumbFlexPivot float64

	// ThumbAbductPivot is the raw thumb-to-index opening of a neutral
	// thumb. Wider openings read as abduction, narrower as adduction.
	ThumbAbductPivot float64
}

// DefaultConfig returns the tuning used in production. The values were
// calibrated against recorded sessions; override individual fields only
// with a recording to check against.
func DefaultConfig() Config {
	return Config{
		ReferenceLength:  0.1,
		MinAcceptable:    0.3,
		FlexionGate:      0.01,
		MinHorizontal:    0.01,
		TipGate:          0.02,
		PalmarCorrection: 30,
		DorsalCorrection: 25,
		MaxFlexion:       90,
		ThumbFlexPivot:   160,
		ThumbAbductPivot: 45,
	}
}
