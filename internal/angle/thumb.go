package angle

import "github.com/nmehta/gonio/internal/detector"

// ThumbSet holds the four thumb angles of one frame. Flexion/extension and
// abduction/adduction are each a pivot split of one raw joint angle, so at
// most one of each pair is non-zero.
type ThumbSet struct {
	Flexion   Sample `json:"flexion"`
	Extension Sample `json:"extension"`
	Abduction Sample `json:"abduction"`
	Adduction Sample `json:"adduction"`
}

// thumbAngles computes both thumb pairs for a validated frame.
func thumbAngles(f *detector.Frame, cfg Config) ThumbSet {
	var set ThumbSet

	// Bend of the thumb MCP joint: below the neutral pivot the thumb is
	// curling in (flexion), above it is hyperextending.
	bend := Between(
		f.Points[detector.ThumbMCP],
		f.Points[detector.ThumbCMC],
		f.Points[detector.ThumbIP],
		cfg,
	)
	set.Flexion, set.Extension = splitByPivot(bend, cfg.ThumbFlexPivot, cfg)

	// Opening between the thumb ray and the index knuckle, measured at
	// the CMC joint where the motion actually happens.
	opening := Between(
		f.Points[detector.ThumbCMC],
		f.Points[detector.ThumbMCP],
		f.Points[detector.IndexMCP],
		cfg,
	)
	set.Adduction, set.Abduction = splitByPivot(opening, cfg.ThumbAbductPivot, cfg)

	return set
}

// splitByPivot divides a raw joint angle into its below-pivot and
// above-pivot directions. A raw sample under the confidence floor is not
// trusted to pick a direction and yields two zero samples carrying its
// confidence.
func splitByPivot(raw Sample, pivot float64, cfg Config) (below, above Sample) {
	zero := newSample(0, raw.Confidence, cfg)
	if !raw.Valid {
		return zero, zero
	}
	if raw.Degrees < pivot {
		return newSample(pivot-raw.Degrees, raw.Confidence, cfg), zero
	}
	return zero, newSample(raw.Degrees-pivot, raw.Confidence, cfg)
}
