// Package angle converts validated hand landmark frames into wrist and
// thumb range-of-motion angles with per-joint confidence scores.
//
// The geometric primitives are free functions with no hidden state; the
// Calculator interface binds them to a Config and is the single home for
// algorithm variants. Data problems (degenerate geometry, invalid frames)
// resolve to zeroed, invalid samples rather than errors so the per-frame
// pipeline stays live under poor detection quality.
package angle

import (
	"math"

	"github.com/nmehta/gonio/internal/detector"
	"github.com/nmehta/gonio/internal/geom"
)

// roundPlaces is the published precision of angles and confidences.
const roundPlaces = 2

// Sample is the result of one joint-angle computation. Degrees is always
// >= 0, Confidence is in [0,1] and Valid reports whether the confidence
// clears the configured floor. Samples are created fresh per frame and
// never mutated.
type Sample struct {
	Degrees    float64 `json:"degrees"`
	Confidence float64 `json:"confidence"`
	Valid      bool    `json:"valid"`
}

// Between computes the angle at vertex between the rays toward p1 and p2.
// If either ray is degenerate (coincident landmarks) the result is the
// zero, invalid sample. Confidence scales with the shorter ray against
// cfg.ReferenceLength: very short segments are numerically untrustworthy.
func Between(vertex, p1, p2 detector.Point3D, cfg Config) Sample {
	v1 := vertex.VecTo(p1)
	v2 := vertex.VecTo(p2)

	if geom.IsDegenerate(v1) || geom.IsDegenerate(v2) {
		return Sample{}
	}

	degrees := geom.AngleDeg(v1, v2)
	confidence := math.Min(1, math.Min(v1.Norm(), v2.Norm())/cfg.ReferenceLength)

	return newSample(degrees, confidence, cfg)
}

// newSample rounds a raw degree/confidence pair into a published Sample.
// Degrees are floored at zero, confidence clamped to [0,1], validity
// derived from cfg.MinAcceptable.
func newSample(degrees, confidence float64, cfg Config) Sample {
	d := geom.RoundTo(math.Max(degrees, 0), roundPlaces)
	c := geom.RoundTo(geom.Clamp(confidence, 0, 1), roundPlaces)
	return Sample{
		Degrees:    d,
		Confidence: c,
		Valid:      c >= cfg.MinAcceptable,
	}
}
