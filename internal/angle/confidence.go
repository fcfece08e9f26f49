package angle

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/nmehta/gonio/internal/detector"
	"github.com/nmehta/gonio/internal/geom"
)

// Aggregate returns the mean confidence of the valid samples, or 0 when
// none are valid. The result is in [0,1] and never NaN.
func Aggregate(samples []Sample) float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if s.Valid {
			sum += s.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return geom.RoundTo(sum/float64(n), roundPlaces)
}

// Weights controls how Blend mixes the geometric sample confidence with
// signals from outside the angle math.
type Weights struct {
	Samples   float64
	Detection float64
	Stability float64
}

// DefaultWeights favors geometric confidence over the detector score and
// positional stability.
func DefaultWeights() Weights {
	return Weights{Samples: 0.5, Detection: 0.3, Stability: 0.2}
}

// Blend combines the aggregated sample confidence with the detector's
// reported score and a positional stability signal into one session-level
// quality number in [0,1]. Weights are normalized by their sum; an all-zero
// Weights yields 0.
func Blend(sampleConf, detectionScore, stability float64, w Weights) float64 {
	total := w.Samples + w.Detection + w.Stability
	if total <= 0 {
		return 0
	}
	v := (sampleConf*w.Samples + detectionScore*w.Detection + stability*w.Stability) / total
	return geom.RoundTo(geom.Clamp(v, 0, 1), roundPlaces)
}

// FacingScore estimates how squarely the palm faces the camera: the
// magnitude of the palm plane normal's Z component. 1 means the palm is
// flat to the lens, 0 means edge-on or degenerate. Useful for prompting
// the patient to reposition rather than for gating individual samples.
func FacingScore(f *detector.Frame) float64 {
	if f == nil || len(f.Points) != detector.NumLandmarks {
		return 0
	}
	wrist := f.Points[detector.Wrist]
	normal := geom.PlaneNormal(
		wrist.VecTo(f.Points[detector.IndexMCP]),
		wrist.VecTo(f.Points[detector.PinkyMCP]),
	)
	if normal == (r3.Vector{}) {
		return 0
	}
	return geom.RoundTo(math.Abs(normal.Z), roundPlaces)
}
