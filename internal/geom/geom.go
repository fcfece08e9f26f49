// Package geom provides the guarded vector primitives used by the angle
// extraction pipeline.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// MinVectorNorm is the magnitude below which a vector carries no usable
// direction. Every normalization and angle computation guards against it.
const MinVectorNorm = 1e-10

// IsDegenerate reports whether v is too short to define a direction.
func IsDegenerate(v r3.Vector) bool {
	return v.Norm() < MinVectorNorm
}

// SafeNormalize returns the unit vector of v, or the zero vector when v is
// degenerate.
func SafeNormalize(v r3.Vector) r3.Vector {
	n := v.Norm()
	if n < MinVectorNorm {
		return r3.Vector{}
	}
	return v.Mul(1 / n)
}

// AngleDeg returns the angle between v1 and v2 in degrees. The cosine is
// clamped to [-1, 1] to absorb floating-point drift. Both inputs must be
// non-degenerate; callers check with IsDegenerate first.
func AngleDeg(v1, v2 r3.Vector) float64 {
	cos := v1.Dot(v2) / (v1.Norm() * v2.Norm())
	return math.Acos(Clamp(cos, -1, 1)) * 180 / math.Pi
}

// PlaneNormal returns the unit normal of the plane spanned by v1 and v2, or
// the zero vector when the inputs are parallel or degenerate.
func PlaneNormal(v1, v2 r3.Vector) r3.Vector {
	return SafeNormalize(v1.Cross(v2))
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
