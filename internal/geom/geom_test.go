package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

const epsilon = 1e-9

func TestIsDegenerate(t *testing.T) {
	t.Run("zero vector is degenerate", func(t *testing.T) {
		if !IsDegenerate(r3.Vector{}) {
			t.Error("expected zero vector to be degenerate")
		}
	})

	t.Run("tiny vector below threshold is degenerate", func(t *testing.T) {
		if !IsDegenerate(r3.Vector{X: 1e-11}) {
			t.Error("expected vector below MinVectorNorm to be degenerate")
		}
	})

	t.Run("unit vector is not degenerate", func(t *testing.T) {
		if IsDegenerate(r3.Vector{X: 1}) {
			t.Error("expected unit vector to not be degenerate")
		}
	})
}

func TestSafeNormalize(t *testing.T) {
	t.Run("returns zero vector for degenerate input", func(t *testing.T) {
		got := SafeNormalize(r3.Vector{X: 1e-12, Y: 1e-12})
		if got != (r3.Vector{}) {
			t.Errorf("expected zero vector, got %v", got)
		}
	})

	t.Run("returns unit vector", func(t *testing.T) {
		got := SafeNormalize(r3.Vector{X: 3, Y: 4})
		if math.Abs(got.Norm()-1) > epsilon {
			t.Errorf("expected unit norm, got %v", got.Norm())
		}
		if math.Abs(got.X-0.6) > epsilon || math.Abs(got.Y-0.8) > epsilon {
			t.Errorf("expected (0.6, 0.8, 0), got %v", got)
		}
	})
}

func TestAngleDeg(t *testing.T) {
	tests := []struct {
		name string
		v1   r3.Vector
		v2   r3.Vector
		want float64
	}{
		{"perpendicular", r3.Vector{X: 1}, r3.Vector{Y: 1}, 90},
		{"parallel", r3.Vector{X: 1}, r3.Vector{X: 2}, 0},
		{"opposite", r3.Vector{X: 1}, r3.Vector{X: -3}, 180},
		{"45 degrees", r3.Vector{X: 1}, r3.Vector{X: 1, Y: 1}, 45},
		{"3d right angle", r3.Vector{X: 1, Y: 1}, r3.Vector{X: 1, Y: -1}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleDeg(tt.v1, tt.v2)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %v degrees, got %v", tt.want, got)
			}
		})
	}

	t.Run("clamps cosine drift", func(t *testing.T) {
		// Parallel vectors whose dot product can drift just above 1.
		v := r3.Vector{X: 0.1, Y: 0.2, Z: 0.3}
		got := AngleDeg(v, v.Mul(7))
		if math.IsNaN(got) {
			t.Fatal("expected finite angle, got NaN")
		}
		if math.Abs(got) > 1e-6 {
			t.Errorf("expected 0 degrees, got %v", got)
		}
	})
}

func TestPlaneNormal(t *testing.T) {
	t.Run("xy plane has z normal", func(t *testing.T) {
		got := PlaneNormal(r3.Vector{X: 1}, r3.Vector{Y: 1})
		want := r3.Vector{Z: 1}
		if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon || math.Abs(got.Z-want.Z) > epsilon {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("parallel vectors yield zero normal", func(t *testing.T) {
		got := PlaneNormal(r3.Vector{X: 1}, r3.Vector{X: 5})
		if got != (r3.Vector{}) {
			t.Errorf("expected zero vector, got %v", got)
		}
	})
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name       string
		x, lo, hi  float64
		want       float64
	}{
		{"below range", -2, -1, 1, -1},
		{"above range", 1.0000001, -1, 1, 1},
		{"inside range", 0.5, -1, 1, 0.5},
		{"at lower bound", -1, -1, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		places int
		want   float64
	}{
		{"two places", 12.3456, 2, 12.35},
		{"rounds half up", 0.125, 2, 0.13},
		{"negative value", -3.14159, 2, -3.14},
		{"zero places", 2.7, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundTo(tt.x, tt.places); math.Abs(got-tt.want) > epsilon {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
