package angle

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/nmehta/gonio/internal/detector"
	"github.com/nmehta/gonio/internal/geom"
)

// WristSet holds the four wrist angles of one frame. At most one of the
// flexion pair and at most one of the deviation pair is non-zero.
type WristSet struct {
	PalmarFlexion   Sample `json:"palmar_flexion"`
	DorsalFlexion   Sample `json:"dorsal_flexion"`
	UlnarDeviation  Sample `json:"ulnar_deviation"`
	RadialDeviation Sample `json:"radial_deviation"`
}

// wristAngles computes flexion and deviation for a validated frame.
// Flexion reads the hand side-on: the vertical drop from wrist to knuckle
// line. Deviation reads the hand face-on: the lateral tilt of the
// wrist-to-palm axis.
func wristAngles(f *detector.Frame, cfg Config) WristSet {
	wrist := f.Points[detector.Wrist]
	palm := palmCenter(f)

	conf := math.Min(1, wrist.VecTo(palm).Norm()/cfg.ReferenceLength)

	var set WristSet
	set.PalmarFlexion = flexionSample(f, cfg, wrist, palm, conf, false)
	set.DorsalFlexion = flexionSample(f, cfg, wrist, palm, conf, true)
	set.UlnarDeviation, set.RadialDeviation = deviationSamples(cfg, wrist, palm)
	return set
}

// palmCenter is the mean of the four non-thumb knuckle landmarks.
func palmCenter(f *detector.Frame) detector.Point3D {
	mcps := [4]detector.Point3D{
		f.Points[detector.IndexMCP],
		f.Points[detector.MiddleMCP],
		f.Points[detector.RingMCP],
		f.Points[detector.PinkyMCP],
	}
	var c detector.Point3D
	for _, p := range mcps {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	c.X /= 4
	c.Y /= 4
	c.Z /= 4
	return c
}

// flexionSample measures one flexion direction. In image space Y grows
// downward, so knuckles below the wrist mean palmar flexion and knuckles
// above mean dorsal; the dorsal pass flips the sign and uses its own
// correction coefficient.
func flexionSample(f *detector.Frame, cfg Config, wrist, palm detector.Point3D, conf float64, dorsal bool) Sample {
	yDiff := palm.Y - wrist.Y
	coeff := cfg.PalmarCorrection
	if dorsal {
		yDiff = -yDiff
		coeff = cfg.DorsalCorrection
	}

	// Within the gate the wrist is straight as far as this direction is
	// concerned.
	if yDiff <= cfg.FlexionGate {
		return newSample(0, conf, cfg)
	}

	horizontal := math.Abs(palm.X - wrist.X)
	if horizontal < cfg.MinHorizontal {
		horizontal = cfg.MinHorizontal
	}
	degrees := math.Atan2(yDiff, horizontal) * 180 / math.Pi

	// Deep flexion curls the middle fingertip past the knuckle line
	// while the knuckle drop itself saturates. Credit the overshoot back
	// as extra degrees.
	tipDev := f.Points[detector.MiddleTip].Y - palm.Y
	if dorsal {
		tipDev = -tipDev
	}
	if tipDev > cfg.TipGate {
		degrees += tipDev * coeff
	}

	if cfg.MaxFlexion > 0 && degrees > cfg.MaxFlexion {
		degrees = cfg.MaxFlexion
	}
	return newSample(degrees, conf, cfg)
}

// deviationSamples measures the lateral wrist tilt. The palm-to-wrist
// vector of a neutral upright hand points straight down in image space;
// the angle it makes with straight up, remapped so neutral reads zero, is
// the deviation magnitude. Direction is picked by deviationDirection.
func deviationSamples(cfg Config, wrist, palm detector.Point3D) (ulnar, radial Sample) {
	palmToWrist := palm.VecTo(wrist)
	if geom.IsDegenerate(palmToWrist) {
		return Sample{}, Sample{}
	}

	conf := math.Min(1, palmToWrist.Norm()/cfg.ReferenceLength)

	raw := geom.AngleDeg(palmToWrist, r3.Vector{Y: -1})
	degrees := 180 - raw

	zero := newSample(0, conf, cfg)
	switch deviationDirection(palm.X - wrist.X) {
	case deviationUlnar:
		return newSample(degrees, conf, cfg), zero
	case deviationRadial:
		return zero, newSample(degrees, conf, cfg)
	default:
		return zero, zero
	}
}

type deviationDir int

const (
	deviationNone deviationDir = iota
	deviationUlnar
	deviationRadial
)

// deviationDirection resolves which way the wrist is tilted from the
// lateral palm offset (palm center X minus wrist X, image space). A palm
// center left of the wrist reads as ulnar, right as radial. The rule is
// applied to both hands alike; the camera mirrors one handedness, and any
// future per-hand correction belongs here and nowhere else.
func deviationDirection(lateralOffset float64) deviationDir {
	switch {
	case lateralOffset < 0:
		return deviationUlnar
	case lateralOffset > 0:
		return deviationRadial
	default:
		return deviationNone
	}
}
