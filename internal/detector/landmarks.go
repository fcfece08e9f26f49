// Package detector provides hand landmark detection interfaces and the
// landmark frame contract consumed by the measurement pipeline.
package detector

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r3"
)

// Indices into a landmark frame, in MediaPipe hand-landmarker order
// (https://developers.google.com/mediapipe/solutions/vision/hand_landmarker).
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// RequiredLandmarks are the indices that must carry finite coordinates for a
// frame to be measurable. The wrist, thumb CMC and the index/middle/pinky
// MCPs anchor every angle computation downstream.
var RequiredLandmarks = [...]int{Wrist, ThumbCMC, IndexMCP, MiddleMCP, PinkyMCP}

// Point3D represents a 3D point in normalized image space: x and y in
// roughly [0,1], z a relative depth with no fixed unit.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns the point as an r3 vector.
func (p Point3D) Vec() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// VecTo returns the vector from p to q.
func (p Point3D) VecTo(q Point3D) r3.Vector {
	return r3.Vector{X: q.X - p.X, Y: q.Y - p.Y, Z: q.Z - p.Z}
}

// Frame is the output of one detection cycle: the 21 ordered hand landmarks
// plus the detected handedness, the detector-reported score and the capture
// time. Points is a slice so that the landmark count can actually be wrong
// and caught by Validate.
type Frame struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
	CapturedAt time.Time `json:"captured_at"`
}

// Validate checks the frame's structural and numerical well-formedness.
// It returns nil when the frame holds exactly 21 landmarks and every
// required landmark has finite coordinates. Callers treat an invalid frame
// exactly like "no hand detected": zero angles, zero confidence, never a
// panic.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if len(f.Points) != NumLandmarks {
		return fmt.Errorf("expected %d landmarks, got %d", NumLandmarks, len(f.Points))
	}
	for _, idx := range RequiredLandmarks {
		p := f.Points[idx]
		if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
			return fmt.Errorf("landmark %d has a non-finite coordinate", idx)
		}
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Normalize returns a copy of the frame with the wrist at the origin and
// all points scaled so the wrist to middle-MCP distance is 1.0. Used by the
// positioning preview; the angle pipeline consumes raw image-space frames.
// Returns nil for a nil frame or one without the full 21 landmarks.
func (f *Frame) Normalize() *Frame {
	if f == nil || len(f.Points) != NumLandmarks {
		return nil
	}

	normalized := &Frame{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: f.Handedness,
		Score:      f.Score,
		CapturedAt: f.CapturedAt,
	}

	wrist := f.Points[Wrist]
	for i, p := range f.Points {
		normalized.Points[i] = Point3D{X: p.X - wrist.X, Y: p.Y - wrist.Y, Z: p.Z - wrist.Z}
	}

	scale := normalized.Points[MiddleMCP].Vec().Norm()
	if scale < 1e-10 {
		return normalized
	}

	for i := range normalized.Points {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
