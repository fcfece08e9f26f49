package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	frames []Frame
	script [][]Frame
	err    error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames sets the landmark frames that will be returned by Detect.
func (m *MockDetector) SetFrames(frames []Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
}

// SetScript queues per-call detection results: each Detect pops one cycle,
// so an empty cycle replays a missed detection. After the script runs out
// Detect falls back to the static frames.
func (m *MockDetector) SetScript(cycles [][]Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = cycles
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured frames or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		cycle := m.script[0]
		m.script = m.script[1:]
		return cycle, nil
	}
	return m.frames, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// newPoseFrame allocates an empty right-hand frame for the pose builders.
func newPoseFrame() Frame {
	return Frame{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
}

// FlatHandFrame returns a synthetic neutral pose: a flat hand seen from the
// side with the wrist and all four finger MCPs on the same horizontal line
// and the MCP X positions symmetric about the wrist. All four wrist angles
// read zero for this pose.
func FlatHandFrame() Frame {
	f := newPoseFrame()

	f.Points[Wrist] = Point3D{X: 0.50, Y: 0.50, Z: 0.0}

	f.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.56, Z: 0.0}
	f.Points[ThumbMCP] = Point3D{X: 0.42, Y: 0.60, Z: 0.0}
	f.Points[ThumbIP] = Point3D{X: 0.39, Y: 0.63, Z: 0.0}
	f.Points[ThumbTip] = Point3D{X: 0.36, Y: 0.66, Z: 0.0}

	f.Points[IndexMCP] = Point3D{X: 0.40, Y: 0.50, Z: 0.0}
	f.Points[IndexPIP] = Point3D{X: 0.36, Y: 0.50, Z: 0.0}
	f.Points[IndexDIP] = Point3D{X: 0.33, Y: 0.50, Z: 0.0}
	f.Points[IndexTip] = Point3D{X: 0.30, Y: 0.50, Z: 0.0}

	f.Points[MiddleMCP] = Point3D{X: 0.45, Y: 0.50, Z: 0.0}
	f.Points[MiddlePIP] = Point3D{X: 0.41, Y: 0.50, Z: 0.0}
	f.Points[MiddleDIP] = Point3D{X: 0.37, Y: 0.50, Z: 0.0}
	f.Points[MiddleTip] = Point3D{X: 0.33, Y: 0.50, Z: 0.0}

	f.Points[RingMCP] = Point3D{X: 0.55, Y: 0.50, Z: 0.0}
	f.Points[RingPIP] = Point3D{X: 0.59, Y: 0.50, Z: 0.0}
	f.Points[RingDIP] = Point3D{X: 0.62, Y: 0.50, Z: 0.0}
	f.Points[RingTip] = Point3D{X: 0.65, Y: 0.50, Z: 0.0}

	f.Points[PinkyMCP] = Point3D{X: 0.60, Y: 0.50, Z: 0.0}
	f.Points[PinkyPIP] = Point3D{X: 0.64, Y: 0.50, Z: 0.0}
	f.Points[PinkyDIP] = Point3D{X: 0.67, Y: 0.50, Z: 0.0}
	f.Points[PinkyTip] = Point3D{X: 0.70, Y: 0.50, Z: 0.0}

	return f
}

// PalmarFlexedFrame returns a side-view pose with the hand bent toward the
// palm: the finger MCPs sit 0.2 below the wrist and the middle fingertip
// dips further, engaging the fingertip correction.
func PalmarFlexedFrame() Frame {
	f := newPoseFrame()

	f.Points[Wrist] = Point3D{X: 0.30, Y: 0.50, Z: 0.0}

	f.Points[ThumbCMC] = Point3D{X: 0.38, Y: 0.55, Z: 0.0}
	f.Points[ThumbMCP] = Point3D{X: 0.44, Y: 0.58, Z: 0.0}
	f.Points[ThumbIP] = Point3D{X: 0.48, Y: 0.62, Z: 0.0}
	f.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.66, Z: 0.0}

	f.Points[IndexMCP] = Point3D{X: 0.48, Y: 0.70, Z: 0.0}
	f.Points[IndexPIP] = Point3D{X: 0.50, Y: 0.74, Z: 0.0}
	f.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.77, Z: 0.0}
	f.Points[IndexTip] = Point3D{X: 0.53, Y: 0.80, Z: 0.0}

	f.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.70, Z: 0.0}
	f.Points[MiddlePIP] = Point3D{X: 0.52, Y: 0.75, Z: 0.0}
	f.Points[MiddleDIP] = Point3D{X: 0.54, Y: 0.78, Z: 0.0}
	f.Points[MiddleTip] = Point3D{X: 0.55, Y: 0.78, Z: 0.0}

	f.Points[RingMCP] = Point3D{X: 0.52, Y: 0.70, Z: 0.0}
	f.Points[RingPIP] = Point3D{X: 0.54, Y: 0.74, Z: 0.0}
	f.Points[RingDIP] = Point3D{X: 0.56, Y: 0.77, Z: 0.0}
	f.Points[RingTip] = Point3D{X: 0.57, Y: 0.80, Z: 0.0}

	f.Points[PinkyMCP] = Point3D{X: 0.54, Y: 0.70, Z: 0.0}
	f.Points[PinkyPIP] = Point3D{X: 0.56, Y: 0.73, Z: 0.0}
	f.Points[PinkyDIP] = Point3D{X: 0.57, Y: 0.75, Z: 0.0}
	f.Points[PinkyTip] = Point3D{X: 0.58, Y: 0.77, Z: 0.0}

	return f
}

// DorsalFlexedFrame returns a side-view pose with the hand bent toward the
// back of the hand: the finger MCPs sit 0.2 above the wrist.
func DorsalFlexedFrame() Frame {
	f := newPoseFrame()

	f.Points[Wrist] = Point3D{X: 0.30, Y: 0.50, Z: 0.0}

	f.Points[ThumbCMC] = Point3D{X: 0.38, Y: 0.45, Z: 0.0}
	f.Points[ThumbMCP] = Point3D{X: 0.44, Y: 0.42, Z: 0.0}
	f.Points[ThumbIP] = Point3D{X: 0.48, Y: 0.38, Z: 0.0}
	f.Points[ThumbTip] = Point3D{X: 0.51, Y: 0.34, Z: 0.0}

	f.Points[IndexMCP] = Point3D{X: 0.48, Y: 0.30, Z: 0.0}
	f.Points[IndexPIP] = Point3D{X: 0.50, Y: 0.26, Z: 0.0}
	f.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.23, Z: 0.0}
	f.Points[IndexTip] = Point3D{X: 0.53, Y: 0.20, Z: 0.0}

	f.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.30, Z: 0.0}
	f.Points[MiddlePIP] = Point3D{X: 0.52, Y: 0.25, Z: 0.0}
	f.Points[MiddleDIP] = Point3D{X: 0.54, Y: 0.22, Z: 0.0}
	f.Points[MiddleTip] = Point3D{X: 0.55, Y: 0.22, Z: 0.0}

	f.Points[RingMCP] = Point3D{X: 0.52, Y: 0.30, Z: 0.0}
	f.Points[RingPIP] = Point3D{X: 0.54, Y: 0.26, Z: 0.0}
	f.Points[RingDIP] = Point3D{X: 0.56, Y: 0.23, Z: 0.0}
	f.Points[RingTip] = Point3D{X: 0.57, Y: 0.20, Z: 0.0}

	f.Points[PinkyMCP] = Point3D{X: 0.54, Y: 0.30, Z: 0.0}
	f.Points[PinkyPIP] = Point3D{X: 0.56, Y: 0.27, Z: 0.0}
	f.Points[PinkyDIP] = Point3D{X: 0.57, Y: 0.25, Z: 0.0}
	f.Points[PinkyTip] = Point3D{X: 0.58, Y: 0.23, Z: 0.0}

	return f
}

// UlnarDeviatedFrame returns a frontal fingers-up pose tilted toward the
// little-finger side: the palm center sits left of the wrist in image
// space.
func UlnarDeviatedFrame() Frame {
	f := newPoseFrame()

	f.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	f.Points[ThumbCMC] = Point3D{X: 0.48, Y: 0.72, Z: 0.0}
	f.Points[ThumbMCP] = Point3D{X: 0.44, Y: 0.66, Z: 0.0}
	f.Points[ThumbIP] = Point3D{X: 0.42, Y: 0.61, Z: 0.0}
	f.Points[ThumbTip] = Point3D{X: 0.40, Y: 0.57, Z: 0.0}

	f.Points[IndexMCP] = Point3D{X: 0.34, Y: 0.58, Z: 0.0}
	f.Points[IndexPIP] = Point3D{X: 0.32, Y: 0.48, Z: 0.0}
	f.Points[IndexDIP] = Point3D{X: 0.31, Y: 0.41, Z: 0.0}
	f.Points[IndexTip] = Point3D{X: 0.30, Y: 0.35, Z: 0.0}

	f.Points[MiddleMCP] = Point3D{X: 0.38, Y: 0.57, Z: 0.0}
	f.Points[MiddlePIP] = Point3D{X: 0.36, Y: 0.46, Z: 0.0}
	f.Points[MiddleDIP] = Point3D{X: 0.35, Y: 0.38, Z: 0.0}
	f.Points[MiddleTip] = Point3D{X: 0.35, Y: 0.31, Z: 0.0}

	f.Points[RingMCP] = Point3D{X: 0.42, Y: 0.58, Z: 0.0}
	f.Points[RingPIP] = Point3D{X: 0.41, Y: 0.47, Z: 0.0}
	f.Points[RingDIP] = Point3D{X: 0.40, Y: 0.40, Z: 0.0}
	f.Points[RingTip] = Point3D{X: 0.40, Y: 0.34, Z: 0.0}

	f.Points[PinkyMCP] = Point3D{X: 0.46, Y: 0.60, Z: 0.0}
	f.Points[PinkyPIP] = Point3D{X: 0.45, Y: 0.51, Z: 0.0}
	f.Points[PinkyDIP] = Point3D{X: 0.45, Y: 0.45, Z: 0.0}
	f.Points[PinkyTip] = Point3D{X: 0.44, Y: 0.40, Z: 0.0}

	return f
}

// RadialDeviatedFrame returns the mirror image of UlnarDeviatedFrame: the
// palm center sits right of the wrist, reading as radial deviation.
func RadialDeviatedFrame() Frame {
	return mirrorX(UlnarDeviatedFrame())
}

// ThumbFlexedFrame returns a frontal pose with the thumb folded across the
// palm, bending the thumb MCP joint to roughly a right angle.
func ThumbFlexedFrame() Frame {
	f := thumbBaseFrame()

	f.Points[ThumbCMC] = Point3D{X: 0.44, Y: 0.72, Z: 0.0}
	f.Points[ThumbMCP] = Point3D{X: 0.38, Y: 0.66, Z: 0.0}
	f.Points[ThumbIP] = Point3D{X: 0.42, Y: 0.62, Z: 0.0}
	f.Points[ThumbTip] = Point3D{X: 0.47, Y: 0.60, Z: 0.0}

	return f
}

// ThumbAbductedFrame returns a frontal pose with the thumb splayed wide of
// the palm, opening the angle between the thumb and index columns.
func ThumbAbductedFrame() Frame {
	f := thumbBaseFrame()

	f.Points[ThumbCMC] = Point3D{X: 0.44, Y: 0.72, Z: 0.0}
	f.Points[ThumbMCP] = Point3D{X: 0.30, Y: 0.68, Z: 0.0}
	f.Points[ThumbIP] = Point3D{X: 0.24, Y: 0.64, Z: 0.0}
	f.Points[ThumbTip] = Point3D{X: 0.19, Y: 0.61, Z: 0.0}

	return f
}

// thumbBaseFrame lays out the wrist and the four fingers for the thumb
// poses; the callers position the thumb column.
func thumbBaseFrame() Frame {
	f := newPoseFrame()

	f.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	f.Points[IndexMCP] = Point3D{X: 0.42, Y: 0.55, Z: 0.0}
	f.Points[IndexPIP] = Point3D{X: 0.41, Y: 0.47, Z: 0.0}
	f.Points[IndexDIP] = Point3D{X: 0.40, Y: 0.40, Z: 0.0}
	f.Points[IndexTip] = Point3D{X: 0.40, Y: 0.34, Z: 0.0}

	f.Points[MiddleMCP] = Point3D{X: 0.47, Y: 0.54, Z: 0.0}
	f.Points[MiddlePIP] = Point3D{X: 0.47, Y: 0.45, Z: 0.0}
	f.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.37, Z: 0.0}
	f.Points[MiddleTip] = Point3D{X: 0.47, Y: 0.30, Z: 0.0}

	f.Points[RingMCP] = Point3D{X: 0.52, Y: 0.55, Z: 0.0}
	f.Points[RingPIP] = Point3D{X: 0.53, Y: 0.47, Z: 0.0}
	f.Points[RingDIP] = Point3D{X: 0.53, Y: 0.40, Z: 0.0}
	f.Points[RingTip] = Point3D{X: 0.54, Y: 0.34, Z: 0.0}

	f.Points[PinkyMCP] = Point3D{X: 0.57, Y: 0.58, Z: 0.0}
	f.Points[PinkyPIP] = Point3D{X: 0.58, Y: 0.51, Z: 0.0}
	f.Points[PinkyDIP] = Point3D{X: 0.59, Y: 0.45, Z: 0.0}
	f.Points[PinkyTip] = Point3D{X: 0.60, Y: 0.40, Z: 0.0}

	return f
}

// mirrorX reflects every landmark about the wrist's vertical axis.
func mirrorX(f Frame) Frame {
	axis := f.Points[Wrist].X
	for i, p := range f.Points {
		f.Points[i] = Point3D{X: 2*axis - p.X, Y: p.Y, Z: p.Z}
	}
	return f
}
