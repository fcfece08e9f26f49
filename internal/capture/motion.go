package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/nmehta/gonio/internal/geom"
)

// Motion grading constants.
const (
	// GaussianBlurSize is the blur kernel width applied before frames are
	// differenced, so sensor noise does not register as change.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity difference that counts as
	// a changed pixel.
	DiffThreshold = 25
	// StabilityFullScale is the frame change percentage graded as fully
	// unstable.
	StabilityFullScale = 10.0
)

// MotionDetector grades frame-to-frame change. The pipeline uses the
// boolean result to switch between the idle and measurement capture rates,
// and the Stability grade as one input to the confidence blend.
type MotionDetector struct {
	mu         sync.Mutex
	threshold  float64
	baseline   gocv.Mat
	lastChange float64
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of pixels change between consecutive frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares a frame against the previous one and reports whether the
// changed-pixel percentage exceeds the threshold, along with the percentage
// itself. The first frame only seeds the baseline and never reads as motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if m.baseline.Empty() {
		blurred.CopyTo(&m.baseline)
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.baseline, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()
	changePercent := float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&m.baseline)
	m.lastChange = changePercent

	return changePercent > m.threshold, changePercent
}

// Stability grades how still the scene is on a 0 to 1 scale based on the
// last observed frame difference. 1 means no measurable motion; anything at
// or above StabilityFullScale percent change reads as 0. Before the first
// comparison there is no evidence of stillness and the grade is 0.
func (m *MotionDetector) Stability() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.baseline.Empty() {
		return 0
	}
	return geom.Clamp(1.0-m.lastChange/StabilityFullScale, 0, 1)
}

// Reset drops the baseline so the next frame starts a fresh comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// Close releases the retained frame buffer. The detector stays usable; a
// later Detect seeds a new baseline.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *MotionDetector) clearLocked() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.lastChange = 0
}

// SetThreshold changes the motion threshold percentage. Zero and negative
// values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
