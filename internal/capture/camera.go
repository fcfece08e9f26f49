// Package capture provides camera capture and motion grading using GoCV
// (OpenCV). The camera feeds the landmark detector; the motion detector
// drives the idle/active frame-rate switch and the stability signal.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture defaults. The pipeline opens at the idle rate and raises it to
// the measurement rate when motion or a session demands it.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when reading from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera not open")

// Camera is the capture source the pipeline reads from. Webcams and
// recorded clips both satisfy it.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// webcam reads from a physical device through GoCV.
type webcam struct {
	deviceID int

	mu  sync.Mutex
	dev *gocv.VideoCapture
	fps int
}

// NewCamera creates a camera on the given device, starting at the idle
// capture rate.
func NewCamera(deviceID int) Camera {
	return &webcam{deviceID: deviceID, fps: DefaultFPS}
}

// Open starts capture at 640x480. Opening an already open camera is a
// no-op.
func (w *webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dev != nil {
		return nil
	}

	dev, err := gocv.OpenVideoCapture(w.deviceID)
	if err != nil {
		return err
	}

	dev.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	dev.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	dev.Set(gocv.VideoCaptureFPS, float64(w.fps))

	w.dev = dev
	return nil
}

// Close releases the device.
func (w *webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dev == nil {
		return nil
	}

	err := w.dev.Close()
	w.dev = nil
	return err
}

// ReadFrame grabs one frame. The caller owns the returned Mat and must
// close it.
func (w *webcam) ReadFrame() (*gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dev == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := w.dev.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("camera read failed")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("empty frame from camera")
	}

	return &mat, nil
}

// SetFPS changes the capture rate. Zero and negative rates are ignored.
func (w *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.fps = fps
	if w.dev != nil {
		w.dev.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS reports the configured capture rate.
func (w *webcam) FPS() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fps
}

// IsOpen reports whether the device is capturing.
func (w *webcam) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dev != nil
}
