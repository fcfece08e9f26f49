package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if md.threshold != 1.0 {
		t.Errorf("threshold = %f, want 1.0", md.threshold)
	}
	if !md.baseline.Empty() {
		t.Error("detector should have no baseline before the first frame")
	}
}

func uniformFrame(t *testing.T, value float64) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(value, value, value, 0))
	return frame
}

func TestMotionDetector_Detect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	black := uniformFrame(t, 0)
	defer black.Close()
	white := uniformFrame(t, 255)
	defer white.Close()

	t.Run("first frame seeds the baseline", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		detected, changePercent := md.Detect(&black)
		if detected {
			t.Error("first frame should never read as motion")
		}
		if changePercent != 0 {
			t.Errorf("first frame changePercent = %f, want 0", changePercent)
		}
	})

	t.Run("identical frames stay quiet", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		detected, changePercent := md.Detect(&black)
		if detected {
			t.Errorf("identical frames read as motion, changePercent = %f", changePercent)
		}
	})

	t.Run("full frame change trips the switch", func(t *testing.T) {
		md := NewMotionDetector(1.0)
		defer md.Close()

		md.Detect(&black)
		detected, changePercent := md.Detect(&white)
		if !detected {
			t.Errorf("black to white should read as motion, changePercent = %f", changePercent)
		}
		if changePercent != 100.0 {
			t.Errorf("changePercent = %f, want 100 for a full frame change", changePercent)
		}
	})

	t.Run("change at the threshold does not trip", func(t *testing.T) {
		md := NewMotionDetector(100.0)
		defer md.Close()

		md.Detect(&black)
		detected, _ := md.Detect(&white)
		if detected {
			t.Error("a change no larger than the threshold should stay quiet")
		}
	})
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := uniformFrame(t, 0)
	defer frame.Close()

	md.Detect(&frame)
	if md.baseline.Empty() {
		t.Error("detector should hold a baseline after the first Detect")
	}

	md.Reset()
	if !md.baseline.Empty() {
		t.Error("Reset should drop the baseline")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	tests := []struct {
		name string
		set  float64
		want float64
	}{
		{name: "raise", set: 5.0, want: 5.0},
		{name: "lower", set: 0.5, want: 0.5},
		{name: "zero is ignored", set: 0, want: 1.0},
		{name: "negative is ignored", set: -1.0, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(1.0)
			defer md.Close()

			md.SetThreshold(tt.set)
			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
		})
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	md.Close()
	md.Close()
}

func TestMotionDetector_Detect_AfterClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	md := NewMotionDetector(1.0)

	frame := uniformFrame(t, 0)
	defer frame.Close()

	md.Detect(&frame)
	md.Close()

	// The detector reseeds after Close, so the next frame is a baseline
	detected, _ := md.Detect(&frame)
	if detected {
		t.Error("first frame after Close should never read as motion")
	}
	md.Close()
}

func TestMotionDetector_Stability_BeforeFirstFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	// No evidence of stillness yet
	if s := md.Stability(); s != 0 {
		t.Errorf("Stability() = %f before first frame, want 0", s)
	}
}

func TestMotionDetector_Stability(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := uniformFrame(t, 0)
	defer black.Close()
	white := uniformFrame(t, 255)
	defer white.Close()

	// Identical frames read as fully stable
	md.Detect(&black)
	md.Detect(&black)
	if s := md.Stability(); s != 1.0 {
		t.Errorf("Stability() = %f for identical frames, want 1.0", s)
	}

	// A full-frame change reads as fully unstable
	md.Detect(&white)
	if s := md.Stability(); s != 0 {
		t.Errorf("Stability() = %f after full-frame change, want 0", s)
	}
}

func TestMotionDetector_Stability_ResetClears(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that needs OpenCV")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := uniformFrame(t, 0)
	defer frame.Close()

	md.Detect(&frame)
	md.Detect(&frame)
	md.Reset()

	if s := md.Stability(); s != 0 {
		t.Errorf("Stability() = %f after Reset, want 0", s)
	}
}
