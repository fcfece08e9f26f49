package angle

import (
	"testing"

	"github.com/nmehta/gonio/internal/detector"
)

func TestThumbAngles_Neutral(t *testing.T) {
	f := detector.FlatHandFrame()
	set := thumbAngles(&f, DefaultConfig())

	// The flat pose bends the thumb MCP to a straight 180 degrees, 20
	// past the neutral pivot, and opens the thumb-to-index angle to a
	// right angle, 45 past its pivot.
	assertSample(t, "flexion", set.Flexion, 0, 0.42, true)
	assertSample(t, "extension", set.Extension, 20, 0.42, true)
	assertSample(t, "adduction", set.Adduction, 0, 0.57, true)
	assertSample(t, "abduction", set.Abduction, 45, 0.57, true)
}

func TestThumbAngles_Flexed(t *testing.T) {
	f := detector.ThumbFlexedFrame()
	set := thumbAngles(&f, DefaultConfig())

	// The folded thumb bends the MCP to a right angle, 70 short of the
	// pivot, and narrows the thumb-to-index opening below its pivot.
	assertSample(t, "flexion", set.Flexion, 70, 0.57, true)
	assertSample(t, "extension", set.Extension, 0, 0.57, true)
	assertSample(t, "adduction", set.Adduction, 6.71, 0.85, true)
	assertSample(t, "abduction", set.Abduction, 0, 0.85, true)
}

func TestThumbAngles_Abducted(t *testing.T) {
	f := detector.ThumbAbductedFrame()
	set := thumbAngles(&f, DefaultConfig())

	if set.Abduction.Degrees < 22 || set.Abduction.Degrees > 23 {
		t.Errorf("expected abduction near 22.3 degrees, got %v", set.Abduction.Degrees)
	}
	if !set.Abduction.Valid {
		t.Error("expected abduction sample to be valid")
	}
	assertSample(t, "adduction", set.Adduction, 0, 1.0, true)

	if set.Extension.Degrees < 2 || set.Extension.Degrees > 2.5 {
		t.Errorf("expected slight extension near 2.25 degrees, got %v", set.Extension.Degrees)
	}
	if set.Flexion.Degrees != 0 {
		t.Errorf("expected no flexion, got %v", set.Flexion.Degrees)
	}
}

func TestThumbAngles_DegenerateColumn(t *testing.T) {
	f := detector.FlatHandFrame()
	p := f.Points[detector.ThumbCMC]
	f.Points[detector.ThumbMCP] = p
	f.Points[detector.ThumbIP] = p

	set := thumbAngles(&f, DefaultConfig())
	assertSample(t, "flexion", set.Flexion, 0, 0, false)
	assertSample(t, "extension", set.Extension, 0, 0, false)
	assertSample(t, "adduction", set.Adduction, 0, 0, false)
	assertSample(t, "abduction", set.Abduction, 0, 0, false)
}

func TestThumbAngles_PivotOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThumbFlexPivot = 90
	cfg.ThumbAbductPivot = 60

	f := detector.ThumbFlexedFrame()
	set := thumbAngles(&f, cfg)

	// The folded thumb's raw bend sits exactly on the lowered pivot, so
	// neither direction registers.
	assertSample(t, "flexion", set.Flexion, 0, 0.57, true)
	assertSample(t, "extension", set.Extension, 0, 0.57, true)

	// The raised opening pivot turns the previous adduction reading into
	// a deeper one.
	assertSample(t, "adduction", set.Adduction, 21.71, 0.85, true)
}

func TestSplitByPivot(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		raw       Sample
		pivot     float64
		wantBelow float64
		wantAbove float64
		wantValid bool
		wantConf  float64
	}{
		{
			name:      "below pivot",
			raw:       Sample{Degrees: 100, Confidence: 0.8, Valid: true},
			pivot:     160,
			wantBelow: 60,
			wantAbove: 0,
			wantValid: true,
			wantConf:  0.8,
		},
		{
			name:      "above pivot",
			raw:       Sample{Degrees: 170, Confidence: 0.8, Valid: true},
			pivot:     160,
			wantBelow: 0,
			wantAbove: 10,
			wantValid: true,
			wantConf:  0.8,
		},
		{
			name:      "exactly at pivot",
			raw:       Sample{Degrees: 160, Confidence: 0.8, Valid: true},
			pivot:     160,
			wantBelow: 0,
			wantAbove: 0,
			wantValid: true,
			wantConf:  0.8,
		},
		{
			name:      "invalid raw yields zero split",
			raw:       Sample{Degrees: 40, Confidence: 0.2, Valid: false},
			pivot:     160,
			wantBelow: 0,
			wantAbove: 0,
			wantValid: false,
			wantConf:  0.2,
		},
		{
			name:      "degenerate raw yields zero split",
			raw:       Sample{},
			pivot:     160,
			wantBelow: 0,
			wantAbove: 0,
			wantValid: false,
			wantConf:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			below, above := splitByPivot(tt.raw, tt.pivot, cfg)
			assertSample(t, "below", below, tt.wantBelow, tt.wantConf, tt.wantValid)
			assertSample(t, "above", above, tt.wantAbove, tt.wantConf, tt.wantValid)
		})
	}
}
