package smoothing

import (
	"testing"

	"github.com/nmehta/gonio/internal/angle"
)

const epsilon = 1e-9

func TestSmoother_ReadEmpty(t *testing.T) {
	s := New(5)
	if _, ok := s.Read(angle.WristPalmarFlexion); ok {
		t.Error("expected no reading from an empty channel")
	}
}

func TestSmoother_MovingAverage(t *testing.T) {
	s := New(5)

	s.Push(angle.WristPalmarFlexion, 10)
	s.Push(angle.WristPalmarFlexion, 20)
	s.Push(angle.WristPalmarFlexion, 30)

	got, ok := s.Read(angle.WristPalmarFlexion)
	if !ok {
		t.Fatal("expected a reading")
	}
	if diff := got - 20; diff > epsilon || diff < -epsilon {
		t.Errorf("expected 20, got %v", got)
	}
}

func TestSmoother_EvictsOldest(t *testing.T) {
	s := New(5)

	for _, v := range []float64{10, 20, 30, 40, 50, 60} {
		s.Push(angle.ThumbFlexion, v)
	}

	got, ok := s.Read(angle.ThumbFlexion)
	if !ok {
		t.Fatal("expected a reading")
	}
	// Window holds 20..60 after the first value is evicted.
	if diff := got - 40; diff > epsilon || diff < -epsilon {
		t.Errorf("expected 40, got %v", got)
	}
}

func TestSmoother_ChannelsAreIndependent(t *testing.T) {
	s := New(5)

	s.Push(angle.WristUlnarDeviation, 15)
	s.Push(angle.WristRadialDeviation, 45)

	if got, _ := s.Read(angle.WristUlnarDeviation); got != 15 {
		t.Errorf("expected 15, got %v", got)
	}
	if got, _ := s.Read(angle.WristRadialDeviation); got != 45 {
		t.Errorf("expected 45, got %v", got)
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := New(5)

	s.Push(angle.ThumbAbduction, 30)
	s.Push(angle.ThumbAdduction, 10)
	s.Reset(angle.ThumbAbduction)

	if _, ok := s.Read(angle.ThumbAbduction); ok {
		t.Error("expected reset channel to be empty")
	}
	if _, ok := s.Read(angle.ThumbAdduction); !ok {
		t.Error("expected untouched channel to keep its history")
	}
}

func TestSmoother_ResetAll(t *testing.T) {
	s := New(5)

	for _, ch := range angle.Channels() {
		s.Push(ch, 25)
	}
	s.ResetAll()

	for _, ch := range angle.Channels() {
		if _, ok := s.Read(ch); ok {
			t.Errorf("expected channel %s to be empty after ResetAll", ch)
		}
	}
}

func TestSmoother_DefaultWindow(t *testing.T) {
	s := New(0)
	for i := 0; i < 10; i++ {
		s.Push(angle.WristDorsalFlexion, float64(i*10))
	}
	// Default window of five keeps 50..90.
	got, _ := s.Read(angle.WristDorsalFlexion)
	if diff := got - 70; diff > epsilon || diff < -epsilon {
		t.Errorf("expected 70, got %v", got)
	}
}

func TestSmoother_Apply(t *testing.T) {
	s := New(5)

	first := &angle.Measurement{}
	first.SetSample(angle.WristPalmarFlexion, angle.Sample{Degrees: 10, Confidence: 0.9, Valid: true})
	second := &angle.Measurement{}
	second.SetSample(angle.WristPalmarFlexion, angle.Sample{Degrees: 30, Confidence: 0.4, Valid: true})

	s.Apply(first)
	got := s.Apply(second)

	sample := got.Sample(angle.WristPalmarFlexion)
	if diff := sample.Degrees - 20; diff > epsilon || diff < -epsilon {
		t.Errorf("expected smoothed 20 degrees, got %v", sample.Degrees)
	}
	// Confidence and validity always reflect the current frame.
	if sample.Confidence != 0.4 {
		t.Errorf("expected current-frame confidence 0.4, got %v", sample.Confidence)
	}
	if !sample.Valid {
		t.Error("expected current-frame validity to ride through")
	}

	// The input measurement is untouched.
	if second.Sample(angle.WristPalmarFlexion).Degrees != 30 {
		t.Errorf("expected input to keep 30 degrees, got %v", second.Sample(angle.WristPalmarFlexion).Degrees)
	}
}

func TestSmoother_ApplyNil(t *testing.T) {
	s := New(5)
	if got := s.Apply(nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
