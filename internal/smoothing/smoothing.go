// Package smoothing flattens frame-to-frame jitter in angle readings with
// a short moving average per channel.
package smoothing

import (
	"sync"

	"github.com/nmehta/gonio/internal/angle"
	"github.com/nmehta/gonio/internal/geom"
)

// DefaultMaxHistory is the window length used when none is configured.
// Five frames at 30 FPS is a sixth of a second: enough to settle detector
// jitter without visibly lagging deliberate motion.
const DefaultMaxHistory = 5

// Smoother keeps a bounded history of degree readings per channel and
// serves their moving average. Degrees are smoothed; confidence and
// validity always come from the current frame, so a stale average can
// never dress up a bad detection. Safe for concurrent use.
type Smoother struct {
	mu         sync.Mutex
	maxHistory int
	history    map[angle.Channel][]float64
}

// New returns a smoother with the given window length. Values <= 0 fall
// back to DefaultMaxHistory.
func New(maxHistory int) *Smoother {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Smoother{
		maxHistory: maxHistory,
		history:    make(map[angle.Channel][]float64),
	}
}

// Push appends a degree reading to the channel's history, evicting the
// oldest reading once the window is full.
func (s *Smoother) Push(ch angle.Channel, degrees float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[ch], degrees)
	if len(h) > s.maxHistory {
		h = h[len(h)-s.maxHistory:]
	}
	s.history[ch] = h
}

// Read returns the channel's moving average. The second return is false
// when the channel has no history.
func (s *Smoother) Read(ch angle.Channel) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.history[ch]
	if len(h) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range h {
		sum += v
	}
	return geom.RoundTo(sum/float64(len(h)), 2), true
}

// Reset clears one channel's history. Used when a channel's motion
// direction flips and averaging across the flip would be misleading.
func (s *Smoother) Reset(ch angle.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, ch)
}

// ResetAll clears every channel. Called on hand loss and at session
// boundaries so history never bleeds across gaps.
func (s *Smoother) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[angle.Channel][]float64)
}

// Apply pushes the measurement's degree readings and returns a copy with
// each channel's degrees replaced by its moving average. The input is not
// mutated.
func (s *Smoother) Apply(m *angle.Measurement) *angle.Measurement {
	if m == nil {
		return nil
	}

	out := *m
	for _, ch := range angle.Channels() {
		sample := m.Sample(ch)
		s.Push(ch, sample.Degrees)
		if avg, ok := s.Read(ch); ok {
			sample.Degrees = avg
			out.SetSample(ch, sample)
		}
	}
	return &out
}
