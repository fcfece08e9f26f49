package angle

import "github.com/nmehta/gonio/internal/detector"

// Channel names one of the eight angles a measurement carries. Channel
// strings appear in the API, the database and exports, so they are stable
// identifiers, not display names.
type Channel string

const (
	WristPalmarFlexion   Channel = "wrist_palmar_flexion"
	WristDorsalFlexion   Channel = "wrist_dorsal_flexion"
	WristUlnarDeviation  Channel = "wrist_ulnar_deviation"
	WristRadialDeviation Channel = "wrist_radial_deviation"
	ThumbFlexion         Channel = "thumb_flexion"
	ThumbExtension       Channel = "thumb_extension"
	ThumbAbduction       Channel = "thumb_abduction"
	ThumbAdduction       Channel = "thumb_adduction"
)

// Channels returns the eight channels in canonical order.
func Channels() []Channel {
	return []Channel{
		WristPalmarFlexion,
		WristDorsalFlexion,
		WristUlnarDeviation,
		WristRadialDeviation,
		ThumbFlexion,
		ThumbExtension,
		ThumbAbduction,
		ThumbAdduction,
	}
}

// Measurement is the complete angle readout of one frame.
type Measurement struct {
	Wrist WristSet `json:"wrist"`
	Thumb ThumbSet `json:"thumb"`

	// Confidence is the aggregate of the valid samples, before any
	// blending with detector score or stability.
	Confidence float64 `json:"confidence"`
}

// Sample returns the sample carried on the given channel. Unknown channels
// yield the zero sample.
func (m *Measurement) Sample(ch Channel) Sample {
	switch ch {
	case WristPalmarFlexion:
		return m.Wrist.PalmarFlexion
	case WristDorsalFlexion:
		return m.Wrist.DorsalFlexion
	case WristUlnarDeviation:
		return m.Wrist.UlnarDeviation
	case WristRadialDeviation:
		return m.Wrist.RadialDeviation
	case ThumbFlexion:
		return m.Thumb.Flexion
	case ThumbExtension:
		return m.Thumb.Extension
	case ThumbAbduction:
		return m.Thumb.Abduction
	case ThumbAdduction:
		return m.Thumb.Adduction
	}
	return Sample{}
}

// SetSample replaces the sample on the given channel. Unknown channels are
// ignored.
func (m *Measurement) SetSample(ch Channel, s Sample) {
	switch ch {
	case WristPalmarFlexion:
		m.Wrist.PalmarFlexion = s
	case WristDorsalFlexion:
		m.Wrist.DorsalFlexion = s
	case WristUlnarDeviation:
		m.Wrist.UlnarDeviation = s
	case WristRadialDeviation:
		m.Wrist.RadialDeviation = s
	case ThumbFlexion:
		m.Thumb.Flexion = s
	case ThumbExtension:
		m.Thumb.Extension = s
	case ThumbAbduction:
		m.Thumb.Abduction = s
	case ThumbAdduction:
		m.Thumb.Adduction = s
	}
}

// Samples returns all eight samples in canonical channel order.
func (m *Measurement) Samples() []Sample {
	channels := Channels()
	out := make([]Sample, len(channels))
	for i, ch := range channels {
		out[i] = m.Sample(ch)
	}
	return out
}

// Calculator turns landmark frames into measurements. Implementations are
// named variants so recordings can state which algorithm produced them.
type Calculator interface {
	// Measure computes a measurement for the frame. It is total: an
	// invalid or nil frame yields the zeroed, invalid measurement, never
	// an error or panic.
	Measure(f *detector.Frame) *Measurement

	// Name identifies the algorithm variant, e.g. "image-space/v1".
	Name() string
}

// New returns the default calculator variant.
func New(cfg Config) Calculator {
	return &imageSpaceCalculator{cfg: cfg}
}

// imageSpaceCalculator derives every angle from raw image-space landmark
// geometry. It holds no per-frame state; the config is fixed at
// construction.
type imageSpaceCalculator struct {
	cfg Config
}

func (c *imageSpaceCalculator) Name() string { return "image-space/v1" }

func (c *imageSpaceCalculator) Measure(f *detector.Frame) *Measurement {
	if err := f.Validate(); err != nil {
		return &Measurement{}
	}

	m := &Measurement{
		Wrist: wristAngles(f, c.cfg),
		Thumb: thumbAngles(f, c.cfg),
	}
	m.Confidence = Aggregate(m.Samples())
	return m
}
