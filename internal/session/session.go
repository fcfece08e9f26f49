// Package session drives the lifecycle of a measurement session: camera
// frames in, confidence-gated angle records out, peaks and a summary when
// the session stops.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nmehta/gonio/internal/angle"
	"github.com/nmehta/gonio/internal/detector"
	"github.com/nmehta/gonio/internal/geom"
	"github.com/nmehta/gonio/internal/smoothing"
)

// Status represents the lifecycle state of a session.
type Status string

const (
	// StatusIdle means no session is running.
	StatusIdle Status = "idle"
	// StatusActive means frames are being measured and recorded.
	StatusActive Status = "active"
	// StatusPaused means the session exists but frames are ignored.
	StatusPaused Status = "paused"
	// StatusCompleted is the terminal state reported in summaries.
	StatusCompleted Status = "completed"
)

// HandLossFrames is the number of consecutive missed detections tolerated
// before the hand counts as lost. Losses reset smoothing so history never
// bridges a visibility gap.
const HandLossFrames = 3

var (
	// ErrSessionRunning is returned by Start when a session already exists.
	ErrSessionRunning = errors.New("a session is already running")
	// ErrNoSession is returned by lifecycle calls when nothing is running.
	ErrNoSession = errors.New("no session is running")
)

// Update is the per-frame output pushed to the observer and served to
// live clients.
type Update struct {
	SessionID   string             `json:"session_id"`
	Status      Status             `json:"status"`
	Measurement *angle.Measurement `json:"measurement"`
	Blended     float64            `json:"blended_confidence"`
	HandPresent bool               `json:"hand_present"`
	Facing      float64            `json:"facing_score"`
	CapturedAt  time.Time          `json:"captured_at"`
}

// Record is one accepted measurement buffered for persistence.
type Record struct {
	Measurement *angle.Measurement
	Blended     float64
	HandPresent bool
	CapturedAt  time.Time
}

// Summary describes a finished session, including the buffered records the
// caller is expected to persist.
type Summary struct {
	ID            string
	Side          string
	StartedAt     time.Time
	EndedAt       time.Time
	SampleCount   int
	AvgConfidence float64
	Peaks         map[angle.Channel]float64
	Records       []Record
}

// Config wires a Controller. Zero fields fall back to defaults.
type Config struct {
	Calculator angle.Calculator
	Smoother   *smoothing.Smoother
	Weights    angle.Weights
	// Threshold is the blended confidence a frame needs to be recorded
	// and to count toward peaks. Defaults to the angle confidence floor.
	Threshold float64
}

// Controller owns at most one session at a time. All methods are safe for
// concurrent use; OnUpdate must be set before the first Start.
type Controller struct {
	mu        sync.Mutex
	calc      angle.Calculator
	smoother  *smoothing.Smoother
	weights   angle.Weights
	threshold float64

	id        string
	side      string
	status    Status
	startedAt time.Time
	misses    int
	peaks     map[angle.Channel]float64
	records   []Record
	confSum   float64
	latest    Update

	// OnUpdate is invoked after every processed frame, outside the
	// controller's lock.
	OnUpdate func(Update)
}

// NewController creates a controller from the given config.
func NewController(cfg Config) *Controller {
	calc := cfg.Calculator
	if calc == nil {
		calc = angle.New(angle.DefaultConfig())
	}
	sm := cfg.Smoother
	if sm == nil {
		sm = smoothing.New(0)
	}
	w := cfg.Weights
	if w.Samples+w.Detection+w.Stability == 0 {
		w = angle.DefaultWeights()
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = angle.DefaultConfig().MinAcceptable
	}
	return &Controller{
		calc:      calc,
		smoother:  sm,
		weights:   w,
		threshold: threshold,
		status:    StatusIdle,
	}
}

// Start begins a session measuring the given hand side ("left" or
// "right") and returns the new session's ID.
func (c *Controller) Start(side string) (string, error) {
	side = strings.ToLower(strings.TrimSpace(side))
	if side != "left" && side != "right" {
		return "", fmt.Errorf("side must be left or right, got %q", side)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusActive || c.status == StatusPaused {
		return "", ErrSessionRunning
	}

	c.id = uuid.New().String()
	c.side = side
	c.status = StatusActive
	c.startedAt = time.Now()
	c.misses = 0
	c.peaks = make(map[angle.Channel]float64)
	c.records = nil
	c.confSum = 0
	c.smoother.ResetAll()
	c.latest = Update{
		SessionID:   c.id,
		Status:      StatusActive,
		Measurement: &angle.Measurement{},
	}

	return c.id, nil
}

// Pause suspends frame processing without ending the session. The
// smoothing history is dropped so readings after Resume start clean.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case StatusActive:
		c.status = StatusPaused
		c.misses = 0
		c.smoother.ResetAll()
		c.latest.Status = StatusPaused
		return nil
	case StatusPaused:
		return fmt.Errorf("session is already paused")
	default:
		return ErrNoSession
	}
}

// Resume continues a paused session.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case StatusPaused:
		c.status = StatusActive
		c.latest.Status = StatusActive
		return nil
	case StatusActive:
		return fmt.Errorf("session is not paused")
	default:
		return ErrNoSession
	}
}

// Stop ends the session and returns its summary, handing over the buffered
// records for persistence. The controller returns to idle.
func (c *Controller) Stop() (*Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive && c.status != StatusPaused {
		return nil, ErrNoSession
	}

	avg := 0.0
	if len(c.records) > 0 {
		avg = geom.RoundTo(c.confSum/float64(len(c.records)), 2)
	}
	summary := &Summary{
		ID:            c.id,
		Side:          c.side,
		StartedAt:     c.startedAt,
		EndedAt:       time.Now(),
		SampleCount:   len(c.records),
		AvgConfidence: avg,
		Peaks:         c.peaks,
		Records:       c.records,
	}

	c.id = ""
	c.side = ""
	c.status = StatusIdle
	c.peaks = nil
	c.records = nil
	c.confSum = 0
	c.misses = 0
	c.smoother.ResetAll()
	c.latest = Update{Status: StatusIdle, Measurement: &angle.Measurement{}}

	return summary, nil
}

// Status reports the controller's lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Snapshot returns the most recent update. Before any frame has been
// processed it carries an empty measurement.
func (c *Controller) Snapshot() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Process measures one detection cycle. A nil or invalid frame counts as a
// miss; misses within the debounce window keep HandPresent up so a single
// dropped detection does not flicker the UI. Frames are ignored unless the
// session is active.
func (c *Controller) Process(f *detector.Frame, stability float64) {
	c.mu.Lock()
	if c.status != StatusActive {
		c.mu.Unlock()
		return
	}

	var update Update
	if f == nil || f.Validate() != nil {
		update = c.processMissLocked()
	} else {
		update = c.processFrameLocked(f, stability)
	}
	c.latest = update
	cb := c.OnUpdate
	c.mu.Unlock()

	if cb != nil {
		cb(update)
	}
}

func (c *Controller) processMissLocked() Update {
	c.misses++
	if c.misses == HandLossFrames {
		c.smoother.ResetAll()
	}
	return Update{
		SessionID:   c.id,
		Status:      c.status,
		Measurement: &angle.Measurement{},
		HandPresent: c.misses < HandLossFrames,
		CapturedAt:  time.Now(),
	}
}

func (c *Controller) processFrameLocked(f *detector.Frame, stability float64) Update {
	c.misses = 0

	m := c.calc.Measure(f)
	blended := angle.Blend(m.Confidence, f.Score, stability, c.weights)
	smoothed := c.smoother.Apply(m)

	capturedAt := f.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	if blended >= c.threshold {
		c.records = append(c.records, Record{
			Measurement: smoothed,
			Blended:     blended,
			HandPresent: true,
			CapturedAt:  capturedAt,
		})
		c.confSum += blended
		for _, ch := range angle.Channels() {
			s := smoothed.Sample(ch)
			if s.Valid && s.Degrees > c.peaks[ch] {
				c.peaks[ch] = s.Degrees
			}
		}
	}

	return Update{
		SessionID:   c.id,
		Status:      c.status,
		Measurement: smoothed,
		Blended:     blended,
		HandPresent: true,
		Facing:      angle.FacingScore(f),
		CapturedAt:  capturedAt,
	}
}
