// Package app wires the camera, hand detector, angle calculator and
// session controller into the gonio measurement pipeline, and carries a
// completed session through persistence, telemetry and report export.
package app

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/nmehta/gonio/internal/angle"
	"github.com/nmehta/gonio/internal/capture"
	"github.com/nmehta/gonio/internal/detector"
	"github.com/nmehta/gonio/internal/export"
	"github.com/nmehta/gonio/internal/session"
	"github.com/nmehta/gonio/internal/smoothing"
	"github.com/nmehta/gonio/internal/store"
	"github.com/nmehta/gonio/internal/telemetry"
)

// Pipeline timing constants.
const (
	// IdleFPS is the capture rate while nothing moves in front of the camera.
	IdleFPS = 5
	// ActiveFPS is the capture rate during a measurement session or while
	// the scene is in motion.
	ActiveFPS = 30
	// IdleTimeout is how long motion must be absent before the pipeline
	// drops back to the idle rate.
	IdleTimeout = 2 * time.Second
	// ExporterTimeout bounds a single report exporter run.
	ExporterTimeout = 5 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	ExporterDir  string
	ReportDir    string
	CameraID     int
	MotionThresh float64

	// Angles overrides the calculator tuning. The zero value means
	// angle.DefaultConfig.
	Angles angle.Config

	// MQTT configures the optional session-summary publisher. An empty
	// broker URL disables it.
	MQTT telemetry.Config
}

// App owns the measurement pipeline: capture, detection, angle extraction
// and the live session. It also implements the session driver the HTTP API
// uses to start, pause, resume and complete sessions.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	controller *session.Controller
	exporters  *export.Manager
	executor   *export.Executor
	publisher  *telemetry.Publisher

	mu     sync.RWMutex
	stopCh chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	angles := config.Angles
	if angles == (angle.Config{}) {
		angles = angle.DefaultConfig()
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		motion:    capture.NewMotionDetector(motionThreshold),
		exporters: export.NewManager(config.ExporterDir),
		executor:  export.NewExecutor(ExporterTimeout),
		publisher: telemetry.NewPublisher(config.MQTT),
		controller: session.NewController(session.Config{
			Calculator: angle.New(angles),
			Smoother:   smoothing.New(0),
		}),
	}

	// Try MediaPipe first, fall back to the mock detector so the server
	// and the stored history stay usable without the Python service.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the camera. Must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Controller returns the session controller.
func (a *App) Controller() *session.Controller {
	return a.controller
}

// Exporters returns the report exporter manager.
func (a *App) Exporters() *export.Manager {
	return a.exporters
}

// DiscoverExporters scans the exporter directory for report exporters.
func (a *App) DiscoverExporters() error {
	return a.exporters.Discover()
}

// Start opens the camera and begins the measurement pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(IdleFPS)

	if a.publisher.Enabled() {
		if err := a.publisher.Connect(); err != nil {
			log.Printf("Telemetry unavailable: %v", err)
		}
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Measurement pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources. A session still running
// is completed first so its buffered measurements reach the store.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	a.mu.Unlock()

	if snap := a.controller.Snapshot(); snap.SessionID != "" {
		if _, err := a.CompleteSession(snap.SessionID); err != nil {
			log.Printf("Error completing session on shutdown: %v", err)
		}
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.publisher.Close()

	log.Println("Measurement pipeline stopped")
}

// StartSession begins measuring the given hand and persists the new
// session row.
func (a *App) StartSession(side, notes string) (*store.Session, error) {
	id, err := a.controller.Start(side)
	if err != nil {
		return nil, err
	}

	row := &store.Session{
		ID:     id,
		Side:   strings.ToLower(strings.TrimSpace(side)),
		Status: string(session.StatusActive),
		Notes:  notes,
		Peaks:  map[string]float64{},
	}
	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Create(row); err != nil {
			a.controller.Stop()
			return nil, fmt.Errorf("persist session: %w", err)
		}
	}

	log.Printf("Session %s started (%s hand)", id, row.Side)
	return row, nil
}

// PauseSession suspends the running session.
func (a *App) PauseSession(id string) (*store.Session, error) {
	if a.controller.Snapshot().SessionID != id {
		return nil, session.ErrNoSession
	}
	if err := a.controller.Pause(); err != nil {
		return nil, err
	}
	return a.setSessionStatus(id, string(session.StatusPaused))
}

// ResumeSession continues a paused session.
func (a *App) ResumeSession(id string) (*store.Session, error) {
	if a.controller.Snapshot().SessionID != id {
		return nil, session.ErrNoSession
	}
	if err := a.controller.Resume(); err != nil {
		return nil, err
	}
	return a.setSessionStatus(id, string(session.StatusActive))
}

// CompleteSession stops the running session, persists its summary and
// measurements, and runs the completion reporting.
func (a *App) CompleteSession(id string) (*store.Session, error) {
	if a.controller.Snapshot().SessionID != id {
		return nil, session.ErrNoSession
	}

	summary, err := a.controller.Stop()
	if err != nil {
		return nil, err
	}

	row := &store.Session{
		ID:            summary.ID,
		Side:          summary.Side,
		Status:        string(session.StatusCompleted),
		SampleCount:   summary.SampleCount,
		AvgConfidence: summary.AvgConfidence,
		Peaks:         peaksToMap(summary.Peaks),
		StartedAt:     summary.StartedAt,
		EndedAt:       &summary.EndedAt,
	}

	if a.config.Store != nil {
		stored, err := a.config.Store.Sessions().GetByID(id)
		if err != nil {
			return nil, err
		}
		row.Notes = stored.Notes

		if err := a.config.Store.Sessions().Update(row); err != nil {
			return nil, fmt.Errorf("persist summary: %w", err)
		}
		if err := a.config.Store.Measurements().CreateBatch(measurementRows(summary)); err != nil {
			return nil, fmt.Errorf("persist measurements: %w", err)
		}
	}

	a.report(row)

	log.Printf("Session %s completed: %d samples, avg confidence %.2f",
		id, summary.SampleCount, summary.AvgConfidence)
	return row, nil
}

func (a *App) setSessionStatus(id, status string) (*store.Session, error) {
	if a.config.Store == nil {
		return &store.Session{ID: id, Status: status}, nil
	}

	row, err := a.config.Store.Sessions().GetByID(id)
	if err != nil {
		return nil, err
	}
	row.Status = status
	if err := a.config.Store.Sessions().Update(row); err != nil {
		return nil, err
	}
	return row, nil
}

// report publishes the completed session over MQTT and runs every
// discovered report exporter. Reporting failures are logged, never
// propagated: the session data is already safe in the store.
func (a *App) report(row *store.Session) {
	if a.publisher.Enabled() {
		if err := a.publisher.PublishSummary(row); err != nil {
			log.Printf("Telemetry publish failed: %v", err)
		}
	}

	exporters := a.exporters.List()
	if len(exporters) == 0 {
		return
	}

	var measurements []*store.Measurement
	if a.config.Store != nil {
		ms, err := a.config.Store.Measurements().ListBySession(row.ID)
		if err != nil {
			log.Printf("Skipping report exporters: %v", err)
			return
		}
		measurements = ms
	}

	for _, exp := range exporters {
		req := &export.Request{
			Action:       export.ActionExport,
			Session:      row,
			Measurements: measurements,
			OutputDir:    a.config.ReportDir,
		}
		resp, err := a.executor.Execute(exp, req)
		if err != nil {
			log.Printf("Exporter %s failed: %v", exp.Manifest.Name, err)
			continue
		}
		if !resp.Success {
			log.Printf("Exporter %s reported failure: %s", exp.Manifest.Name, resp.Error)
			continue
		}
		log.Printf("Exporter %s finished", exp.Manifest.Name)
	}
}

// measurementRows flattens the summary's buffered records into store rows.
func measurementRows(summary *session.Summary) []*store.Measurement {
	rows := make([]*store.Measurement, 0, len(summary.Records))
	for _, rec := range summary.Records {
		m := store.NewMeasurement(summary.ID, rec.Measurement, rec.Blended, rec.CapturedAt)
		m.HandPresent = rec.HandPresent
		rows = append(rows, m)
	}
	return rows
}

func peaksToMap(peaks map[angle.Channel]float64) map[string]float64 {
	out := make(map[string]float64, len(peaks))
	for ch, v := range peaks {
		out[string(ch)] = v
	}
	return out
}
