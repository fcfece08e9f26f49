package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleShutdown is how long the Python process may sit without frames
// before it is stopped. Detection only runs while a session is measuring,
// so between sessions the interpreter is released; the next Detect starts
// it again.
const idleShutdown = 30 * time.Second

// MediaPipeDetector runs hand landmark detection in a Python MediaPipe
// subprocess. Frames go out as length-prefixed JPEG on stdin; detections
// come back as one JSON line per frame on stdout.
type MediaPipeDetector struct {
	config Config

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	running   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector. The Python process
// is started lazily on the first detection; this only verifies the service
// script can be found. Zero config fields fall back to the defaults.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	if locateScript() == "" {
		return nil, errors.New("mediapipe_service.py not found")
	}

	def := DefaultConfig()
	if config.MaxHands <= 0 {
		config.MaxHands = def.MaxHands
	}
	if config.MinConfidence <= 0 {
		config.MinConfidence = def.MinConfidence
	}
	if config.MinTrackingConf <= 0 {
		config.MinTrackingConf = def.MinTrackingConf
	}

	return &MediaPipeDetector{config: config}, nil
}

// Detect analyzes a frame and returns detected landmark frames stamped with
// the capture time.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureRunning(); err != nil {
		return nil, err
	}
	if err := d.send(frame); err != nil {
		return nil, err
	}
	hands, err := d.receive()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]Frame, len(hands))
	for i, h := range hands {
		result[i] = h.toFrame(now)
	}

	d.armIdleTimer()
	return result, nil
}

// send ships one frame to the service as a length-prefixed JPEG.
func (d *MediaPipeDetector) send(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	if _, err := d.stdin.Write(header); err != nil {
		return fmt.Errorf("send frame length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// receive reads the one JSON line the service answers per frame.
func (d *MediaPipeDetector) receive() ([]wireHand, error) {
	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read detections: %w", err)
	}

	var response struct {
		Hands []wireHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse detections: %w", err)
	}
	return response.Hands, nil
}

// Close stops the Python process and releases its pipes.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) ensureRunning() error {
	if d.running {
		return nil
	}

	scriptPath := locateScript()
	if scriptPath == "" {
		return errors.New("mediapipe_service.py not found")
	}

	pythonPath := locateVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	// Service logs land on our stderr.
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.running = true

	return nil
}

func (d *MediaPipeDetector) stop() error {
	if !d.running {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	// Closing stdin tells the service to exit; Wait reaps it.
	if d.stdin != nil {
		d.stdin.Close()
	}
	err := d.cmd.Wait()

	d.running = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) armIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}

// locateScript finds the detection service. The script is a deployment
// artifact, not part of the module: it is looked up next to the working
// directory, the executable, and the per-user install.
func locateScript() string {
	execDir := executableDir()
	return firstExisting([]string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".gonio/scripts/mediapipe_service.py"),
	})
}

// locateVenvPython looks for a Python interpreter in a virtual environment
// near the working directory, the executable or the per-user install.
func locateVenvPython() string {
	execDir := executableDir()
	return firstExisting([]string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".gonio/venv/bin/python"),
	})
}

// firstExisting returns the first candidate present on disk, made absolute
// when possible.
func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(execPath)
}

// wireHand is the shape of one detected hand on the service's JSON line.
type wireHand struct {
	Points     []wirePoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// toFrame converts the wire representation without padding or truncating
// the landmark list; a short list must fail Validate, not be silently
// zero-filled.
func (h wireHand) toFrame(capturedAt time.Time) Frame {
	f := Frame{
		Points:     make([]Point3D, len(h.Points)),
		Handedness: h.Handedness,
		Score:      h.Score,
		CapturedAt: capturedAt,
	}

	for i, p := range h.Points {
		f.Points[i] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}

	return f
}
