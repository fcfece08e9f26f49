package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// errClipDone marks a non-looping clip that has been fully played out.
var errClipDone = errors.New("end of clip")

var _ Camera = (*PlaybackCamera)(nil)

// PlaybackCamera replays a recorded clip through the Camera interface, so
// the pipeline can be exercised without hardware. Rate requests are
// recorded for inspection; playback itself is paced by the caller.
type PlaybackCamera struct {
	mu   sync.Mutex
	clip []*gocv.Mat
	pos  int
	loop bool
	open bool
	fps  int
}

// NewPlaybackCamera creates a camera replaying the given frames. A looping
// clip rewinds at the end; otherwise reads fail once the clip is spent.
func NewPlaybackCamera(clip []*gocv.Mat, loop bool) *PlaybackCamera {
	return &PlaybackCamera{clip: clip, loop: loop, fps: DefaultFPS}
}

func (c *PlaybackCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.pos = 0
	return nil
}

func (c *PlaybackCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame hands out a clone of the next frame. The caller owns the clone;
// the clip keeps its originals.
func (c *PlaybackCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if len(c.clip) == 0 {
		return nil, errors.New("empty clip")
	}
	if c.pos >= len(c.clip) {
		if !c.loop {
			return nil, errClipDone
		}
		c.pos = 0
	}

	frame := c.clip[c.pos].Clone()
	c.pos++
	return &frame, nil
}

// SetFPS records the requested rate so tests can observe the pipeline's
// idle/active switching. Playback pace is unaffected.
func (c *PlaybackCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

// FPS reports the last requested rate.
func (c *PlaybackCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *PlaybackCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// SetClip swaps the frame sequence and rewinds.
func (c *PlaybackCamera) SetClip(clip []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clip = clip
	c.pos = 0
}

// Rewind restarts playback from the first frame.
func (c *PlaybackCamera) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = 0
}
