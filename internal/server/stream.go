package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/nmehta/gonio/internal/capture"
)

// previewInterval paces the MJPEG positioning preview at roughly 15 FPS.
const previewInterval = 66 * time.Millisecond

// StreamHandler serves MJPEG frames from the camera so the dashboard can
// show a positioning preview while the hand is lined up.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler serves the given camera as an MJPEG stream.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for r.Context().Err() == nil {
		frame, err := h.camera.ReadFrame()
		if err != nil {
			// The camera may be reopening or switching rates; retry.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		err = writePart(w, buf.GetBytes())
		buf.Close()
		if err != nil {
			return
		}

		time.Sleep(previewInterval)
	}
}

// writePart emits one JPEG as a multipart chunk and flushes it out.
func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\r\n")); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
