package app

import (
	"log"
	"time"

	"github.com/nmehta/gonio/internal/session"
)

// runPipeline is the main capture loop. It reads camera frames, grades
// scene motion and feeds landmark detections to the session controller.
//
// Capture starts at IdleFPS. Motion or a running session raises it to
// ActiveFPS; IdleTimeout without either drops it back. Hand detection runs
// only while a session is measuring, and missed detections still reach the
// controller so hand loss debounces instead of freezing the last angles.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			measuring := a.controller.Status() == session.StatusActive

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Camera read failed: %v", err)
				if measuring {
					// A dropped frame counts as a missed detection.
					a.controller.Process(nil, a.motion.Stability())
				}
				continue
			}

			// Motion detection runs on every frame so the baseline stays
			// fresh and the stability grade tracks the live scene.
			motionDetected, _ := a.motion.Detect(frame)
			if motionDetected {
				lastMotionTime = time.Now()
			}

			wantActive := activeMode
			if measuring || motionDetected {
				wantActive = true
			} else if time.Since(lastMotionTime) > IdleTimeout {
				wantActive = false
			}

			if wantActive != activeMode {
				activeMode = wantActive
				fps := IdleFPS
				if activeMode {
					fps = ActiveFPS
				}
				a.camera.SetFPS(fps)
				frameInterval = time.Second / time.Duration(fps)
				ticker.Reset(frameInterval)
				if activeMode {
					log.Printf("Capture rate up to %d FPS", fps)
				} else {
					log.Printf("Capture rate down to %d FPS", fps)
				}
			}

			// Landmark detection only feeds a running session.
			if !measuring {
				frame.Close()
				continue
			}

			hands, err := a.Detector().Detect(frame)
			frame.Close()

			stability := a.motion.Stability()

			if err != nil {
				log.Printf("Error detecting hand: %v", err)
				a.controller.Process(nil, stability)
				continue
			}

			if len(hands) == 0 {
				a.controller.Process(nil, stability)
				continue
			}

			a.controller.Process(&hands[0], stability)
		}
	}
}
