// Package tray provides the system tray interface for the gonio wrist
// goniometer: a one-click session toggle plus a peek at the last result.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the menu-bar control surface: a session toggle, the last
// completed result and a dashboard shortcut.
type Tray struct {
	onToggle    func(active bool)
	onDashboard func()
	onQuit      func()
	active      bool
	mu          sync.RWMutex

	// Items that change after onReady builds the menu.
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance. No session is active initially.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback invoked when the session toggle is clicked.
// The argument is true when a session should start, false when the running
// one should stop.
func (t *Tray) OnToggle(fn func(active bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback invoked when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback invoked when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run hands the calling goroutine to systray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady builds the menu once systray is up.
func (t *Tray) onReady() {
	systray.SetTitle("gonio")
	systray.SetTooltip("gonio wrist goniometer")

	t.menuToggle = systray.AddMenuItem("● Start session", "Start a measurement session")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("No sessions yet", "Last completed session")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit gonio")

	// Clicks arrive on channels; drain them off the systray goroutine.
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.active = !t.active
	active := t.active
	t.updateToggleLocked()
	callback := t.onToggle
	t.mu.Unlock()

	// Invoke outside the lock; the callback may call back into SetActive.
	if callback != nil {
		callback(active)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetActive forces the toggle state, for when a session start fails or a
// session is started or stopped from the web dashboard instead.
func (t *Tray) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = active
	t.updateToggleLocked()
}

// SetStatus updates the last-session line in the menu.
func (t *Tray) SetStatus(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		if text == "" {
			t.menuStatus.SetTitle("No sessions yet")
		} else {
			t.menuStatus.SetTitle(text)
		}
	}
}

// IsActive reports whether the toggle shows a running session.
func (t *Tray) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

func (t *Tray) updateToggleLocked() {
	if t.menuToggle == nil {
		return
	}
	if t.active {
		t.menuToggle.SetTitle("■ Stop session")
	} else {
		t.menuToggle.SetTitle("● Start session")
	}
}
