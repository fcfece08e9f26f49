package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nmehta/gonio/internal/angle"
	"github.com/nmehta/gonio/internal/app"
	"github.com/nmehta/gonio/internal/config"
	"github.com/nmehta/gonio/internal/server"
	"github.com/nmehta/gonio/internal/store"
	"github.com/nmehta/gonio/internal/telemetry"
	"github.com/nmehta/gonio/internal/tray"
)

func main() {
	fmt.Println("gonio - Camera Wrist Goniometer")

	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application := app.New(app.Config{
		Store:        st,
		ExporterDir:  cfg.ExporterDir,
		ReportDir:    cfg.ReportDir,
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThreshold,
		Angles:       anglesConfig(cfg),
		MQTT: telemetry.Config{
			BrokerURL:   cfg.MQTTBrokerURL,
			TopicPrefix: cfg.MQTTTopicPrefix,
		},
	})

	if err := application.DiscoverExporters(); err != nil {
		log.Printf("Exporter discovery failed: %v", err)
	}

	webDir := staticDir(cfg)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srvCfg := server.Config{
		StaticDir: webDir,
		Store:     st,
	}

	// A missing camera degrades the server to stored history instead of
	// refusing to start.
	if err := application.Start(); err != nil {
		log.Printf("Live capture unavailable (%v); serving stored sessions only", err)
	} else {
		defer application.Stop()
		srvCfg.Camera = application.Camera()
		srvCfg.Controller = application.Controller()
		srvCfg.Driver = application
	}

	srv := server.New(srvCfg)

	if cfg.TrayEnabled {
		runWithTray(cfg, application, srv, srvCfg.Driver != nil)
		return
	}

	fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
	if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runWithTray serves HTTP in the background and blocks on the tray loop
// until Quit is clicked.
func runWithTray(cfg *config.Config, application *app.App, srv *server.Server, live bool) {
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()

	t.OnToggle(func(active bool) {
		if !live {
			log.Println("No camera available, sessions can only be browsed")
			t.SetActive(false)
			return
		}
		if active {
			if _, err := application.StartSession(cfg.DefaultSide, ""); err != nil {
				log.Printf("Could not start session: %v", err)
				t.SetActive(false)
			}
			return
		}

		id := application.Controller().Snapshot().SessionID
		if id == "" {
			return
		}
		row, err := application.CompleteSession(id)
		if err != nil {
			log.Printf("Could not complete session: %v", err)
			return
		}
		t.SetStatus(peakSummary(row))
	})

	t.OnDashboard(func() {
		openDashboard(cfg.ListenAddr)
	})

	t.OnQuit(func() {
		application.Stop()
	})

	t.Run()
}

// anglesConfig applies the configured flexion cap on top of the default
// calculator tuning.
func anglesConfig(cfg *config.Config) angle.Config {
	angles := angle.DefaultConfig()
	angles.MaxFlexion = cfg.MaxFlexionDegrees
	return angles
}

// peakSummary formats a completed session's headline peaks for the tray.
func peakSummary(row *store.Session) string {
	palmar := row.Peaks[string(angle.WristPalmarFlexion)]
	dorsal := row.Peaks[string(angle.WristDorsalFlexion)]
	return fmt.Sprintf("Last: %.0f° palmar / %.0f° dorsal", palmar, dorsal)
}

// openDashboard opens the dashboard in the default browser.
func openDashboard(addr string) {
	url := dashboardURL(addr)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Open %s in a browser (%v)", url, err)
	}
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// staticDir resolves the dashboard assets directory. The configured path
// wins; otherwise common checkout and install locations are searched.
func staticDir(cfg *config.Config) string {
	if cfg.StaticDir != "" {
		return cfg.StaticDir
	}

	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".gonio", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
