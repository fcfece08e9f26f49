// Package config loads runtime settings from GONIO_* environment
// variables. A .env file in the working directory is honored when present.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the goniometer.
type Config struct {
	DBPath      string
	ListenAddr  string
	StaticDir   string
	CameraID    int
	ExporterDir string
	ReportDir   string

	// MotionThreshold is the percentage of changed pixels that counts as
	// motion for the idle/active frame-rate switch.
	MotionThreshold float64

	// MaxFlexionDegrees caps reported wrist flexion. Values <= 0 disable
	// the cap.
	MaxFlexionDegrees float64

	MQTTBrokerURL   string
	MQTTTopicPrefix string

	TrayEnabled bool

	// DefaultSide is the hand measured when a session is started from the
	// tray, where there is no side picker.
	DefaultSide string
}

// Load reads the optional .env file and builds the Config, applying
// defaults under ~/.gonio for file paths.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded settings from .env")
	}

	dataDir := defaultDataDir()

	return &Config{
		DBPath:            getEnv("GONIO_DB_PATH", filepath.Join(dataDir, "gonio.db")),
		ListenAddr:        getEnv("GONIO_LISTEN_ADDR", ":8080"),
		StaticDir:         getEnv("GONIO_STATIC_DIR", ""),
		CameraID:          getEnvInt("GONIO_CAMERA_ID", 0),
		ExporterDir:       getEnv("GONIO_EXPORTER_DIR", filepath.Join(dataDir, "exporters")),
		ReportDir:         getEnv("GONIO_REPORT_DIR", filepath.Join(dataDir, "reports")),
		MotionThreshold:   getEnvFloat("GONIO_MOTION_THRESHOLD", 1.0),
		MaxFlexionDegrees: getEnvFloat("GONIO_MAX_FLEXION", 90),
		MQTTBrokerURL:     getEnv("GONIO_MQTT_BROKER", ""),
		MQTTTopicPrefix:   getEnv("GONIO_MQTT_TOPIC_PREFIX", "gonio"),
		TrayEnabled:       getEnvBool("GONIO_TRAY", false),
		DefaultSide:       getEnv("GONIO_DEFAULT_SIDE", "right"),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gonio"
	}
	return filepath.Join(home, ".gonio")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
