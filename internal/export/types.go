// Package export discovers and runs report exporters. An exporter is a
// standalone executable described by a plugin.json manifest in its own
// subdirectory; it receives a completed session and its measurements as
// JSON on stdin and writes report files into the requested output
// directory.
package export

import (
	"encoding/json"

	"github.com/nmehta/gonio/internal/store"
)

// ActionExport is the action name sent to exporters after a session
// completes.
const ActionExport = "export"

// Manifest describes an exporter's metadata and the report formats it
// produces.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Formats     []string `json:"formats"`
}

// Request is the JSON document sent to an exporter on stdin.
type Request struct {
	Action       string               `json:"action"`
	Session      *store.Session       `json:"session"`
	Measurements []*store.Measurement `json:"measurements"`
	Config       json.RawMessage      `json:"config,omitempty"`
	OutputDir    string               `json:"output_dir"`
}

// Response is the JSON document an exporter writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Exporter is a discovered exporter with its manifest and location.
type Exporter struct {
	Manifest   Manifest
	Path       string
	Executable string
}
