// Package fixtures ships canned landmark recordings for replay in tests
// and calibration checks. A recording holds the detector output of a short
// clip cycle by cycle; an empty cycle is a missed detection.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nmehta/gonio/internal/detector"
)

//go:embed recordings/*.json
var recordingsFS embed.FS

// Recording is a replayable landmark capture.
type Recording struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Cycles      [][]detector.Frame `json:"cycles"`
}

// LoadRecording loads an embedded recording by file name.
func LoadRecording(name string) (*Recording, error) {
	data, err := recordingsFS.ReadFile("recordings/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}

	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode recording %s: %w", name, err)
	}

	return &rec, nil
}

// Recordings lists the embedded recording file names.
func Recordings() ([]string, error) {
	entries, err := recordingsFS.ReadDir("recordings")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}
