// Package main provides the clinic-summary exporter.
// It writes a plain-text summary of a completed session, suitable for
// pasting into clinical notes.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Request represents the input from the exporter executor.
type Request struct {
	Action    string   `json:"action"`
	Session   *Session `json:"session"`
	OutputDir string   `json:"output_dir"`
}

// Response represents the output to the exporter executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Session carries the session fields this exporter needs.
type Session struct {
	ID            string             `json:"id"`
	Side          string             `json:"side"`
	Notes         string             `json:"notes"`
	SampleCount   int                `json:"sample_count"`
	AvgConfidence float64            `json:"avg_confidence"`
	Peaks         map[string]float64 `json:"peaks"`
	StartedAt     time.Time          `json:"started_at"`
	EndedAt       *time.Time         `json:"ended_at,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "export" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	path, err := writeReport(&req)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("export failed: %v", err))
		return
	}

	writeSuccessResponse(map[string]any{"path": path})
}

// writeReport writes the summary file and returns its path.
func writeReport(req *Request) (string, error) {
	if req.Session == nil {
		return "", fmt.Errorf("request has no session")
	}
	if req.OutputDir == "" {
		return "", fmt.Errorf("output_dir is required")
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(req.OutputDir, req.Session.ID+"-summary.txt")
	if err := os.WriteFile(path, []byte(render(req.Session)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// render formats the session as plain text.
func render(s *Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Goniometry session summary\n")
	fmt.Fprintf(&b, "==========================\n\n")
	fmt.Fprintf(&b, "Session:    %s\n", s.ID)
	fmt.Fprintf(&b, "Side:       %s\n", s.Side)
	fmt.Fprintf(&b, "Started:    %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	if s.EndedAt != nil {
		fmt.Fprintf(&b, "Ended:      %s\n", s.EndedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "Duration:   %s\n", s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(&b, "Samples:    %d\n", s.SampleCount)
	fmt.Fprintf(&b, "Confidence: %.2f\n", s.AvgConfidence)
	if s.Notes != "" {
		fmt.Fprintf(&b, "Notes:      %s\n", s.Notes)
	}

	if len(s.Peaks) > 0 {
		fmt.Fprintf(&b, "\nPeak range of motion (degrees)\n")
		fmt.Fprintf(&b, "------------------------------\n")

		channels := make([]string, 0, len(s.Peaks))
		for ch := range s.Peaks {
			channels = append(channels, ch)
		}
		sort.Strings(channels)

		for _, ch := range channels {
			fmt.Fprintf(&b, "%-24s %7.2f\n", ch, s.Peaks[ch])
		}
	}

	return b.String()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response with the given data to stdout.
func writeSuccessResponse(data any) {
	resp := Response{Success: true}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			resp.Data = raw
		}
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
