// Package main provides the csv-report exporter.
// It writes every accepted sample of a completed session to a CSV file.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Request represents the input from the exporter executor.
type Request struct {
	Action       string         `json:"action"`
	Session      *Session       `json:"session"`
	Measurements []*Measurement `json:"measurements"`
	OutputDir    string         `json:"output_dir"`
}

// Response represents the output to the exporter executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Session carries the session fields this exporter needs.
type Session struct {
	ID string `json:"id"`
}

// Measurement is one angle sample as sent by the executor.
type Measurement struct {
	SessionID       string    `json:"session_id"`
	PalmarFlexion   float64   `json:"wrist_palmar_flexion"`
	DorsalFlexion   float64   `json:"wrist_dorsal_flexion"`
	UlnarDeviation  float64   `json:"wrist_ulnar_deviation"`
	RadialDeviation float64   `json:"wrist_radial_deviation"`
	ThumbFlexion    float64   `json:"thumb_flexion"`
	ThumbExtension  float64   `json:"thumb_extension"`
	ThumbAbduction  float64   `json:"thumb_abduction"`
	ThumbAdduction  float64   `json:"thumb_adduction"`
	Confidence      float64   `json:"confidence"`
	HandPresent     bool      `json:"hand_present"`
	CapturedAt      time.Time `json:"captured_at"`
}

var header = []string{
	"session_id", "captured_at",
	"wrist_palmar_flexion", "wrist_dorsal_flexion",
	"wrist_ulnar_deviation", "wrist_radial_deviation",
	"thumb_flexion", "thumb_extension",
	"thumb_abduction", "thumb_adduction",
	"confidence", "hand_present",
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

	writeSuccessResponse(map[string]any{"path": path, "rows": len(req.Measurements)})
}

// writeReport writes the per-sample CSV and returns its path.
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

	path := filepath.Join(req.OutputDir, req.Session.ID+"-samples.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, m := range req.Measurements {
		record := []string{
			m.SessionID,
			m.CapturedAt.Format(time.RFC3339),
			degrees(m.PalmarFlexion),
			degrees(m.DorsalFlexion),
			degrees(m.UlnarDeviation),
			degrees(m.RadialDeviation),
			degrees(m.ThumbFlexion),
			degrees(m.ThumbExtension),
			degrees(m.ThumbAbduction),
			degrees(m.ThumbAdduction),
			degrees(m.Confidence),
			strconv.FormatBool(m.HandPresent),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func degrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
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
