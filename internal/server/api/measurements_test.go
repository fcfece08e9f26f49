package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/nmehta/gonio/internal/store"
)

func TestMeasurementsHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewMeasurementsHandler(s)

	sess := &store.Session{ID: "session-1", Side: "right", Status: "completed"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	base := time.Now()
	measurements := []*store.Measurement{
		{SessionID: "session-1", PalmarFlexion: 30, Confidence: 0.8, HandPresent: true, CapturedAt: base},
		{SessionID: "session-1", PalmarFlexion: 42.5, Confidence: 0.9, HandPresent: true, CapturedAt: base.Add(33 * time.Millisecond)},
	}
	if err := s.Measurements().CreateBatch(measurements); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/session-1/measurements", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listMeasurementsResponse
	decodeJSON(t, rec, &response)

	if len(response.Measurements) != 2 {
		t.Fatalf("len(Measurements) = %d, want 2", len(response.Measurements))
	}
	// Capture order must survive the round trip
	if response.Measurements[0].PalmarFlexion != 30 {
		t.Errorf("first PalmarFlexion = %v, want 30", response.Measurements[0].PalmarFlexion)
	}
	if response.Measurements[1].PalmarFlexion != 42.5 {
		t.Errorf("second PalmarFlexion = %v, want 42.5", response.Measurements[1].PalmarFlexion)
	}
}

func TestMeasurementsHandler_EmptySession(t *testing.T) {
	s := newTestStore(t)
	handler := NewMeasurementsHandler(s)

	// An unknown session reads as an empty list, not an error
	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/unknown/measurements", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listMeasurementsResponse
	decodeJSON(t, rec, &response)

	if len(response.Measurements) != 0 {
		t.Errorf("len(Measurements) = %d, want 0", len(response.Measurements))
	}
}

func TestMeasurementsHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewMeasurementsHandler(s)

	rec := doJSON(t, handler, http.MethodPost, "/api/sessions/session-1/measurements", nil)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestMeasurementsHandler_BadPath(t *testing.T) {
	s := newTestStore(t)
	handler := NewMeasurementsHandler(s)

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/session-1/samples", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
