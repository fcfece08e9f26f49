package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/nmehta/gonio/internal/session"
	"github.com/nmehta/gonio/internal/store"
)

// testDriver backs the session API with a real controller, standing in for
// the application pipeline.
type testDriver struct {
	controller *session.Controller
	store      *store.Store
}

func (d *testDriver) StartSession(side, notes string) (*store.Session, error) {
	id, err := d.controller.Start(side)
	if err != nil {
		return nil, err
	}
	row := &store.Session{ID: id, Side: side, Status: "active", Notes: notes}
	if err := d.store.Sessions().Create(row); err != nil {
		d.controller.Stop()
		return nil, err
	}
	return row, nil
}

func (d *testDriver) PauseSession(id string) (*store.Session, error) {
	if d.controller.Snapshot().SessionID != id {
		return nil, session.ErrNoSession
	}
	if err := d.controller.Pause(); err != nil {
		return nil, err
	}
	return d.setStatus(id, "paused")
}

func (d *testDriver) ResumeSession(id string) (*store.Session, error) {
	if d.controller.Snapshot().SessionID != id {
		return nil, session.ErrNoSession
	}
	if err := d.controller.Resume(); err != nil {
		return nil, err
	}
	return d.setStatus(id, "active")
}

func (d *testDriver) CompleteSession(id string) (*store.Session, error) {
	if d.controller.Snapshot().SessionID != id {
		return nil, session.ErrNoSession
	}
	summary, err := d.controller.Stop()
	if err != nil {
		return nil, err
	}
	row, err := d.store.Sessions().GetByID(id)
	if err != nil {
		return nil, err
	}
	row.Status = "completed"
	row.SampleCount = summary.SampleCount
	row.AvgConfidence = summary.AvgConfidence
	row.EndedAt = &summary.EndedAt
	if err := d.store.Sessions().Update(row); err != nil {
		return nil, err
	}
	return row, nil
}

func (d *testDriver) setStatus(id, status string) (*store.Session, error) {
	row, err := d.store.Sessions().GetByID(id)
	if err != nil {
		return nil, err
	}
	row.Status = status
	if err := d.store.Sessions().Update(row); err != nil {
		return nil, err
	}
	return row, nil
}

func TestAPI_SessionWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "test.db"))
	defer s.Close()

	driver := &testDriver{
		controller: session.NewController(session.Config{}),
		store:      s,
	}

	srv := New(Config{Store: s, Driver: driver})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Start a session
	startBody := `{"side": "right", "notes": "first check"}`
	resp, err := client.Post(ts.URL+"/api/sessions", "application/json", bytes.NewBufferString(startBody))
	if err != nil {
		t.Fatalf("POST /api/sessions error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID     string `json:"id"`
		Side   string `json:"side"`
		Status string `json:"status"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Side != "right" {
		t.Errorf("created side = %s, want right", created.Side)
	}
	if created.Status != "active" {
		t.Errorf("created status = %s, want active", created.Status)
	}

	// 2. List sessions
	resp, _ = client.Get(ts.URL + "/api/sessions")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/sessions status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Sessions []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(listed.Sessions))
	}

	// 3. Complete the session
	completeBody := bytes.NewBufferString(`{"status": "completed"}`)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/sessions/"+created.ID, completeBody)
	req.Header.Set("Content-Type", "application/json")
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var completed struct {
		Status  string `json:"status"`
		EndedAt string `json:"ended_at"`
	}
	json.NewDecoder(resp.Body).Decode(&completed)
	resp.Body.Close()

	if completed.Status != "completed" {
		t.Errorf("completed status = %s, want completed", completed.Status)
	}
	if completed.EndedAt == "" {
		t.Error("completed session should carry ended_at")
	}

	// 4. Measurements endpoint answers for the session
	resp, _ = client.Get(ts.URL + "/api/sessions/" + created.ID + "/measurements")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET measurements status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 5. Delete the completed session
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+created.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 6. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/sessions/" + created.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_GoalWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "test.db"))
	defer s.Close()

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// Create a goal
	createBody := `{"channel": "wrist_palmar_flexion", "target_degrees": 60, "baseline_degrees": 20}`
	resp, err := client.Post(ts.URL+"/api/goals", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/goals error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID       string  `json:"id"`
		Channel  string  `json:"channel"`
		Progress float64 `json:"progress"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Channel != "wrist_palmar_flexion" {
		t.Errorf("created channel = %s, want wrist_palmar_flexion", created.Channel)
	}

	// A duplicate enabled goal conflicts
	resp, _ = client.Post(ts.URL+"/api/goals", "application/json", bytes.NewBufferString(createBody))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate POST status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	resp.Body.Close()

	// Delete the goal
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/goals/"+created.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	driver := &testDriver{
		controller: session.NewController(session.Config{}),
	}

	srv := New(Config{Driver: driver})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
		Live   bool   `json:"live"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
	if !health.Live {
		t.Error("live = false, want true with a session driver wired")
	}
}
