// Package api provides HTTP API handlers for the gonio measurement dashboard.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nmehta/gonio/internal/session"
	"github.com/nmehta/gonio/internal/store"
)

// SessionDriver drives the live measurement session on behalf of the API.
// It owns everything that has to happen around a lifecycle change:
// controller transitions, persistence and post-completion reporting.
type SessionDriver interface {
	StartSession(side, notes string) (*store.Session, error)
	PauseSession(id string) (*store.Session, error)
	ResumeSession(id string) (*store.Session, error)
	CompleteSession(id string) (*store.Session, error)
}

// SessionHandler handles HTTP requests for session resources.
type SessionHandler struct {
	store  *store.Store
	driver SessionDriver
}

// NewSessionHandler creates a new SessionHandler. The driver may be nil when
// the server runs without live capture; lifecycle requests then return 503.
func NewSessionHandler(s *store.Store, driver SessionDriver) *SessionHandler {
	return &SessionHandler{store: s, driver: driver}
}

// ServeHTTP routes collection requests to list/create and item requests
// to get/update/delete.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/sessions or /api/sessions/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/sessions
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/sessions/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Wire types

type startSessionRequest struct {
	Side  string `json:"side"`
	Notes string `json:"notes"`
}

type updateSessionRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type sessionResponse struct {
	ID            string             `json:"id"`
	Side          string             `json:"side"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes"`
	SampleCount   int                `json:"sample_count"`
	AvgConfidence float64            `json:"avg_confidence"`
	Peaks         map[string]float64 `json:"peaks"`
	StartedAt     string             `json:"started_at"`
	EndedAt       string             `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toSessionResponse converts a store.Session to a sessionResponse.
func toSessionResponse(s *store.Session) sessionResponse {
	peaks := s.Peaks
	if peaks == nil {
		peaks = map[string]float64{}
	}
	resp := sessionResponse{
		ID:            s.ID,
		Side:          s.Side,
		Status:        s.Status,
		Notes:         s.Notes,
		SampleCount:   s.SampleCount,
		AvgConfidence: s.AvgConfidence,
		Peaks:         peaks,
		StartedAt:     s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// writeJSON sends data with the given status; a nil data sends just the
// status line.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError sends the message in the standard error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/sessions and returns all sessions, newest first.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}

	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id} and returns a single session.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// create handles POST /api/sessions and starts a new live session.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	side := strings.ToLower(strings.TrimSpace(req.Side))
	if side != "left" && side != "right" {
		writeError(w, http.StatusBadRequest, "Side must be left or right")
		return
	}

	if h.driver == nil {
		writeError(w, http.StatusServiceUnavailable, "Live capture is not available")
		return
	}

	s, err := h.driver.StartSession(side, req.Notes)
	if err != nil {
		if errors.Is(err, session.ErrSessionRunning) {
			writeError(w, http.StatusConflict, "A session is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// update handles PUT /api/sessions/{id}. A status field drives the live
// session through pause/resume/complete; a notes field edits the record.
func (h *SessionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Status != "" && req.Status != s.Status {
		if h.driver == nil {
			writeError(w, http.StatusServiceUnavailable, "Live capture is not available")
			return
		}

		switch req.Status {
		case "paused":
			s, err = h.driver.PauseSession(id)
		case "active":
			s, err = h.driver.ResumeSession(id)
		case "completed":
			s, err = h.driver.CompleteSession(id)
		default:
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				writeError(w, http.StatusConflict, "Session is not running")
				return
			}
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Session not found")
				return
			}
			writeError(w, http.StatusConflict, "Invalid status transition")
			return
		}
	}

	if req.Notes != nil {
		s.Notes = *req.Notes
		if err := h.store.Sessions().Update(s); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update session")
			return
		}
	}

	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// delete handles DELETE /api/sessions/{id} and removes a completed session
// along with its measurements.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	if s.Status != "completed" {
		writeError(w, http.StatusConflict, "Session is still running")
		return
	}

	if err := h.store.Sessions().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
