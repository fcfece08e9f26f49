package api

import (
	"net/http"
	"strings"

	"github.com/nmehta/gonio/internal/store"
)

// MeasurementsHandler handles HTTP requests for a session's stored samples.
type MeasurementsHandler struct {
	store *store.Store
}

// NewMeasurementsHandler creates a new MeasurementsHandler with the given store.
func NewMeasurementsHandler(s *store.Store) *MeasurementsHandler {
	return &MeasurementsHandler{store: s}
}

// ServeHTTP answers GET /api/sessions/{id}/measurements.
// Expected paths: /api/sessions/{id}/measurements
func (h *MeasurementsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse session ID from path: /api/sessions/{id}/measurements
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "measurements" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	sessionID := parts[0]

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.list(w, r, sessionID)
}

// Response types

type listMeasurementsResponse struct {
	Measurements []*store.Measurement `json:"measurements"`
}

// list handles GET /api/sessions/{id}/measurements
func (h *MeasurementsHandler) list(w http.ResponseWriter, r *http.Request, sessionID string) {
	measurements, err := h.store.Measurements().ListBySession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list measurements")
		return
	}

	if measurements == nil {
		measurements = []*store.Measurement{}
	}

	writeJSON(w, http.StatusOK, listMeasurementsResponse{Measurements: measurements})
}
