package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nmehta/gonio/internal/angle"
	"github.com/nmehta/gonio/internal/geom"
	"github.com/nmehta/gonio/internal/store"
)

// GoalHandler handles HTTP requests for range-of-motion goal resources.
type GoalHandler struct {
	store *store.Store
}

// NewGoalHandler creates a new GoalHandler with the given store.
func NewGoalHandler(s *store.Store) *GoalHandler {
	return &GoalHandler{store: s}
}

// ServeHTTP routes collection requests to list/create and item requests
// to get/update/delete.
func (h *GoalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/goals or /api/goals/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/goals")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/goals
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

	// Item endpoint: /api/goals/{id}
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

type createGoalRequest struct {
	Channel         string     `json:"channel"`
	TargetDegrees   float64    `json:"target_degrees"`
	BaselineDegrees float64    `json:"baseline_degrees"`
	Deadline        *time.Time `json:"deadline"`
	Enabled         *bool      `json:"enabled"`
}

type updateGoalRequest struct {
	Channel         string     `json:"channel"`
	TargetDegrees   float64    `json:"target_degrees"`
	BaselineDegrees *float64   `json:"baseline_degrees"`
	Deadline        *time.Time `json:"deadline"`
	Enabled         *bool      `json:"enabled"`
}

type goalResponse struct {
	ID              string  `json:"id"`
	Channel         string  `json:"channel"`
	TargetDegrees   float64 `json:"target_degrees"`
	BaselineDegrees float64 `json:"baseline_degrees"`
	Deadline        string  `json:"deadline,omitempty"`
	Enabled         bool    `json:"enabled"`
	CreatedAt       string  `json:"created_at"`
	BestDegrees     float64 `json:"best_degrees"`
	Progress        float64 `json:"progress"`
}

type listGoalsResponse struct {
	Goals []goalResponse `json:"goals"`
}

// toGoalResponse converts a store.Goal to a goalResponse, folding in the
// best recorded value for the goal's channel.
func toGoalResponse(g *store.Goal, best float64) goalResponse {
	resp := goalResponse{
		ID:              g.ID,
		Channel:         g.Channel,
		TargetDegrees:   g.TargetDegrees,
		BaselineDegrees: g.BaselineDegrees,
		Enabled:         g.Enabled,
		CreatedAt:       g.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		BestDegrees:     best,
		Progress:        goalProgress(g, best),
	}
	if g.Deadline != nil {
		resp.Deadline = g.Deadline.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// goalProgress reports how far the best recorded value has moved from the
// baseline toward the target, clamped to [0, 1].
func goalProgress(g *store.Goal, best float64) float64 {
	span := g.TargetDegrees - g.BaselineDegrees
	if span <= 0 {
		if best >= g.TargetDegrees {
			return 1
		}
		return 0
	}
	return geom.RoundTo(geom.Clamp((best-g.BaselineDegrees)/span, 0, 1), 2)
}

// validChannel reports whether ch names one of the measured channels.
func validChannel(ch string) bool {
	for _, known := range angle.Channels() {
		if ch == string(known) {
			return true
		}
	}
	return false
}

// bestDegrees looks up the highest value ever recorded for a channel.
func (h *GoalHandler) bestDegrees(channel string) (float64, error) {
	return h.store.Measurements().MaxDegrees(angle.Channel(channel))
}

// list handles GET /api/goals and returns all goals with progress.
func (h *GoalHandler) list(w http.ResponseWriter, r *http.Request) {
	goals, err := h.store.Goals().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}

	response := listGoalsResponse{
		Goals: make([]goalResponse, 0, len(goals)),
	}

	for _, g := range goals {
		best, err := h.bestDegrees(g.Channel)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute progress")
			return
		}
		response.Goals = append(response.Goals, toGoalResponse(g, best))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/goals/{id} and returns a single goal with progress.
func (h *GoalHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	goal, err := h.store.Goals().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Goal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get goal")
		return
	}

	best, err := h.bestDegrees(goal.Channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute progress")
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(goal, best))
}

// create handles POST /api/goals and creates a new goal.
func (h *GoalHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if !validChannel(req.Channel) {
		writeError(w, http.StatusBadRequest, "Invalid channel")
		return
	}
	if req.TargetDegrees <= 0 {
		writeError(w, http.StatusBadRequest, "target_degrees must be positive")
		return
	}

	// Goals default to enabled
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	// Check for a competing enabled goal
	if enabled {
		existing, err := h.store.Goals().GetEnabledByChannel(req.Channel)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check existing goal")
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "An enabled goal already exists for this channel")
			return
		}
	}

	goal := &store.Goal{
		ID:              uuid.New().String(),
		Channel:         req.Channel,
		TargetDegrees:   req.TargetDegrees,
		BaselineDegrees: req.BaselineDegrees,
		Deadline:        req.Deadline,
		Enabled:         enabled,
	}

	if err := h.store.Goals().Create(goal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}

	best, err := h.bestDegrees(goal.Channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute progress")
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(goal, best))
}

// update handles PUT /api/goals/{id} and updates an existing goal.
func (h *GoalHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	// First, get the existing goal
	goal, err := h.store.Goals().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Goal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get goal")
		return
	}

	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Channel != "" {
		if !validChannel(req.Channel) {
			writeError(w, http.StatusBadRequest, "Invalid channel")
			return
		}
		goal.Channel = req.Channel
	}
	if req.TargetDegrees != 0 {
		goal.TargetDegrees = req.TargetDegrees
	}
	if req.BaselineDegrees != nil {
		goal.BaselineDegrees = *req.BaselineDegrees
	}
	if req.Deadline != nil {
		goal.Deadline = req.Deadline
	}
	if req.Enabled != nil {
		goal.Enabled = *req.Enabled
	}

	// The enabled goal for a channel must stay unique
	if goal.Enabled {
		existing, err := h.store.Goals().GetEnabledByChannel(goal.Channel)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check existing goal")
			return
		}
		if existing != nil && existing.ID != goal.ID {
			writeError(w, http.StatusConflict, "An enabled goal already exists for this channel")
			return
		}
	}

	if err := h.store.Goals().Update(goal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update goal")
		return
	}

	best, err := h.bestDegrees(goal.Channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute progress")
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(goal, best))
}

// delete handles DELETE /api/goals/{id} and removes a goal.
func (h *GoalHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Goals().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Goal not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
