// Package server provides the HTTP server for the gonio measurement dashboard.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nmehta/gonio/internal/capture"
	"github.com/nmehta/gonio/internal/server/api"
	"github.com/nmehta/gonio/internal/session"
	"github.com/nmehta/gonio/internal/store"
)

// Config lists the server's backing components. All of them are optional;
// a nil component leaves its routes unregistered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Camera     capture.Camera
	Controller *session.Controller
	Driver     api.SessionDriver
}

// Server serves the dashboard, the session API and the live endpoints.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New builds a Server around the given components.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes registers each route only when its backing component is
// present, so a partially wired server degrades to what it can serve
// instead of panicking on nil.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessionHandler := api.NewSessionHandler(s.config.Store, s.config.Driver)
		measurementsHandler := api.NewMeasurementsHandler(s.config.Store)
		goalHandler := api.NewGoalHandler(s.config.Store)

		// /api/sessions/{id}/measurements belongs to the measurements
		// handler, everything else under /api/sessions to the session one.
		sessionRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/measurements") {
				measurementsHandler.ServeHTTP(w, r)
				return
			}
			sessionHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/sessions", sessionRouter)
		s.mux.Handle("/api/sessions/", sessionRouter)
		s.mux.Handle("/api/goals", goalHandler)
		s.mux.Handle("/api/goals/", goalHandler)
	}

	if s.config.Controller != nil {
		s.mux.Handle("/api/live", NewLiveHandler(s.config.Controller))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth reports process health and whether live capture is wired,
// so the dashboard can tell a browse-only server from a measuring one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
		Live   bool   `json:"live"`
	}{
		Status: "ok",
		Uptime: time.Since(s.start).String(),
		Live:   s.config.Driver != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
