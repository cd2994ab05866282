// Package api serves the HTTP surface: REST settings and preset endpoints,
// controller status, and the WebSocket event stream.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/KarimImran/quadcast2-go/internal/database/repositories"
	"github.com/KarimImran/quadcast2-go/internal/logging"
	"github.com/KarimImran/quadcast2-go/internal/services/controller"
	"github.com/KarimImran/quadcast2-go/internal/services/pubsub"
	"github.com/KarimImran/quadcast2-go/internal/services/settings"
)

var logger = logging.New("api")

// Config holds the API surface configuration.
type Config struct {
	CORSOrigin string
	DebugCORS  bool
	Version    string
}

// Server wires the HTTP handlers to the settings store, the control loop,
// the preset library, and the event bus.
type Server struct {
	store      *settings.Store
	controller *controller.Controller
	presets    *repositories.PresetRepository
	events     *pubsub.PubSub

	corsOrigin string
	debugCORS  bool
	version    string
	started    time.Time
}

// NewServer creates the API server.
func NewServer(store *settings.Store, ctrl *controller.Controller, presets *repositories.PresetRepository, events *pubsub.PubSub, cfg Config) *Server {
	return &Server{
		store:      store,
		controller: ctrl,
		presets:    presets,
		events:     events,
		corsOrigin: cfg.CORSOrigin,
		debugCORS:  cfg.DebugCORS,
		version:    cfg.Version,
		started:    time.Now(),
	}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{s.corsOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            s.debugCORS,
	})
	router.Use(corsMiddleware.Handler)

	// REST routes carry a request timeout; the WebSocket route must outlive it
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Route("/api", func(r chi.Router) {
			r.Get("/settings", s.handleGetSettings)
			r.Patch("/settings", s.handlePatchSettings)
			r.Get("/status", s.handleGetStatus)
			r.Route("/presets", func(r chi.Router) {
				r.Get("/", s.handleListPresets)
				r.Post("/", s.handleCreatePreset)
				r.Get("/export", s.handleExportPresets)
				r.Post("/import", s.handleImportPresets)
				r.Get("/{id}", s.handleGetPreset)
				r.Delete("/{id}", s.handleDeletePreset)
				r.Post("/{id}/apply", s.handleApplyPreset)
			})
		})
	})
	router.Get("/ws", s.handleWebSocket)

	return router
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
