// Package api provides the HTTP API server for ProofLens.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/logging"
	"github.com/prooflens/prooflens/internal/storage"
	"github.com/prooflens/prooflens/internal/verify"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	pipeline *verify.Pipeline
	db       *storage.DB
	wsHub    *WebSocketHub

	verificationStore *storage.VerificationStore
}

// Config for the server
type Config struct {
	Port     int
	Pipeline *verify.Pipeline
	DB       *storage.DB
}

// New creates a new API server
func New(cfg Config) *Server {
	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = verify.NewPipeline(verify.Config{})
	}

	s := &Server{
		pipeline:          pipeline,
		db:                cfg.DB,
		verificationStore: storage.NewVerificationStore(cfg.DB),
		wsHub:             NewWebSocketHub(),
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/verifications", s.handleCreateVerification)
		r.Get("/verifications", s.handleListVerifications)
		r.Get("/verifications/{verificationID}", s.handleGetVerification)
		r.Delete("/verifications/{verificationID}", s.handleDeleteVerification)
		r.Get("/stats", s.handleGetStats)
	})

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket for verification events
	r.Get("/ws", s.wsHub.HandleWS)

	s.router = r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Start WebSocket hub
	go s.wsHub.Run()

	logging.Info("API server starting on http://localhost%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Broadcast sends a message to all WebSocket clients
func (s *Server) Broadcast(msgType string, data interface{}) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// --- Verification handlers ---

type createVerificationRequest struct {
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleCreateVerification(w http.ResponseWriter, r *http.Request) {
	var req createVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	task, err := buildTask(req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "image_base64 is not valid base64")
		return
	}

	id := uuid.New().String()
	onProgress := func(p verify.Progress) {
		s.Broadcast("verification.progress", map[string]interface{}{
			"id":       id,
			"phase":    p.Phase,
			"fraction": p.Fraction,
		})
	}

	result, err := s.pipeline.Verify(r.Context(), task, imageData, onProgress)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	v := &core.Verification{
		ID:              id,
		Status:          result.Status,
		Task:            task,
		Completed:       result.Completed,
		Confidence:      result.Confidence,
		Feedback:        result.Feedback,
		MatchedElements: result.MatchedElements,
		Features:        result.Features,
		ImageHash:       result.ImageHash,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.verificationStore.Create(v); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Broadcast("verification.completed", v)
	s.respondJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var (
		list []*core.Verification
		err  error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		list, err = s.verificationStore.ListByCategory(core.TaskCategory(category), limit)
	} else {
		list, err = s.verificationStore.List(limit)
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if list == nil {
		list = []*core.Verification{}
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "verificationID")
	v, err := s.verificationStore.GetByID(id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVerification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "verificationID")
	if err := s.verificationStore.Delete(id); err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.verificationStore.GetStats()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// buildTask validates the request into a task descriptor.
func buildTask(req createVerificationRequest) (core.TaskDescriptor, error) {
	if req.Title == "" {
		return core.TaskDescriptor{}, core.ErrMissingTitle
	}

	category := core.TaskCategory(req.Category)
	if req.Category == "" {
		category = core.CategoryOther
	} else if !validCategory(category) {
		return core.TaskDescriptor{}, core.ErrInvalidCategory
	}

	priority := core.Priority(req.Priority)
	if req.Priority == "" {
		priority = core.PriorityMedium
	} else if priority != core.PriorityLow && priority != core.PriorityMedium && priority != core.PriorityHigh {
		return core.TaskDescriptor{}, core.ErrInvalidPriority
	}

	return core.TaskDescriptor{
		Title:    req.Title,
		Notes:    req.Notes,
		Category: category,
		Priority: priority,
	}, nil
}

func validCategory(category core.TaskCategory) bool {
	for _, c := range core.Categories {
		if c == category {
			return true
		}
	}
	return false
}
