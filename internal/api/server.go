// Package api exposes the catalog, purchase flow, and lesson sessions over
// HTTP for the browser frontend.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upskilleo/learning-engine/internal/catalog"
	"github.com/upskilleo/learning-engine/internal/events"
	"github.com/upskilleo/learning-engine/internal/grading"
	"github.com/upskilleo/learning-engine/internal/purchases"
	"github.com/upskilleo/learning-engine/internal/session"
)

// userHeader identifies the client; there is no real authentication behind
// it, the engine only needs a stable key for purchase and session state.
const userHeader = "X-User-ID"

// SessionDefaults carries the engine tuning applied to every new session.
type SessionDefaults struct {
	Grader              grading.Grader
	PollInterval        time.Duration
	Tolerance           float64
	FeedbackResumeDelay time.Duration
	AutoAdvanceDelay    time.Duration
}

// Server wires the HTTP surface to the engine services.
type Server struct {
	catalog   *catalog.Loader
	purchases *purchases.Service
	events    events.Logger
	sessions  *Registry
	defaults  SessionDefaults
}

// NewServer creates the API server.
func NewServer(cat *catalog.Loader, svc *purchases.Service, logger events.Logger, defaults SessionDefaults) *Server {
	if logger == nil {
		logger = events.NopLogger{}
	}
	return &Server{
		catalog:   cat,
		purchases: svc,
		events:    logger,
		sessions:  NewRegistry(),
		defaults:  defaults,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", userHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz)

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/courses", s.handleListCourses)
		ar.Get("/courses/{courseID}", s.handleGetCourse)
		ar.Post("/courses/{courseID}/purchase", s.handlePurchase)
		ar.Get("/dashboard", s.handleDashboard)
		ar.Post("/login", s.handleLogin)
		ar.Post("/logout", s.handleLogout)

		ar.Post("/sessions", s.handleCreateSession)
		ar.Route("/sessions/{sessionID}", func(sr chi.Router) {
			sr.Get("/", s.handleSessionStatus)
			sr.Delete("/", s.handleCloseSession)
			sr.Post("/select", s.handleSelectLesson)
			sr.Post("/play", s.handlePlay)
			sr.Post("/pause", s.handlePause)
			sr.Post("/seek", s.handleSeek)
			sr.Post("/volume", s.handleVolume)
			sr.Post("/code", s.handleCode)
			sr.Post("/submit", s.handleSubmit)
			sr.Post("/skip", s.handleSkip)
			sr.Post("/resume", s.handleResume)
			sr.Post("/fullscreen", s.handleFullscreen)
		})
	})

	return r
}

// Close shuts down all live sessions.
func (s *Server) Close() {
	s.sessions.CloseAll()
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func userID(r *http.Request) string {
	if id := r.Header.Get(userHeader); id != "" {
		return id
	}
	return "guest"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) newSession(course catalog.Course, user string, notifier session.Notifier) *session.Session {
	return session.New(session.Config{
		Course:              course,
		UserID:              user,
		Grader:              s.defaults.Grader,
		Events:              s.events,
		Notifier:            notifier,
		PollInterval:        s.defaults.PollInterval,
		Tolerance:           s.defaults.Tolerance,
		FeedbackResumeDelay: s.defaults.FeedbackResumeDelay,
		AutoAdvanceDelay:    s.defaults.AutoAdvanceDelay,
	})
}
