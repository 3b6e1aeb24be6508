package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/skillpath/interview-engine/internal/catalog"
	"github.com/skillpath/interview-engine/internal/config"
	"github.com/skillpath/interview-engine/internal/interview"
	"github.com/skillpath/interview-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	service        interview.Service
	repo           storage.Repository
	catalogLoader  *catalog.Loader
	authMiddleware *AuthMiddleware

	roomsMu sync.Mutex
	rooms   map[string]*room
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	service interview.Service,
	repo storage.Repository,
	loader *catalog.Loader,
	jwtSecret string,
) *Server {
	s := &Server{
		config:         cfg,
		service:        service,
		repo:           repo,
		catalogLoader:  loader,
		authMiddleware: NewAuthMiddleware(jwtSecret),
		rooms:          make(map[string]*room),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		// Interview sessions
		r.Route("/interviews", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Patch("/", s.handleUpdateSession)
				r.Post("/assign", s.handleAssignInterviewer)
				r.Post("/status", s.handleTransitionSession)

				r.Post("/feedback", s.handleSubmitFeedback)
				r.Get("/feedback", s.handleGetSessionFeedback)
				r.Get("/summary", s.handleGetSessionSummary)

				r.Get("/room", s.handleRoomWS)
			})
		})

		// Per-user feedback aggregates
		r.Get("/users/{id}/feedback-summary", s.handleGetUserSummary)

		// Interview-type catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleListCatalog)
			r.Get("/{type}", s.handleGetCatalogProfile)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
