package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/courierlens/courierlens/internal/auth"
	"github.com/courierlens/courierlens/internal/dashboard"
	"github.com/courierlens/courierlens/internal/model"
	"github.com/courierlens/courierlens/internal/ratelimit"
)

// Server is the CourierLens HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	// Required dependencies.
	Dashboard *dashboard.Dashboard
	JWTMgr    *auth.JWTManager
	Logger    *slog.Logger

	// API-key hashes for POST /auth/token. Empty disables that role.
	AdminKeyHash  string
	ViewerKeyHash string

	// Optional rate limiter for the token endpoint (nil = disabled).
	RateLimiter ratelimit.Limiter

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	SourceName          string
	MaxRequestBodyBytes int64

	// Optional embedded OpenAPI YAML, served at /openapi.yaml.
	OpenAPISpec []byte
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		Dashboard:           cfg.Dashboard,
		JWTMgr:              cfg.JWTMgr,
		Logger:              cfg.Logger,
		AdminKeyHash:        cfg.AdminKeyHash,
		ViewerKeyHash:       cfg.ViewerKeyHash,
		Version:             cfg.Version,
		SourceName:          cfg.SourceName,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		OpenAPISpec:         cfg.OpenAPISpec,
	})

	mux := http.NewServeMux()

	// Request ID extractor for rate limit error responses.
	reqIDFunc := func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	}
	authRL := ratelimit.Middleware(cfg.RateLimiter, ratelimit.IPKeyFunc, reqIDFunc)

	// Token exchange (no auth required, rate limited by IP).
	mux.Handle("POST /auth/token", authRL(http.HandlerFunc(h.HandleAuthToken)))

	// Dashboard read and filter/page state (viewer+).
	readRole := requireRole(model.RoleViewer)
	mux.Handle("GET /v1/dashboard", readRole(http.HandlerFunc(h.HandleGetDashboard)))
	mux.Handle("PATCH /v1/filters/draft", readRole(http.HandlerFunc(h.HandleSetDraftField)))
	mux.Handle("POST /v1/filters/apply", readRole(http.HandlerFunc(h.HandleApplyFilters)))
	mux.Handle("POST /v1/filters/clear", readRole(http.HandlerFunc(h.HandleClearFilters)))
	mux.Handle("POST /v1/page", readRole(http.HandlerFunc(h.HandleChangePage)))
	mux.Handle("POST /v1/refresh", readRole(http.HandlerFunc(h.HandleRefresh)))

	// Tag mutation (admin-only).
	adminOnly := requireRole(model.RoleAdmin)
	mux.Handle("PATCH /v1/reviews/{id}/tags", adminOnly(http.HandlerFunc(h.HandleUpdateTags)))

	// OpenAPI spec (no auth).
	mux.HandleFunc("GET /openapi.yaml", h.HandleOpenAPISpec)

	// Health (no auth).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Middleware chain (outermost executes first):
	// request ID → security headers → tracing → logging → auth → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
