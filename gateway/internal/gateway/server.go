package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/copperline/console/client/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server proxies the dashboard API surface to the sales agent backend, adding
// the overview cache, rate limiting, and the workflow stream relay.
type Server struct {
	router  *chi.Mux
	client  *api.Client
	cache   *StatusCache
	limiter *RateLimiter
	cfg     Config
	log     *slog.Logger
	srv     *http.Server
}

// NewServer creates the gateway HTTP server.
func NewServer(cfg Config, client *api.Client, cache *StatusCache, log *slog.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		client:  client,
		cache:   cache,
		limiter: NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		cfg:     cfg,
		log:     log,
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the workflow stream relay holds the response
		// open for the full run.
	}

	return s
}

// setupRoutes configures middleware and all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.metricsMiddleware)
		r.Use(s.limiter.Middleware)

		r.Get("/overview", s.handleOverview)
		r.Get("/sessions", s.handleSessions)
		r.Get("/sessions/{sessionID}", s.handleSession)
		r.Get("/sessions/{sessionID}/leads", s.handleSessionLeads)
		r.Get("/leads", s.handleLeads)
		r.Post("/workflow/stream", s.handleWorkflowStream)
	})

	if s.cfg.EnablePprof {
		s.router.Mount("/debug", middleware.Profiler())
	}
}

// metricsMiddleware records request counts and latency per chi route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// handleReadyz reports readiness. The gateway is ready once the status cache
// has completed at least one refresh, regardless of backend health; section
// errors are visible in the overview itself.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.cache.Overview(); !ok {
		writeError(w, http.StatusServiceUnavailable, "overview not yet refreshed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOverview serves the cached dashboard overview.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, ok := s.cache.Overview()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "overview not yet refreshed")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.client.Sessions(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	session, err := s.client.Session(r.Context(), id)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSessionLeads(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	leads, err := s.client.SessionLeads(r.Context(), id)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	page, err := s.client.Leads(r.Context(), parseLeadsParams(r))
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// upstreamError maps a backend failure onto the proxied response. Backend
// HTTP errors keep their status code; transport failures become 502.
func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	s.log.Warn("upstream request failed", "path", r.URL.Path, "status", status, "error", err)
	writeError(w, status, err.Error())
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting gateway HTTP server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down gateway HTTP server")
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
