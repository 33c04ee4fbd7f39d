// Package server exposes the fact-check pipeline over HTTP: a
// single-page chat UI plus a small JSON API for verification, stats,
// and example claims.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"factagent/internal/config"
	"factagent/internal/memory"
	"factagent/internal/pipeline"
	"factagent/internal/session"
)

// Server serves the fact-check UI and API.
type Server struct {
	cfg      config.ServerConfig
	pipeline *pipeline.Pipeline
	store    *memory.Store
	tracker  *session.Tracker
	logger   *zap.Logger

	sessionID string
	httpSrv   *http.Server
}

// New creates a server. The store may be nil (stats fall back to
// session counters only).
func New(cfg config.ServerConfig, p *pipeline.Pipeline, store *memory.Store, tracker *session.Tracker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:       cfg,
		pipeline:  p,
		store:     store,
		tracker:   tracker,
		logger:    logger.Named("server"),
		sessionID: fmt.Sprintf("web-%d", time.Now().Unix()),
	}
	if store != nil {
		if err := store.CreateSession(s.sessionID, "web"); err != nil {
			s.logger.Warn("failed to create web session", zap.Error(err))
		}
	}
	return s
}

// SessionID returns the store session this server writes under.
func (s *Server) SessionID() string {
	return s.sessionID
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Post("/verify/image", s.handleVerifyImage)
		r.Get("/stats", s.handleStats)
		r.Get("/examples", s.handleExamples)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  parseDurationOr(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: parseDurationOr(s.cfg.WriteTimeout, 5*time.Minute),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownTimeout := parseDurationOr(s.cfg.ShutdownTimeout, 10*time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if s.tracker != nil {
		if err := s.tracker.Save(); err != nil {
			s.logger.Warn("failed to persist session stats", zap.Error(err))
		}
	}
	return nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
