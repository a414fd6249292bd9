// Package server runs the standalone documentation server: the document of
// a route manifest served over HTTP with health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vitalvas/oasdocs/docs"
	"github.com/vitalvas/oasdocs/internal/config"
	"github.com/vitalvas/oasdocs/internal/manifest"
	"github.com/vitalvas/oasdocs/muxhandlers"
)

const (
	healthPath  = "/healthz"
	metricsPath = "/metrics"

	readHeaderTimeout = 10 * time.Second
)

// Server serves the document of one manifest together with the health and
// metrics endpoints.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	docs    *docs.Docs
	handler http.Handler
}

// New builds the router for m and builds its document. A nil manifest
// serves a document without paths; a nil registry gets a fresh one.
func New(cfg *config.Config, m *manifest.Manifest, logger *zap.Logger, reg *prometheus.Registry) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = &manifest.Manifest{}
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		docs: docs.New(docs.Config{
			Prefix:              cfg.Docs.Prefix,
			OpenAPI:             m.Seed(),
			SkipUI:              cfg.Docs.SkipUI,
			IgnoreTrailingSlash: cfg.Docs.IgnoreTrailingSlash,
			Logger:              logger,
			Registerer:          reg,
		}),
	}

	r := mux.NewRouter()

	middlewares, err := s.middlewares()
	if err != nil {
		return nil, err
	}
	r.Use(middlewares...)

	s.docs.Route(r.HandleFunc(healthPath, s.health).Methods(http.MethodGet, http.MethodHead)).Hide()
	s.docs.Route(r.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
	})).Methods(http.MethodGet)).Hide()

	if err := m.Apply(s.docs); err != nil {
		return nil, fmt.Errorf("server: applying manifest: %w", err)
	}

	s.docs.Handle(r)
	if err := s.docs.Ready(r); err != nil {
		return nil, fmt.Errorf("server: building document: %w", err)
	}

	s.handler = r
	if len(cfg.HTTP.CORSOrigins) > 0 {
		s.handler, err = muxhandlers.CORSHandler(muxhandlers.CORSConfig{
			AllowedOrigins: cfg.HTTP.CORSOrigins,
			MaxAge:         time.Hour,
		}, r)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Server) middlewares() ([]mux.MiddlewareFunc, error) {
	out := []mux.MiddlewareFunc{
		muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
			Generate:      muxhandlers.GenerateUUIDv7,
			TrustIncoming: true,
		}),
		muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{Logger: s.logger, Stack: true}),
	}

	if s.cfg.HTTP.AccessLog {
		out = append(out, muxhandlers.AccessLogMiddleware(muxhandlers.AccessLogConfig{
			Logger: s.logger.Named("access"),
			Skip: func(r *http.Request) bool {
				return r.URL.Path == healthPath || r.URL.Path == metricsPath
			},
		}))
	}

	security, err := muxhandlers.SecurityHeadersMiddleware(muxhandlers.SecurityHeadersConfig{
		FrameOption:           s.cfg.HTTP.FrameOption,
		ContentSecurityPolicy: s.cfg.HTTP.ContentSecurityPolicy,
		HSTSMaxAge:            s.cfg.HTTP.HSTSMaxAge,
	})
	if err != nil {
		return nil, err
	}

	hostname, err := muxhandlers.ServerMiddleware(muxhandlers.ServerConfig{
		Hostname:    s.cfg.HTTP.Hostname,
		HostnameEnv: []string{"POD_NAME", "HOSTNAME"},
	})
	if err != nil {
		return nil, fmt.Errorf("server: resolving hostname: %w", err)
	}

	// Documents, the UI page and its assets follow the configured lifetime.
	// Health and metrics are plain text and stay uncached.
	maxAge := s.cfg.HTTP.CacheMaxAge
	cache, err := muxhandlers.CacheControlMiddleware(muxhandlers.CacheControlConfig{
		Rules: []muxhandlers.CacheControlRule{
			{ContentType: "application/json", MaxAge: maxAge},
			{ContentType: "text/yaml", MaxAge: maxAge},
			{ContentType: "text/html", MaxAge: maxAge},
			{ContentType: "text/javascript", MaxAge: maxAge},
			{ContentType: "application/javascript", MaxAge: maxAge},
			{ContentType: "text/css", MaxAge: maxAge},
		},
	})
	if err != nil {
		return nil, err
	}

	compression, err := muxhandlers.CompressionMiddleware(muxhandlers.CompressionConfig{
		MinLength: s.cfg.HTTP.CompressMinSize,
	})
	if err != nil {
		return nil, err
	}

	return append(out, security, hostname, cache, compression), nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !s.docs.Built() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("building\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Docs returns the documentation instance of the server.
func (s *Server) Docs() *docs.Docs {
	return s.docs
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("docs_prefix", s.docs.Prefix()),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down", zap.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: serve: %w", err)
	}
	return nil
}
