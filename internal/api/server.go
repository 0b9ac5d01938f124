// File path: internal/api/server.go

// Package api exposes the property insights pipeline over HTTP.
package api

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/insights"
)

type Server struct {
	router   chi.Router
	pipeline *insights.Pipeline
	cfg      Config
}

// Config bounds inbound requests.
type Config struct {
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// DefaultConfig returns the standard configuration used when no overrides are
// provided.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 2 * time.Minute,
	}
}

// Merge overlays positive values from the override onto the base
// configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if override.MaxBodyBytes > 0 {
		result.MaxBodyBytes = override.MaxBodyBytes
	}
	if override.RequestTimeout > 0 {
		result.RequestTimeout = override.RequestTimeout
	}
	return result
}

func NewServer(pipeline *insights.Pipeline, cfg *Config) (*Server, error) {
	logger := common.Logger()
	if pipeline == nil {
		return nil, fmt.Errorf("insights pipeline required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	logger.Info(
		"api: building server",
		"categories", len(pipeline.Policy().Routes),
		"max_body_bytes", configuration.MaxBodyBytes,
		"request_timeout", configuration.RequestTimeout,
	)
	srv := &Server{
		router:   chi.NewRouter(),
		pipeline: pipeline,
		cfg:      configuration,
	}
	srv.routes()
	logger.Info("api: server ready", "routes", true)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr, "request_id", middleware.GetReqID(r.Context()))
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/api/property-insights", s.handleInsights)
	s.router.Get("/api/property-insights", s.handleReadiness)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Method(http.MethodGet, "/debug/vars", expvar.Handler())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	body := errorResponse{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	writeJSON(w, status, body)
}
