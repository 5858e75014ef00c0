// Package server is the inbound HTTP surface: the processing endpoints plus
// the status, result, health, metrics, and banner routes, with CORS and a
// per-client rate ceiling in front.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Ahzem/ocr-agent/internal/cache"
	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/scheduler"
)

type Server struct {
	cfg     common.ServerConfig
	sched   *scheduler.Scheduler
	store   *cache.Store
	limiter *clientLimiter
	logger  *zap.Logger
	httpSrv *http.Server
}

func NewServer(cfg common.ServerConfig, sched *scheduler.Scheduler, store *cache.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, sched: sched, store: store, logger: logger}
	if cfg.ClientRatePerMinute > 0 {
		s.limiter = newClientLimiter(cfg.ClientRatePerMinute)
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(s.rateLimit)

	r.Get("/", s.handleRoot)
	r.Post("/process", s.handleProcess)
	r.Post("/process-url", s.handleProcessURL)
	r.Post("/process-async", s.handleProcessAsync)
	r.Get("/result/{requestID}", s.handleResult)
	r.Get("/status/{requestID}", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	return r
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start serves until Shutdown is called. A closed-server return is not an
// error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests up
// to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response encode failed", zap.Error(err))
	}
}

// respondError maps domain sentinels onto HTTP status codes and writes a
// detail body with the reason.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.respond(w, common.HTTPStatus(err), map[string]string{"detail": err.Error()})
}
