package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
	"github.com/Ahzem/ocr-agent/internal/scheduler"
)

// processRequest is the body of the processing endpoints. file_path and url
// are alternatives; when both are set the path wins.
type processRequest struct {
	FilePath string `json:"file_path"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
}

func (p processRequest) source() string {
	if p.FilePath != "" {
		return p.FilePath
	}
	return p.URL
}

func decodeProcessRequest(r *http.Request) (processRequest, error) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return processRequest{}, fmt.Errorf("%w: invalid JSON body: %v", common.ErrInvalidInput, err)
	}
	if req.source() == "" {
		return processRequest{}, fmt.Errorf("%w: file_path is required", common.ErrInvalidInput)
	}
	return req, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"message": "Insurance Certificate OCR API v2.0 🚀",
		"status":  "production",
		"endpoints": map[string]string{
			"/process":             "POST - Process PDF (sync)",
			"/process-async":       "POST - Process PDF (async)",
			"/result/{request_id}": "GET - Get async result",
			"/status/{request_id}": "GET - Get processing status",
			"/health":              "GET - Health check",
			"/metrics":             "GET - System metrics",
		},
	})
}

// handleProcess runs the whole workflow inline and answers with the result.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProcessRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.runSync(w, r, req)
}

// handleProcessURL is the URL-only alias for the synchronous endpoint.
func (s *Server) handleProcessURL(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProcessRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if req.URL == "" {
		s.respondError(w, fmt.Errorf("%w: url is required", common.ErrInvalidInput))
		return
	}
	req.FilePath = ""
	s.runSync(w, r, req)
}

func (s *Server) runSync(w http.ResponseWriter, r *http.Request, req processRequest) {
	start := time.Now()
	source := req.source()
	proc := entity.ProcessingRequest{
		ID:        entity.NewRequestID(source, start),
		Source:    source,
		Priority:  req.Priority,
		CreatedAt: start,
	}
	s.logger.Info("sync processing",
		zap.String("request_id", proc.ID),
		zap.String("source", source),
	)

	env := s.sched.Process(r.Context(), proc)
	if !env.Success {
		s.respond(w, http.StatusBadRequest, map[string]string{"detail": env.Error})
		return
	}

	message := "Certificate processed successfully"
	if env.Cached {
		message = "Certificate processed successfully (cached)"
	} else if env.Info != nil {
		env.Info.TotalMillis = time.Since(start).Milliseconds()
	}

	resp := map[string]any{
		"success": true,
		"message": message,
		"data":    []json.RawMessage{env.Data},
		"cached":  env.Cached,
	}
	if env.Info != nil {
		resp["processing_info"] = env.Info
	}
	if len(env.ValidationWarnings) > 0 {
		resp["validation_warnings"] = env.ValidationWarnings
	}
	if env.NeedsHumanReview {
		resp["needs_human_review"] = true
	}
	s.respond(w, http.StatusOK, resp)
}

// handleProcessAsync admits a request into the background queue and answers
// immediately with its ID and a rough wait estimate.
func (s *Server) handleProcessAsync(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProcessRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	proc, err := s.sched.Submit(r.Context(), req.source(), req.Priority)
	if err != nil {
		s.logger.Warn("submission rejected",
			zap.String("source", req.source()),
			zap.Error(err),
		)
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"success":                true,
		"request_id":             proc.ID,
		"status":                 string(entity.StatusQueued),
		"estimated_wait_minutes": s.sched.QueueDepth() / 10,
	})
}

// handleResult serves the terminal envelope for an async request. An
// unknown or still-running request reads as processing so clients can poll
// without special-casing.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	env, ok := s.sched.Result(r.Context(), id)
	if !ok {
		s.respond(w, http.StatusOK, map[string]any{
			"status":     string(entity.StatusProcessing),
			"message":    "Processing in progress or request not found",
			"request_id": id,
		})
		return
	}

	if env.Success {
		resp := map[string]any{
			"status":     string(entity.StatusCompleted),
			"success":    true,
			"data":       []json.RawMessage{env.Data},
			"request_id": id,
			"cached":     env.Cached,
		}
		if env.Info != nil {
			resp["processing_info"] = env.Info
		}
		if len(env.ValidationWarnings) > 0 {
			resp["validation_warnings"] = env.ValidationWarnings
		}
		if env.NeedsHumanReview {
			resp["needs_human_review"] = true
		}
		s.respond(w, http.StatusOK, resp)
		return
	}

	resp := map[string]any{
		"status":     string(entity.StatusFailed),
		"success":    false,
		"error":      env.Error,
		"request_id": id,
	}
	if env.RawResponse != "" {
		resp["raw_response"] = env.RawResponse
	}
	if env.NeedsHumanReview {
		resp["needs_human_review"] = true
	}
	s.respond(w, http.StatusOK, resp)
}

// handleStatus serves the small lifecycle record for a request ID.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	st, ok := s.sched.Status(r.Context(), id)
	if !ok {
		s.respond(w, http.StatusNotFound, map[string]string{"detail": "Request not found"})
		return
	}
	if st == entity.StatusCompleted {
		s.respond(w, http.StatusOK, map[string]string{
			"status":  string(st),
			"message": "Processing completed. Check result endpoint.",
		})
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"status": string(st)})
}

// handleHealth reports the resource snapshot plus dependency reachability.
// An unhealthy snapshot answers 503 so load balancers stop routing here
// while the service is refusing work.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.sched.Health(r.Context())

	status := "healthy"
	code := http.StatusOK
	redisState := "connected"
	if err := s.store.Ping(r.Context()); err != nil {
		redisState = "disconnected"
		status = "degraded"
	}
	if !snap.Healthy {
		status = "overloaded"
		code = http.StatusServiceUnavailable
	}

	s.respond(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"redis":      redisState,
			"gemini_api": "available",
		},
		"resources": snap,
	})
}

type metricsResponse struct {
	Timestamp string `json:"timestamp"`
	scheduler.Metrics
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, metricsResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metrics:   s.sched.Metrics(r.Context()),
	})
}
