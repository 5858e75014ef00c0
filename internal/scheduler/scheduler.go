package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Ahzem/ocr-agent/internal/cache"
	"github.com/Ahzem/ocr-agent/internal/chunk"
	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
	"github.com/Ahzem/ocr-agent/internal/fetch"
	"github.com/Ahzem/ocr-agent/internal/llm"
	"github.com/Ahzem/ocr-agent/internal/monitor"
	"github.com/Ahzem/ocr-agent/internal/validate"
)

// Extraction method labels stamped into processing_info. The unvalidated
// variant marks results that failed a validation gate and carry warnings
// instead of a confidence score.
const (
	methodValidated   = "enhanced_hybrid"
	methodUnvalidated = "enhanced_hybrid_unvalidated"
)

// Deps carries the scheduler's collaborators. Queue, Stats, and Log default
// when nil; the rest are required.
type Deps struct {
	Config         common.SchedulerConfig
	MaxSourceBytes int64 // size gate for local sources, 0 disables
	Queue          *Queue
	Stats          *Stats
	Prober         Prober
	Store          *cache.Store
	Fetcher        Fetcher
	Extractor      Extractor
	Limiter        Limiter
	Inference      llm.Extractor
	Validator      *validate.Pipeline
	Log            *slog.Logger
}

// Scheduler owns admission and the per-request workflow. One Run loop
// dispatches queued requests to a permit-limited pool of workers; Process
// is also callable inline for the synchronous endpoint.
type Scheduler struct {
	cfg       common.SchedulerConfig
	maxBytes  int64
	queue     *Queue
	stats     *Stats
	prober    Prober
	store     *cache.Store
	fetcher   Fetcher
	extractor Extractor
	limiter   Limiter
	inference llm.Extractor
	validator *validate.Pipeline
	log       *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

func New(d Deps) *Scheduler {
	cfg := d.Config
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.ChunkBudget <= 0 {
		cfg.ChunkBudget = 6000
	}
	queue := d.Queue
	if queue == nil {
		queue = NewQueue(cfg.QueueCapacity, cfg.EnqueueTimeout)
	}
	stats := d.Stats
	if stats == nil {
		stats = NewStats(queue)
	}
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	prober := d.Prober
	if prober == nil {
		prober = alwaysHealthy{}
	}
	return &Scheduler{
		cfg:       cfg,
		maxBytes:  d.MaxSourceBytes,
		queue:     queue,
		stats:     stats,
		prober:    prober,
		store:     d.Store,
		fetcher:   d.Fetcher,
		extractor: d.Extractor,
		limiter:   d.Limiter,
		inference: d.Inference,
		validator: d.Validator,
		log:       log,
		sem:       make(chan struct{}, cfg.MaxConcurrent),
	}
}

// alwaysHealthy stands in when no resource monitor is wired.
type alwaysHealthy struct{}

func (alwaysHealthy) Snapshot(context.Context) monitor.Snapshot {
	return monitor.Snapshot{Healthy: true}
}

// Submit admits a request for background processing. Admission fails fast
// with an overload error when the health snapshot is unhealthy or the queue
// stays full past the enqueue timeout; oversized local sources are rejected
// before they take a queue slot.
func (s *Scheduler) Submit(ctx context.Context, source string, priority int) (entity.ProcessingRequest, error) {
	snap := s.prober.Snapshot(ctx)
	if !snap.Healthy {
		s.log.Warn("scheduler.reject.unhealthy",
			"memory_used_ratio", snap.MemoryUsedRatio,
			"cpu_busy_ratio", snap.CPUBusyRatio,
			"active_work", snap.ActiveWork,
		)
		return entity.ProcessingRequest{}, fmt.Errorf("%w: system resources exhausted", common.ErrOverloaded)
	}
	if err := s.gateSourceSize(source); err != nil {
		return entity.ProcessingRequest{}, err
	}

	now := time.Now()
	req := entity.ProcessingRequest{
		ID:        entity.NewRequestID(source, now),
		Source:    source,
		Priority:  priority,
		CreatedAt: now,
	}
	if err := s.queue.Enqueue(ctx, req); err != nil {
		s.log.Warn("scheduler.reject.queue_full", "request_id", req.ID, "queue_depth", s.queue.Depth())
		return entity.ProcessingRequest{}, err
	}
	s.store.SetStatus(ctx, req.ID, entity.StatusQueued)
	s.log.Info("scheduler.submit",
		"request_id", req.ID,
		"priority", req.Priority,
		"queue_depth", s.queue.Depth(),
	)
	return req, nil
}

// gateSourceSize rejects local sources over the byte ceiling. Remote URLs
// are gated by the fetcher during download; unreadable paths pass here and
// fail inside the workflow instead.
func (s *Scheduler) gateSourceSize(source string) error {
	if s.maxBytes <= 0 || fetch.IsURL(source) {
		return nil
	}
	st, err := os.Stat(source)
	if err != nil {
		return nil
	}
	if st.Size() > s.maxBytes {
		return fmt.Errorf("source is %d bytes (limit %d): %w", st.Size(), s.maxBytes, common.ErrFileTooLarge)
	}
	return nil
}

// Run drains the queue until ctx is done, then waits for in-flight workers.
// Each dequeued request takes a concurrency permit before its workflow
// starts; the permit is released when the workflow finishes, either way.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("scheduler.start",
		"queue_capacity", s.cfg.QueueCapacity,
		"max_concurrent", s.cfg.MaxConcurrent,
		"poll_interval", s.cfg.PollInterval.String(),
	)

loop:
	for ctx.Err() == nil {
		req, ok := s.queue.Dequeue(ctx, s.cfg.PollInterval)
		if !ok {
			continue
		}
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			s.abandon(req)
			break loop
		}
		s.wg.Add(1)
		go func(req entity.ProcessingRequest) {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			rctx := ctx
			if s.cfg.RequestTimeout > 0 {
				var cancel context.CancelFunc
				rctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
				defer cancel()
			}
			s.Process(rctx, req)
		}(req)
	}

	s.wg.Wait()
	s.log.Info("scheduler.stopped")
}

// abandon records a terminal failure for a request dequeued during shutdown
// that never reached a worker.
func (s *Scheduler) abandon(req entity.ProcessingRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.store.SetStatus(ctx, req.ID, entity.StatusFailed)
	s.store.PutRequestResult(ctx, req.ID, &entity.ResultEnvelope{
		Success:   false,
		RequestID: req.ID,
		Source:    req.Source,
		Error:     "service shut down before processing started",
	})
	s.log.Warn("scheduler.abandon", "request_id", req.ID)
}

// Process runs the full workflow for one request and records its terminal
// state. It is safe to call inline (synchronous endpoint) or from a worker.
func (s *Scheduler) Process(ctx context.Context, req entity.ProcessingRequest) *entity.ResultEnvelope {
	start := time.Now()
	s.stats.startWork()
	defer s.stats.endWork()

	s.store.SetStatus(ctx, req.ID, entity.StatusProcessing)
	s.store.Bump(ctx, cache.CounterRequests)

	env := s.runWorkflow(ctx, req)
	env.RequestID = req.ID
	env.Source = req.Source

	// Terminal bookkeeping must land even when the request context died.
	wctx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	status := entity.StatusCompleted
	if !env.Success {
		status = entity.StatusFailed
		s.store.Bump(wctx, cache.CounterErrors)
	}
	s.store.SetStatus(wctx, req.ID, status)
	s.store.PutRequestResult(wctx, req.ID, env)

	s.log.Info("scheduler.request.done",
		"request_id", req.ID,
		"success", env.Success,
		"cached", env.Cached,
		"needs_review", env.NeedsHumanReview,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return env
}

// runWorkflow resolves the source, consults the cache, and on a miss runs
// extraction, chunking, the rate-limited inference call, and validation.
func (s *Scheduler) runWorkflow(ctx context.Context, req entity.ProcessingRequest) *entity.ResultEnvelope {
	path := req.Source
	if fetch.IsURL(req.Source) {
		local, fromDisk, err := s.fetcher.Fetch(ctx, req.Source)
		if err != nil {
			return &entity.ResultEnvelope{Success: false, Error: "failed to download document: " + err.Error()}
		}
		if fromDisk {
			s.log.Info("scheduler.source.disk_cache", "request_id", req.ID)
		}
		path = local
	}

	hash, err := cache.HashFile(path)
	if err != nil {
		return &entity.ResultEnvelope{Success: false, Error: "processing error: " + err.Error()}
	}

	if hit, ok := s.store.GetResult(ctx, hash); ok {
		s.store.Bump(ctx, cache.CounterCacheHits)
		s.log.Info("scheduler.cache.hit", "request_id", req.ID, "hash", hash)
		out := *hit
		out.Cached = true
		return &out
	}
	s.store.Bump(ctx, cache.CounterCacheMisses)

	env := s.extractAndValidate(ctx, path)
	// A canceled workflow is an aborted decision; only settled outcomes are
	// worth remembering for the next request with the same bytes.
	if ctx.Err() == nil {
		s.store.PutResult(ctx, hash, env)
	}
	return env
}

func (s *Scheduler) extractAndValidate(ctx context.Context, path string) *entity.ResultEnvelope {
	bundle, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return &entity.ResultEnvelope{Success: false, Error: "processing error: " + err.Error()}
	}

	optimized := chunk.Optimize(bundle.CombinedText, s.cfg.ChunkBudget)
	info := &entity.ProcessingInfo{
		TextLength:       len(bundle.CombinedText),
		OptimizedLength:  len(optimized),
		TableCount:       len(bundle.Tables),
		DegradedBackends: bundle.Degraded,
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return &entity.ResultEnvelope{Success: false, Error: "processing error: " + err.Error()}
	}

	inferStart := time.Now()
	cand, rawText, err := s.inference.ExtractCertificate(ctx, optimized)
	info.InferenceMillis = time.Since(inferStart).Milliseconds()
	if err != nil {
		if errors.Is(err, common.ErrParse) {
			return &entity.ResultEnvelope{
				Success:          false,
				Error:            err.Error(),
				RawResponse:      rawText,
				NeedsHumanReview: true,
				Info:             info,
			}
		}
		return &entity.ResultEnvelope{Success: false, Error: err.Error(), Info: info}
	}

	outcome := s.validator.Validate(cand, validate.Texts{
		Combined: bundle.CombinedText,
		BackendA: bundle.TextA,
		BackendB: bundle.TextB,
	})

	if outcome.Failure != nil {
		info.ExtractionMethod = methodUnvalidated
		info.NeedsHumanReview = true
		return &entity.ResultEnvelope{
			Success:            true,
			Data:               cand.Raw,
			ValidationWarnings: []string{outcome.Failure.String()},
			NeedsHumanReview:   true,
			Info:               info,
		}
	}

	info.ExtractionMethod = methodValidated
	info.ConfidenceScore = outcome.Confidence
	info.NeedsHumanReview = outcome.NeedsHumanReview
	return &entity.ResultEnvelope{
		Success:          true,
		Data:             withMetadata(cand.Raw, outcome.Confidence),
		NeedsHumanReview: outcome.NeedsHumanReview,
		Info:             info,
	}
}

// withMetadata injects the _metadata block carried by validated results.
func withMetadata(raw json.RawMessage, confidence float64) json.RawMessage {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	m["_metadata"] = map[string]any{
		"confidence_score":     confidence,
		"validation_passed":    true,
		"extraction_timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
}

// Status reports the lifecycle state recorded for a request ID.
func (s *Scheduler) Status(ctx context.Context, requestID string) (entity.RequestStatus, bool) {
	return s.store.GetStatus(ctx, requestID)
}

// Result returns the terminal envelope recorded for a request ID.
func (s *Scheduler) Result(ctx context.Context, requestID string) (*entity.ResultEnvelope, bool) {
	return s.store.GetRequestResult(ctx, requestID)
}

// Health returns the current resource snapshot.
func (s *Scheduler) Health(ctx context.Context) monitor.Snapshot {
	return s.prober.Snapshot(ctx)
}

// Metrics merges the persistent counters with the live gauges.
func (s *Scheduler) Metrics(ctx context.Context) Metrics {
	return Metrics{
		RequestsProcessed: s.store.Counter(ctx, cache.CounterRequests),
		CacheHits:         s.store.Counter(ctx, cache.CounterCacheHits),
		CacheMisses:       s.store.Counter(ctx, cache.CounterCacheMisses),
		Errors:            s.store.Counter(ctx, cache.CounterErrors),
		ActiveWork:        s.stats.ActiveWork(),
		QueueDepth:        s.stats.QueueDepth(),
	}
}

// QueueDepth reports how many requests are waiting for a worker.
func (s *Scheduler) QueueDepth() int {
	return s.queue.Depth()
}
