package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/Ahzem/ocr-agent/internal/entity"
)

const (
	resultKeyPrefix  = "ocr:result:"
	requestKeyPrefix = "ocr:request:"
	statusKeyPrefix  = "ocr:status:"
	metricKeyPrefix  = "metrics:"
)

// Counter names tracked by the store. Keys on the wire are metrics:<name>.
const (
	CounterRequests    = "requests"
	CounterCacheHits   = "cache_hits"
	CounterCacheMisses = "cache_misses"
	CounterErrors      = "errors"
)

// Store persists result envelopes, request statuses, and service counters.
// All operations are best-effort: a failing backend is logged and reported as
// a miss rather than failing the request, since the pipeline can always
// recompute a result.
type Store struct {
	kv        KV
	resultTTL time.Duration
	statusTTL time.Duration
	log       *slog.Logger
}

func NewStore(kv KV, resultTTL, statusTTL time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{kv: kv, resultTTL: resultTTL, statusTTL: statusTTL, log: log}
}

// GetResult looks up a cached envelope by content hash.
func (s *Store) GetResult(ctx context.Context, contentHash string) (*entity.ResultEnvelope, bool) {
	raw, ok, err := s.kv.Get(ctx, resultKeyPrefix+contentHash)
	if err != nil {
		s.log.Warn("cache.get.fail", "hash", contentHash, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var env entity.ResultEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.log.Warn("cache.decode.fail", "hash", contentHash, "error", err)
		return nil, false
	}
	return &env, true
}

// PutResult stores an envelope under its content hash with the result TTL.
func (s *Store) PutResult(ctx context.Context, contentHash string, env *entity.ResultEnvelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		s.log.Warn("cache.encode.fail", "hash", contentHash, "error", err)
		return
	}
	if err := s.kv.SetEx(ctx, resultKeyPrefix+contentHash, string(raw), s.resultTTL); err != nil {
		s.log.Warn("cache.set.fail", "hash", contentHash, "error", err)
	}
}

// PutRequestResult stores a terminal envelope under its request ID so the
// result endpoint can serve async completions. These age out on the status
// TTL; the long-lived copy is the content-hash entry.
func (s *Store) PutRequestResult(ctx context.Context, requestID string, env *entity.ResultEnvelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		s.log.Warn("request.encode.fail", "request_id", requestID, "error", err)
		return
	}
	if err := s.kv.SetEx(ctx, requestKeyPrefix+requestID, string(raw), s.statusTTL); err != nil {
		s.log.Warn("request.set.fail", "request_id", requestID, "error", err)
	}
}

// GetRequestResult returns the terminal envelope for a request, if recorded.
func (s *Store) GetRequestResult(ctx context.Context, requestID string) (*entity.ResultEnvelope, bool) {
	raw, ok, err := s.kv.Get(ctx, requestKeyPrefix+requestID)
	if err != nil {
		s.log.Warn("request.get.fail", "request_id", requestID, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var env entity.ResultEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.log.Warn("request.decode.fail", "request_id", requestID, "error", err)
		return nil, false
	}
	return &env, true
}

// SetStatus records the current lifecycle state of a request. Each write
// refreshes the status TTL, so finished requests stay pollable for a while
// and then age out.
func (s *Store) SetStatus(ctx context.Context, requestID string, st entity.RequestStatus) {
	if err := s.kv.SetEx(ctx, statusKeyPrefix+requestID, string(st), s.statusTTL); err != nil {
		s.log.Warn("status.set.fail", "request_id", requestID, "error", err)
	}
}

// GetStatus returns the recorded status for a request, if any.
func (s *Store) GetStatus(ctx context.Context, requestID string) (entity.RequestStatus, bool) {
	raw, ok, err := s.kv.Get(ctx, statusKeyPrefix+requestID)
	if err != nil {
		s.log.Warn("status.get.fail", "request_id", requestID, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	return entity.RequestStatus(raw), true
}

// Bump increments a service counter.
func (s *Store) Bump(ctx context.Context, name string) {
	if _, err := s.kv.Incr(ctx, metricKeyPrefix+name); err != nil {
		s.log.Warn("counter.incr.fail", "counter", name, "error", err)
	}
}

// Counter reads a service counter, defaulting to zero when absent or
// unreadable.
func (s *Store) Counter(ctx context.Context, name string) int64 {
	raw, ok, err := s.kv.Get(ctx, metricKeyPrefix+name)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Ping reports whether the backing KV is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Store) Close() error {
	return s.kv.Close()
}
