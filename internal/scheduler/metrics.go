package scheduler

import "sync/atomic"

// Stats tracks the scheduler's live gauges and feeds them to the resource
// monitor for admission decisions.
type Stats struct {
	active atomic.Int64
	queue  *Queue
}

func NewStats(q *Queue) *Stats {
	return &Stats{queue: q}
}

// ActiveWork returns the number of in-flight request workflows.
func (s *Stats) ActiveWork() int {
	return int(s.active.Load())
}

// QueueDepth returns the number of requests waiting for a worker.
func (s *Stats) QueueDepth() int {
	if s.queue == nil {
		return 0
	}
	return s.queue.Depth()
}

func (s *Stats) startWork() { s.active.Add(1) }
func (s *Stats) endWork()   { s.active.Add(-1) }

// Metrics is the aggregate counter snapshot served by the metrics endpoint.
// The counters live in the KV store so they survive restarts; the gauges are
// in-process.
type Metrics struct {
	RequestsProcessed int64 `json:"requests_processed"`
	CacheHits         int64 `json:"cache_hits"`
	CacheMisses       int64 `json:"cache_misses"`
	Errors            int64 `json:"errors"`
	ActiveWork        int   `json:"active_work_count"`
	QueueDepth        int   `json:"queue_depth"`
}
