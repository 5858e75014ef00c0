// Package scheduler is the admission controller and worker pool: a bounded
// FIFO queue in front of a permit-limited dispatcher, plus the per-request
// workflow tying cache, extraction, chunking, inference, and validation
// together. It exposes the service's public operations (submit, status,
// health, metrics) to the routing layer.
package scheduler

import (
	"context"

	"github.com/Ahzem/ocr-agent/internal/extract"
	"github.com/Ahzem/ocr-agent/internal/monitor"
)

// Extractor produces the extraction bundle for a local document.
type Extractor interface {
	Extract(ctx context.Context, path string) (extract.Bundle, error)
}

// Limiter gates calls against the shared external inference quota.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Prober reports the current resource health snapshot.
type Prober interface {
	Snapshot(ctx context.Context) monitor.Snapshot
}

// Fetcher resolves a remote source URL to a local file path. The bool
// reports whether the disk cache served it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, bool, error)
}
