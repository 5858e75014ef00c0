package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus is the canonical status for a processing request.
type RequestStatus string

// Stable values (stored verbatim in the status store).
const (
	StatusQueued     RequestStatus = "queued"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusFailed     RequestStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// rank orders statuses along the queued -> processing -> terminal machine.
func (s RequestStatus) rank() int {
	switch s {
	case StatusQueued:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// CanAdvance reports whether moving from s to next is a forward transition.
// The state machine never regresses and never skips the processing state.
func (s RequestStatus) CanAdvance(next RequestStatus) bool {
	return next.rank() == s.rank()+1
}

// ProcessingRequest is one admitted unit of work. Immutable once created;
// consumed exactly once by a worker.
type ProcessingRequest struct {
	ID        string    `json:"request_id"`
	Source    string    `json:"source"`   // local path or http(s) URL
	Priority  int       `json:"priority"` // accepted but does not reorder the queue
	CreatedAt time.Time `json:"created_at"`
}

// NewRequestID derives a request ID from the source locator and the
// submission instant. Unique per submission, stable for neither.
func NewRequestID(source string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", source, at.UnixNano())))
	return hex.EncodeToString(sum[:])[:16]
}

// ProcessingInfo annotates a terminal result with how it was produced.
type ProcessingInfo struct {
	TextLength       int      `json:"text_length"`
	OptimizedLength  int      `json:"optimized_text_length,omitempty"`
	TableCount       int      `json:"table_count,omitempty"`
	ExtractionMethod string   `json:"extraction_method"`
	DegradedBackends []string `json:"degraded_backends,omitempty"`
	InferenceMillis  int64    `json:"inference_time_ms,omitempty"`
	TotalMillis      int64    `json:"total_processing_time_ms,omitempty"`
	ConfidenceScore  float64  `json:"confidence_score"`
	NeedsHumanReview bool     `json:"needs_human_review"`
}

// ResultEnvelope is the self-describing terminal response for one request,
// success or failure. Data carries the candidate JSON (with an injected
// _metadata block on the validated path); Error carries a human-readable
// reason on the failure path.
type ResultEnvelope struct {
	Success            bool            `json:"success"`
	RequestID          string          `json:"request_id"`
	Source             string          `json:"file_path,omitempty"`
	Data               json.RawMessage `json:"data,omitempty"`
	Error              string          `json:"error,omitempty"`
	RawResponse        string          `json:"raw_response,omitempty"`
	ValidationWarnings []string        `json:"validation_warnings,omitempty"`
	NeedsHumanReview   bool            `json:"needs_human_review"`
	Cached             bool            `json:"cached"`
	Info               *ProcessingInfo `json:"processing_info,omitempty"`
}
