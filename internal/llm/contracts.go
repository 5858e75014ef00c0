// Package llm turns optimized document text into structured certificate
// candidates through a hosted generative model, and owns the response
// hygiene: fence stripping, schema validation, and sanitization.
package llm

import (
	"context"

	"github.com/Ahzem/ocr-agent/internal/entity"
)

// Extractor is the inference surface the scheduler depends on. The second
// return carries the raw model text; it is populated even when decoding
// fails so callers can attach it to the failure envelope.
type Extractor interface {
	ExtractCertificate(ctx context.Context, documentText string) (entity.Candidate, string, error)
	Close() error
}
