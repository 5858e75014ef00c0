package extract

import (
	"context"
)

// Backend is one independent document extraction engine. Both methods are
// per-call fallible, and two backends are never assumed to agree on the same
// document.
type Backend interface {
	Name() string
	ExtractText(ctx context.Context, path string) (string, error)
	ExtractTables(ctx context.Context, path string) ([]Table, error)
}

// Table is one extracted cell matrix. Confidence is assigned by the adapter
// after filtering, not by the backend that produced it.
type Table struct {
	Page       int        `json:"page"`
	Source     string     `json:"source"`
	Confidence float64    `json:"confidence"`
	Rows       [][]string `json:"rows"`
}

// Bundle is the adapter's reconciled output for one document. TextA and
// TextB are kept separately so the validation pipeline can cross-check
// extracted fields against each backend's view of the document.
type Bundle struct {
	CombinedText string  // primary text with the rendered table block appended
	TextA        string  // first backend, normalized
	TextB        string  // second backend, normalized
	Tables       []Table // surviving tables, scored, best first
	Degraded     []string
	Method       string
}
