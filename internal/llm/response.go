package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
)

// StripFences removes a markdown code fence wrapper from a model response:
// the opening fence line (with any language tag) and the trailing closing
// fence. Text without a leading fence passes through trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return ""
	}
	s = s[i+1:]
	if j := strings.LastIndex(s, "\n```"); j >= 0 {
		s = s[:j]
	}
	return s
}

// ParseCandidate decodes non-empty model text into a certificate candidate.
//
// The text is fence-stripped and validated strictly against the certificate
// schema. On a strict failure it is sanitized once and revalidated; a second
// failure, like undecodable JSON, is a parse error (common.ErrParse). The
// returned candidate carries the typed certificate, the generic field map
// for path lookups, and the final JSON document.
func ParseCandidate(responseText string, logger *slog.Logger) (entity.Candidate, error) {
	if logger == nil {
		logger = slog.Default()
	}

	clean := []byte(StripFences(responseText))
	if len(clean) == 0 {
		return entity.Candidate{}, fmt.Errorf("%w: nothing left after fence stripping", common.ErrParse)
	}
	if err := json.Unmarshal(clean, &map[string]any{}); err != nil {
		return entity.Candidate{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	schema := BuildCertificateJSONSchema()
	if err := ValidateAgainstSchema(schema, clean); err != nil {
		sanitized, notes, sErr := SanitizeCertificateJSON(clean, logger)
		if sErr != nil {
			return entity.Candidate{}, fmt.Errorf("%w: %v", common.ErrParse, sErr)
		}
		if vErr := ValidateAgainstSchema(schema, sanitized); vErr != nil {
			logger.Warn("llm.schema.reject", "error", vErr, "sanitize_changes", notes)
			return entity.Candidate{}, fmt.Errorf("%w: %v", common.ErrParse, vErr)
		}
		clean = sanitized
	}

	var cert entity.Certificate
	if err := json.Unmarshal(clean, &cert); err != nil {
		return entity.Candidate{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(clean, &fields); err != nil {
		return entity.Candidate{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	return entity.Candidate{Certificate: cert, Fields: fields, Raw: clean}, nil
}
