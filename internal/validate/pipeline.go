// Package validate runs the deterministic five-stage check over a structured
// extraction candidate: completeness, cross-backend consensus, temporal
// logic, identifier format, then weighted confidence scoring.
package validate

import (
	"log/slog"
	"strings"

	"github.com/Ahzem/ocr-agent/internal/entity"
)

// FailureKind tags which hard gate rejected a candidate.
type FailureKind string

const (
	KindMissingField FailureKind = "missing_field"
	KindConsensus    FailureKind = "consensus"
	KindTemporal     FailureKind = "temporal"
	KindFormat       FailureKind = "format"
)

// Failure is a typed rejection from one of the four hard gates.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f Failure) String() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return string(f.Kind) + ": " + f.Detail
}

// Outcome is the pipeline verdict. A nil Failure means the candidate passed
// every gate and carries a confidence score; a non-nil Failure means the
// candidate must go back to the caller unvalidated, flagged for review.
type Outcome struct {
	Confidence       float64
	NeedsHumanReview bool
	Factors          []Factor
	Failure          *Failure
}

// Texts carries the raw extractions the stages cross-check against: the
// combined primary text plus each backend's own view.
type Texts struct {
	Combined string
	BackendA string
	BackendB string
}

// requiredPaths is the hard completeness gate: each must resolve to a
// non-blank value in the raw decoded object.
var requiredPaths = []string{
	"certificate_number",
	"certificate_information.certificate_type",
	"certificate_information.issued_date",
	"policies.commercial_general_liability.policy_number",
	"policies.workers_compensation_and_employers_liability.policy_number",
}

const reviewThreshold = 0.7

// Pipeline validates extraction candidates. Stages run in a fixed order and
// the first failing gate wins; scoring happens only when all gates pass.
type Pipeline struct {
	log *slog.Logger
}

func NewPipeline(log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{log: log}
}

func (p *Pipeline) Validate(cand entity.Candidate, texts Texts) Outcome {
	if f := p.checkCompleteness(cand.Fields); f != nil {
		return rejected(*f)
	}
	if f := p.checkConsensus(cand.Certificate.CertificateNumber, texts); f != nil {
		return rejected(*f)
	}
	if f := p.checkTemporal(cand.Certificate); f != nil {
		return rejected(*f)
	}
	if f := p.checkFormat(cand.Certificate.CertificateNumber); f != nil {
		return rejected(*f)
	}

	score, factors := Score(cand, texts.Combined)
	p.log.Info("validate.confidence",
		"score", score,
		"needs_review", score < reviewThreshold,
	)
	return Outcome{
		Confidence:       score,
		NeedsHumanReview: score < reviewThreshold,
		Factors:          factors,
	}
}

func rejected(f Failure) Outcome {
	return Outcome{NeedsHumanReview: true, Failure: &f}
}

func (p *Pipeline) checkCompleteness(fields map[string]any) *Failure {
	for _, path := range requiredPaths {
		if entity.LookupPath(fields, path) == "" {
			p.log.Warn("validate.missing_field", "path", path)
			return &Failure{Kind: KindMissingField, Detail: "required field missing: " + path}
		}
	}
	return nil
}

// checkConsensus requires a present certificate number to appear verbatim in
// at least one backend's raw text. An empty number skips the check.
func (p *Pipeline) checkConsensus(certNumber string, texts Texts) *Failure {
	cert := strings.TrimSpace(certNumber)
	if cert == "" {
		return nil
	}
	if strings.Contains(texts.BackendA, cert) || strings.Contains(texts.BackendB, cert) {
		return nil
	}
	p.log.Warn("validate.consensus_miss", "certificate_number", cert)
	return &Failure{Kind: KindConsensus, Detail: "certificate number not found in source text: " + cert}
}

func (p *Pipeline) checkTemporal(c entity.Certificate) *Failure {
	if detail := dateSequenceDetail(c); detail != "" {
		p.log.Warn("validate.temporal", "detail", detail)
		return &Failure{Kind: KindTemporal, Detail: detail}
	}
	return nil
}

// checkFormat gates only a present certificate number; emptiness is the
// completeness stage's concern.
func (p *Pipeline) checkFormat(certNumber string) *Failure {
	cert := strings.TrimSpace(certNumber)
	if cert == "" {
		return nil
	}
	if certNumberFormatValid(cert) {
		return nil
	}
	p.log.Warn("validate.format", "certificate_number", cert)
	return &Failure{Kind: KindFormat, Detail: "invalid certificate number format: " + cert}
}
