package validate

import (
	"strings"

	"github.com/Ahzem/ocr-agent/internal/entity"
)

// Factor is one weighted component of the confidence score.
type Factor struct {
	Name   string
	Score  float64
	Weight float64
}

// completenessPaths feed the weighted completeness factor; a subset of the
// hard-gate paths covering the fields downstream consumers key on.
var completenessPaths = []string{
	"certificate_number",
	"policies.commercial_general_liability.policy_number",
	"policies.workers_compensation_and_employers_liability.policy_number",
}

// Score computes the weighted extraction confidence for a candidate,
// independent of the hard gates: each factor is re-evaluated from scratch so
// the score is meaningful on its own. Weights sum to 1 and every factor is
// in [0,1], so the result needs no clamping.
func Score(cand entity.Candidate, combinedText string) (float64, []Factor) {
	filled := 0
	for _, path := range completenessPaths {
		if entity.LookupPath(cand.Fields, path) != "" {
			filled++
		}
	}

	factors := []Factor{
		{Name: "completeness", Score: float64(filled) / float64(len(completenessPaths)), Weight: 0.30},
		{Name: "dates", Score: passFail(dateSequenceDetail(cand.Certificate) == "", 0.3), Weight: 0.25},
		{Name: "cert_format", Score: passFail(certNumberFormatValid(cand.Certificate.CertificateNumber), 0.2), Weight: 0.20},
		{Name: "text_quality", Score: textQuality(combinedText), Weight: 0.15},
		{Name: "limits", Score: passFail(policyLimitsValid(cand.Certificate), 0.5), Weight: 0.10},
	}

	var total float64
	for _, f := range factors {
		total += f.Score * f.Weight
	}
	return total, factors
}

func passFail(ok bool, failScore float64) float64 {
	if ok {
		return 1
	}
	return failScore
}

// textQuality normalizes extracted-text length against the size of a typical
// usable certificate; 1000 characters or more reads as full quality.
func textQuality(text string) float64 {
	q := float64(len(strings.TrimSpace(text))) / 1000
	if q > 1 {
		return 1
	}
	return q
}
