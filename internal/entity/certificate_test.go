package entity

import (
	"encoding/json"
	"testing"
)

// TestLookupPath verifies the dot-path walk over a decoded response:
// tolerant of missing intermediates, trimming string leaves, and printing
// scalar leaves.
func TestLookupPath(t *testing.T) {
	raw := `{
		"certificate_number": "  AB-123456  ",
		"certificate_information": {"issued_date": "2024-01-01"},
		"policies": {
			"commercial_general_liability": {
				"policy_number": "GL-123456",
				"limits": {"each_occurrence": 500000}
			}
		},
		"reminders_sent_1_month": true,
		"tags": ["a", "b"]
	}`
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	cases := []struct {
		name string
		path string
		want string
	}{
		{"top-level leaf trimmed", "certificate_number", "AB-123456"},
		{"nested leaf", "certificate_information.issued_date", "2024-01-01"},
		{"deep leaf", "policies.commercial_general_liability.policy_number", "GL-123456"},
		{"numeric leaf printed", "policies.commercial_general_liability.limits.each_occurrence", "500000"},
		{"bool leaf printed", "reminders_sent_1_month", "true"},
		{"missing key", "certificate_information.revision_number", ""},
		{"missing intermediate", "producer_information.name", ""},
		{"leaf used as intermediate", "certificate_number.anything", ""},
		{"array leaf", "tags", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LookupPath(fields, tc.path); got != tc.want {
				t.Errorf("LookupPath(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}

// TestCertificateRoundTrip verifies the typed schema decodes the full
// response shape with every block populated.
func TestCertificateRoundTrip(t *testing.T) {
	raw := `{
		"certificate_number": "AB-123456",
		"certificate_information": {
			"certificate_type": "ACORD 25",
			"issued_date": "2024-01-01",
			"certificate_number": "AB-123456",
			"revision_number": "1"
		},
		"producer_information": {
			"name": "Acme Insurance Brokers",
			"address": "1 Main St",
			"contact_name": "Jo Agent",
			"phone": "555-0100",
			"email": "jo@acme.example"
		},
		"insured_information": {"name": "Widget Co", "address": "2 Oak Ave"},
		"policies": {
			"commercial_general_liability": {
				"policy_number": "GL-123456",
				"effective_date": "2024-01-01",
				"expiration_date": "2025-01-01",
				"limits": {"each_occurrence": "1000000", "general_aggregate": "2000000"}
			},
			"workers_compensation_and_employers_liability": {
				"policy_number": "WC-789012",
				"effective_date": "2024-01-01",
				"expiration_date": "2025-01-01",
				"limits": {"each_accident": "500000"}
			}
		},
		"certificate_holder": {"name": "Holder LLC", "address": "3 Pine Rd"},
		"reminders_sent_1_month": false,
		"reminders_sent_1_week": false
	}`
	var cert Certificate
	if err := json.Unmarshal([]byte(raw), &cert); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if cert.CertificateNumber != "AB-123456" {
		t.Errorf("CertificateNumber = %q", cert.CertificateNumber)
	}
	if cert.Information.CertificateType != "ACORD 25" {
		t.Errorf("CertificateType = %q", cert.Information.CertificateType)
	}
	if cert.Policies.GeneralLiability.Limits.EachOccurrence != "1000000" {
		t.Errorf("EachOccurrence = %q", cert.Policies.GeneralLiability.Limits.EachOccurrence)
	}
	if cert.Policies.WorkersCompensation.PolicyNumber != "WC-789012" {
		t.Errorf("WC PolicyNumber = %q", cert.Policies.WorkersCompensation.PolicyNumber)
	}
	if cert.Holder.Name != "Holder LLC" {
		t.Errorf("Holder.Name = %q", cert.Holder.Name)
	}
}
