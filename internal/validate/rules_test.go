package validate

import (
	"strings"
	"testing"

	"github.com/Ahzem/ocr-agent/internal/entity"
)

// TestCertNumberFormatValid walks the four accepted shapes and the rejects.
func TestCertNumberFormatValid(t *testing.T) {
	tests := []struct {
		cert string
		want bool
	}{
		{"AB-123456", true},     // letter prefix, dash, digits
		{"ABCD1234", true},      // plain alphanumeric, 8-20
		{"12345678", true},      // digits only, 8-15
		{"AB1-XY789A", true},    // dashed alphanumeric
		{"  AB-123456  ", true}, // surrounding whitespace tolerated
		{"!!!", false},
		{"", false},
		{"ab-123456", false},           // lowercase prefix
		{"A-123456", false},            // prefix too short
		{"1234567", false},             // too few digits
		{"ABCDEFGHIJKLMNOPQRSTU", false}, // 21 chars, too long
		{"AB 123456", false},           // space instead of dash
	}
	for _, tt := range tests {
		t.Run(tt.cert, func(t *testing.T) {
			if got := certNumberFormatValid(tt.cert); got != tt.want {
				t.Errorf("certNumberFormatValid(%q) = %v, want %v", tt.cert, got, tt.want)
			}
		})
	}
}

func certWithDates(issued, cglEff, cglExp, wcEff, wcExp string) entity.Certificate {
	var c entity.Certificate
	c.Information.IssuedDate = issued
	c.Policies.GeneralLiability.EffectiveDate = cglEff
	c.Policies.GeneralLiability.ExpirationDate = cglExp
	c.Policies.WorkersCompensation.EffectiveDate = wcEff
	c.Policies.WorkersCompensation.ExpirationDate = wcExp
	return c
}

// TestDateSequenceDetail checks strict parsing and the effective-before-
// expiration rule for both policy windows.
func TestDateSequenceDetail(t *testing.T) {
	tests := []struct {
		name    string
		cert    entity.Certificate
		wantOK  bool
		wantSub string
	}{
		{name: "all absent", cert: certWithDates("", "", "", "", ""), wantOK: true},
		{name: "all valid", cert: certWithDates("2024-01-15", "2024-01-01", "2025-01-01", "2024-02-01", "2025-02-01"), wantOK: true},
		{name: "only effective present", cert: certWithDates("", "2024-01-01", "", "", ""), wantOK: true},
		{name: "unpadded month rejected", cert: certWithDates("2024-1-15", "", "", "", ""), wantOK: false, wantSub: "issued"},
		{name: "slash format rejected", cert: certWithDates("", "01/02/2024", "", "", ""), wantOK: false, wantSub: "cgl_effective"},
		{name: "impossible calendar day", cert: certWithDates("", "", "", "2024-02-30", ""), wantOK: false, wantSub: "wc_effective"},
		{name: "equal boundaries rejected", cert: certWithDates("", "2024-01-01", "2024-01-01", "", ""), wantOK: false, wantSub: "cgl_effective is not before"},
		{name: "inverted workers comp window", cert: certWithDates("", "", "", "2024-01-01", "2023-01-01"), wantOK: false, wantSub: "wc_effective is not before"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := dateSequenceDetail(tt.cert)
			if ok := detail == ""; ok != tt.wantOK {
				t.Fatalf("dateSequenceDetail() = %q, wantOK %v", detail, tt.wantOK)
			}
			if tt.wantSub != "" && !strings.Contains(detail, tt.wantSub) {
				t.Errorf("detail %q missing %q", detail, tt.wantSub)
			}
		})
	}
}

func certWithLimits(occurrence, aggregate string) entity.Certificate {
	var c entity.Certificate
	c.Policies.GeneralLiability.Limits.EachOccurrence = occurrence
	c.Policies.GeneralLiability.Limits.GeneralAggregate = aggregate
	return c
}

// TestPolicyLimitsValid checks the aggregate-covers-occurrence and
// plausible-range rules.
func TestPolicyLimitsValid(t *testing.T) {
	tests := []struct {
		name       string
		occurrence string
		aggregate  string
		want       bool
	}{
		{name: "both absent", occurrence: "", aggregate: "", want: true},
		{name: "only occurrence present", occurrence: "500000", aggregate: "", want: true},
		{name: "sane limits", occurrence: "500000", aggregate: "1000000", want: true},
		{name: "formatted amounts", occurrence: "$1,000,000", aggregate: "$2,000,000", want: true},
		{name: "aggregate below occurrence", occurrence: "1000000", aggregate: "500000", want: false},
		{name: "occurrence below plausible floor", occurrence: "50000", aggregate: "100000", want: false},
		{name: "occurrence above plausible ceiling", occurrence: "20000000", aggregate: "40000000", want: false},
		{name: "non-numeric amount", occurrence: "N/A", aggregate: "1000000", want: false},
		{name: "zero amounts skip range rules", occurrence: "0", aggregate: "0", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policyLimitsValid(certWithLimits(tt.occurrence, tt.aggregate)); got != tt.want {
				t.Errorf("policyLimitsValid(%q, %q) = %v, want %v", tt.occurrence, tt.aggregate, got, tt.want)
			}
		})
	}
}

// TestParseAmount checks digit extraction from monetary strings.
func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"1000000", 1000000, true},
		{"$1,000,000", 1000000, true},
		{"1.000.000", 1000000, true},
		{"", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseAmount(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
