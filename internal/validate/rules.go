package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Ahzem/ocr-agent/internal/entity"
)

// certNumberPatterns are the accepted certificate-number shapes: plain
// alphanumeric, letter-prefix-dash-digits, digits only, and a general
// dashed alphanumeric form.
var certNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z0-9]{8,20}$`),
	regexp.MustCompile(`^[A-Z]{2,4}-\d{6,12}$`),
	regexp.MustCompile(`^\d{8,15}$`),
	regexp.MustCompile(`^[A-Z0-9]{2,6}-[A-Z0-9]{6,12}$`),
}

var (
	isoDateRE   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nonDigitsRE = regexp.MustCompile(`[^\d]`)
)

func certNumberFormatValid(certNumber string) bool {
	cert := strings.TrimSpace(certNumber)
	if cert == "" {
		return false
	}
	for _, re := range certNumberPatterns {
		if re.MatchString(cert) {
			return true
		}
	}
	return false
}

// parseISODate accepts only a zero-padded YYYY-MM-DD calendar date.
func parseISODate(v string) (time.Time, error) {
	if !isoDateRE.MatchString(v) {
		return time.Time{}, fmt.Errorf("not a YYYY-MM-DD date: %q", v)
	}
	return time.Parse("2006-01-02", v)
}

// dateSequenceDetail checks every present date field and both policy windows.
// It returns "" when the dates are coherent, otherwise a short description of
// the first violation. Absent dates are not violations.
func dateSequenceDetail(c entity.Certificate) string {
	fields := []struct {
		name  string
		value string
	}{
		{"issued", c.Information.IssuedDate},
		{"cgl_effective", c.Policies.GeneralLiability.EffectiveDate},
		{"cgl_expiration", c.Policies.GeneralLiability.ExpirationDate},
		{"wc_effective", c.Policies.WorkersCompensation.EffectiveDate},
		{"wc_expiration", c.Policies.WorkersCompensation.ExpirationDate},
	}

	parsed := make(map[string]time.Time, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		t, err := parseISODate(v)
		if err != nil {
			return "invalid " + f.name + " date: " + v
		}
		parsed[f.name] = t
	}

	for _, pair := range [][2]string{
		{"cgl_effective", "cgl_expiration"},
		{"wc_effective", "wc_expiration"},
	} {
		eff, okEff := parsed[pair[0]]
		exp, okExp := parsed[pair[1]]
		if okEff && okExp && !eff.Before(exp) {
			return pair[0] + " is not before " + pair[1]
		}
	}
	return ""
}

// policyLimitsValid is a sanity check on the general-liability money fields:
// with both occurrence and aggregate present, the aggregate must cover the
// occurrence and the occurrence must sit in the plausible 100k..10M range.
func policyLimitsValid(c entity.Certificate) bool {
	limits := c.Policies.GeneralLiability.Limits
	occurrence := strings.TrimSpace(limits.EachOccurrence)
	aggregate := strings.TrimSpace(limits.GeneralAggregate)
	if occurrence == "" || aggregate == "" {
		return true
	}

	occVal, okOcc := parseAmount(occurrence)
	aggVal, okAgg := parseAmount(aggregate)
	if !okOcc || !okAgg {
		return false
	}
	if occVal <= 0 || aggVal <= 0 {
		return true
	}
	if aggVal < occVal {
		return false
	}
	return occVal >= 100_000 && occVal <= 10_000_000
}

// parseAmount reads a monetary string by keeping only its digits, so both
// "1000000" and "$1,000,000" resolve to the same value.
func parseAmount(s string) (int64, bool) {
	digits := nonDigitsRE.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
