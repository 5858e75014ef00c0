package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// shape describes one level of the certificate document: which keys are
// string leaves, which are booleans, and which nest further. Anything else
// is unknown and gets dropped.
type shape struct {
	strings  []string
	bools    []string
	children map[string]shape
}

var certificateShape = shape{
	strings: []string{"certificate_number"},
	bools:   []string{"reminders_sent_1_month", "reminders_sent_1_week"},
	children: map[string]shape{
		"certificate_information": {
			strings: []string{"certificate_type", "issued_date", "certificate_number", "revision_number"},
		},
		"producer_information": {
			strings: []string{"name", "address", "contact_name", "phone", "email"},
		},
		"insured_information": {
			strings: []string{"name", "address"},
		},
		"policies": {
			children: map[string]shape{
				"commercial_general_liability": {
					strings: []string{"policy_number", "effective_date", "expiration_date"},
					children: map[string]shape{
						"limits": {
							strings: []string{
								"each_occurrence",
								"damage_to_rented_premises",
								"medical_expense_any_one_person",
								"personal_and_advertising_injury",
								"general_aggregate",
								"products_completed_operations_aggregate",
							},
						},
					},
				},
				"workers_compensation_and_employers_liability": {
					strings: []string{"policy_number", "effective_date", "expiration_date"},
					children: map[string]shape{
						"limits": {
							strings: []string{"each_accident", "disease_each_employee", "disease_policy_limit"},
						},
					},
				},
			},
		},
		"certificate_holder": {
			strings: []string{"name", "address"},
		},
	},
}

// SanitizeCertificateJSON normalizes a decoded-but-offending response so it
// can pass the strict schema:
//   - nulls and non-string scalars in string positions become strings
//     (numbers keep their digits, everything else collapses to "")
//   - "true"/"false" strings in boolean positions become booleans
//   - unknown keys are removed at every level
//   - present-but-non-object sections are removed; the validation pipeline
//     reports them as missing fields rather than parse failures
//
// Returned notes name every change for the caller to log.
func SanitizeCertificateJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var notes []string
	sanitizeObject(m, certificateShape, "", &notes)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, notes, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(notes) > 0 {
		logger.Warn("llm.sanitize.applied", "changes", notes)
	}
	return out, notes, nil
}

func sanitizeObject(m map[string]any, s shape, path string, notes *[]string) {
	at := func(key string) string {
		if path == "" {
			return key
		}
		return path + "." + key
	}

	for _, key := range s.strings {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			m[key] = strings.TrimSpace(t)
		case float64:
			m[key] = strconv.FormatFloat(t, 'f', -1, 64)
			*notes = append(*notes, at(key)+"(number)")
		case nil:
			m[key] = ""
			*notes = append(*notes, at(key)+"(null)")
		default:
			m[key] = ""
			*notes = append(*notes, at(key)+"(type)")
		}
	}

	for _, key := range s.bools {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
		case string:
			m[key] = strings.EqualFold(strings.TrimSpace(t), "true")
			*notes = append(*notes, at(key)+"(string)")
		default:
			m[key] = false
			*notes = append(*notes, at(key)+"(type)")
		}
	}

	for key, child := range s.children {
		v, ok := m[key]
		if !ok {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			delete(m, key)
			*notes = append(*notes, at(key)+"(not object)")
			continue
		}
		sanitizeObject(obj, child, at(key), notes)
	}

	known := make(map[string]struct{}, len(s.strings)+len(s.bools)+len(s.children))
	for _, k := range s.strings {
		known[k] = struct{}{}
	}
	for _, k := range s.bools {
		known[k] = struct{}{}
	}
	for k := range s.children {
		known[k] = struct{}{}
	}
	for k := range m {
		if _, ok := known[k]; !ok {
			delete(m, k)
			*notes = append(*notes, at(k)+"(unknown)")
		}
	}
}
