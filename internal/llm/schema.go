package llm

// BuildCertificateJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map, used locally to validate model output before decoding it.
//
// The schema is purely structural: types and key sets, no required fields and
// no value patterns. Missing or malformed values are the validation
// pipeline's concern, and its verdicts keep the extraction (flagged for
// review) instead of discarding it the way a schema rejection would.
func BuildCertificateJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	boolean := map[string]any{"type": "boolean"}
	obj := func(props map[string]any) map[string]any {
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
		}
	}

	cglLimits := obj(map[string]any{
		"each_occurrence":                         str,
		"damage_to_rented_premises":               str,
		"medical_expense_any_one_person":          str,
		"personal_and_advertising_injury":         str,
		"general_aggregate":                       str,
		"products_completed_operations_aggregate": str,
	})
	wcLimits := obj(map[string]any{
		"each_accident":         str,
		"disease_each_employee": str,
		"disease_policy_limit":  str,
	})

	return obj(map[string]any{
		"certificate_number": str,
		"certificate_information": obj(map[string]any{
			"certificate_type":   str,
			"issued_date":        str,
			"certificate_number": str,
			"revision_number":    str,
		}),
		"producer_information": obj(map[string]any{
			"name":         str,
			"address":      str,
			"contact_name": str,
			"phone":        str,
			"email":        str,
		}),
		"insured_information": obj(map[string]any{
			"name":    str,
			"address": str,
		}),
		"policies": obj(map[string]any{
			"commercial_general_liability": obj(map[string]any{
				"policy_number":   str,
				"effective_date":  str,
				"expiration_date": str,
				"limits":          cglLimits,
			}),
			"workers_compensation_and_employers_liability": obj(map[string]any{
				"policy_number":   str,
				"effective_date":  str,
				"expiration_date": str,
				"limits":          wcLimits,
			}),
		}),
		"certificate_holder": obj(map[string]any{
			"name":    str,
			"address": str,
		}),
		"reminders_sent_1_month": boolean,
		"reminders_sent_1_week":  boolean,
	})
}
