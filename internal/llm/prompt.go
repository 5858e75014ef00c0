package llm

import "fmt"

// extractionPrompt instructs the model to transcribe rather than infer: every
// unknown becomes an empty string, amounts are digits only, and dates are
// ISO. The JSON block mirrors entity.Certificate field for field.
const extractionPrompt = `
You are an expert insurance document analyzer. Extract data ONLY from the provided text. Do NOT invent or guess any information.

CRITICAL RULES:
1. If a field is not clearly present in the text, use empty string "" (NEVER make up values)
2. For monetary amounts, extract numbers only (no $, commas, or text like "per occurrence")
3. Use YYYY-MM-DD format for all dates
4. Certificate numbers must be exactly as shown in the document
5. If dates seem incorrect or impossible, use empty string ""
6. Policy numbers must be exactly as shown (no guessing)

VALIDATION REQUIREMENTS:
- Effective dates must be before expiration dates
- Certificate numbers typically 8-20 characters, alphanumeric
- Insurance limits are typically between $100,000 and $10,000,000
- If you're uncertain about ANY field, leave it empty rather than guessing

Extract to this EXACT JSON structure:

{
  "certificate_number": "string (exact from document or empty)",
  "certificate_information": {
    "certificate_type": "string (exact from document or empty)",
    "issued_date": "YYYY-MM-DD (exact from document or empty)",
    "certificate_number": "string (exact from document or empty)",
    "revision_number": "string (exact from document or empty)"
  },
  "producer_information": {
    "name": "string (exact from document or empty)",
    "address": "string (exact from document or empty)",
    "contact_name": "string (exact from document or empty)",
    "phone": "string (exact from document or empty)",
    "email": "string (exact from document or empty)"
  },
  "insured_information": {
    "name": "string (exact from document or empty)",
    "address": "string (exact from document or empty)"
  },
  "policies": {
    "commercial_general_liability": {
      "policy_number": "string (exact from document or empty)",
      "effective_date": "YYYY-MM-DD (exact from document or empty)",
      "expiration_date": "YYYY-MM-DD (exact from document or empty)",
      "limits": {
        "each_occurrence": "string (numbers only, no $ or commas)",
        "damage_to_rented_premises": "string (numbers only, no $ or commas)",
        "medical_expense_any_one_person": "string (numbers only, no $ or commas)",
        "personal_and_advertising_injury": "string (numbers only, no $ or commas)",
        "general_aggregate": "string (numbers only, no $ or commas)",
        "products_completed_operations_aggregate": "string (numbers only, no $ or commas)"
      }
    },
    "workers_compensation_and_employers_liability": {
      "policy_number": "string (exact from document or empty)",
      "effective_date": "YYYY-MM-DD (exact from document or empty)",
      "expiration_date": "YYYY-MM-DD (exact from document or empty)",
      "limits": {
        "each_accident": "string (numbers only, no $ or commas)",
        "disease_each_employee": "string (numbers only, no $ or commas)",
        "disease_policy_limit": "string (numbers only, no $ or commas)"
      }
    }
  },
  "certificate_holder": {
    "name": "string (exact from document or empty)",
    "address": "string (exact from document or empty)"
  },
  "reminders_sent_1_month": false,
  "reminders_sent_1_week": false
}

Document Text:
%s
`

// BuildPrompt embeds the optimized document text into the extraction prompt.
func BuildPrompt(documentText string) string {
	return fmt.Sprintf(extractionPrompt, documentText)
}
