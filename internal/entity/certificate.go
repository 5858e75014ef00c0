package entity

import (
	"fmt"
	"strings"
)

// Certificate is the structured extraction candidate returned by the
// inference service. Every leaf is a string; absence is an empty string,
// never an omitted key. The value is untrusted until it passes validation.
type Certificate struct {
	CertificateNumber string                 `json:"certificate_number"`
	Information       CertificateInformation `json:"certificate_information"`
	Producer          ProducerInformation    `json:"producer_information"`
	Insured           InsuredInformation     `json:"insured_information"`
	Policies          Policies               `json:"policies"`
	Holder            CertificateHolder      `json:"certificate_holder"`
	RemindersSent1M   bool                   `json:"reminders_sent_1_month"`
	RemindersSent1W   bool                   `json:"reminders_sent_1_week"`
}

type CertificateInformation struct {
	CertificateType   string `json:"certificate_type"`
	IssuedDate        string `json:"issued_date"` // YYYY-MM-DD
	CertificateNumber string `json:"certificate_number"`
	RevisionNumber    string `json:"revision_number"`
}

type ProducerInformation struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type InsuredInformation struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Policies struct {
	GeneralLiability    GeneralLiabilityPolicy    `json:"commercial_general_liability"`
	WorkersCompensation WorkersCompensationPolicy `json:"workers_compensation_and_employers_liability"`
}

type GeneralLiabilityPolicy struct {
	PolicyNumber   string                 `json:"policy_number"`
	EffectiveDate  string                 `json:"effective_date"`
	ExpirationDate string                 `json:"expiration_date"`
	Limits         GeneralLiabilityLimits `json:"limits"`
}

type GeneralLiabilityLimits struct {
	EachOccurrence     string `json:"each_occurrence"`
	DamageToRented     string `json:"damage_to_rented_premises"`
	MedicalExpense     string `json:"medical_expense_any_one_person"`
	PersonalAdvInjury  string `json:"personal_and_advertising_injury"`
	GeneralAggregate   string `json:"general_aggregate"`
	ProductsCompOpsAgg string `json:"products_completed_operations_aggregate"`
}

type WorkersCompensationPolicy struct {
	PolicyNumber   string                    `json:"policy_number"`
	EffectiveDate  string                    `json:"effective_date"`
	ExpirationDate string                    `json:"expiration_date"`
	Limits         WorkersCompensationLimits `json:"limits"`
}

type WorkersCompensationLimits struct {
	EachAccident        string `json:"each_accident"`
	DiseaseEachEmployee string `json:"disease_each_employee"`
	DiseasePolicyLimit  string `json:"disease_policy_limit"`
}

type CertificateHolder struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Candidate pairs the typed certificate with the raw decoded object it came
// from. Validation runs path checks against Fields because the inference
// service may omit intermediate objects entirely; the typed view papers over
// that with zero values.
type Candidate struct {
	Certificate Certificate
	Fields      map[string]any
	Raw         []byte
}

// LookupPath resolves a dot-notation path against a decoded JSON object.
// A missing key, a non-object intermediate, or a blank leaf all resolve to
// the empty string; the walk never errors.
func LookupPath(fields map[string]any, path string) string {
	var current any = fields
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = obj[key]
		if !ok {
			return ""
		}
	}
	switch v := current.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64, bool:
		return strings.TrimSpace(fmt.Sprint(v))
	default:
		return ""
	}
}
