package llm

import (
	"testing"
)

// TestValidateAgainstSchema verifies the structural gate: known keys with
// string leaves pass, unknown keys and non-string leaves are rejected
// before any decoding happens.
func TestValidateAgainstSchema(t *testing.T) {
	schema := BuildCertificateJSONSchema()

	cases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "minimal valid document",
			doc:  `{"certificate_number": "AB-123456"}`,
		},
		{
			name: "nested blocks valid",
			doc: `{
				"certificate_number": "AB-123456",
				"policies": {
					"commercial_general_liability": {
						"policy_number": "GL-123456",
						"limits": {"each_occurrence": "500000"}
					}
				}
			}`,
		},
		{
			name: "empty object valid",
			doc:  `{}`,
		},
		{
			name:    "unknown top-level key",
			doc:     `{"certificate_number": "AB-123456", "made_up_field": "x"}`,
			wantErr: true,
		},
		{
			name:    "unknown nested key",
			doc:     `{"policies": {"umbrella_liability": {"policy_number": "UM-1"}}}`,
			wantErr: true,
		},
		{
			name:    "numeric leaf where string expected",
			doc:     `{"policies": {"commercial_general_liability": {"limits": {"each_occurrence": 500000}}}}`,
			wantErr: true,
		},
		{
			name:    "string where boolean expected",
			doc:     `{"reminders_sent_1_month": "yes"}`,
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAgainstSchema(schema, []byte(tc.doc))
			if tc.wantErr && err == nil {
				t.Error("want schema rejection, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("want pass, got %v", err)
			}
		})
	}
}
