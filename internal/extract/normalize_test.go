package extract

import "testing"

// TestNormalizeText checks whitespace collapsing and artifact stripping.
func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "collapses whitespace runs", in: "  ACORD   25 \t certificate\n\nof liability  ", want: "ACORD 25 certificate of liability"},
		{name: "keeps field punctuation", in: "GL-123456, $1,000,000 (each occurrence) cert# a@b.com", want: "GL-123456, $1,000,000 (each occurrence) cert# a@b.com"},
		{name: "strips scanner artifacts", in: "POLICY│NUMBER ■GL/123*456", want: "POLICYNUMBER GL123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
