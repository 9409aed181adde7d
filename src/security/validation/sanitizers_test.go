package validation

import "testing"

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Aluguel do escritório", "Aluguel do escritório"},
		{"surrounding whitespace trimmed", "  Energia elétrica \t", "Energia elétrica"},
		{"control characters stripped", "Forne\x00cedor\x07 X", "Fornecedor X"},
		{"only whitespace collapses to empty", " \t\n ", ""},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeDescription(tt.in); got != tt.want {
				t.Errorf("SanitizeDescription(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
