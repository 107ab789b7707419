package util

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"first.last+tag@sub.domain.co", true},
		{"", false},
		{"not-an-email", false},
		{"missing@tld", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.valid {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.valid)
		}
	}
}
