package stringutil

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "valid simple email", input: "user@example.com", want: true},
		{name: "valid with dots", input: "first.last@example.com", want: true},
		{name: "valid with plus", input: "user+tag@example.com", want: true},
		{name: "valid with subdomain", input: "user@sub.example.com", want: true},
		{name: "missing at sign", input: "userexample.com", want: false},
		{name: "missing domain", input: "user@", want: false},
		{name: "missing TLD", input: "user@example", want: false},
		{name: "empty string", input: "", want: false},
		{name: "spaces", input: "user @example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidEmail(tt.input)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		format    string
		input     string
		wantValid bool
		wantKnown bool
	}{
		{"uuid", "123e4567-e89b-12d3-a456-426614174000", true, true},
		{"uuid", "123e4567e89b12d3a456426614174000", false, true},
		{"date", "2024-02-29", true, true},
		{"date", "2023-02-29", false, true},
		{"date", "2024-2-1", false, true},
		{"date-time", "2024-01-02T15:04:05Z", true, true},
		{"date-time", "2024-01-02T15:04:05.123+02:00", true, true},
		{"date-time", "2024-01-02 15:04:05", false, true},
		{"uri", "https://example.com/a?b=c", true, true},
		{"uri", "urn:isbn:0451450523", true, true},
		{"uri", "/relative/path", false, true},
		{"email", "a@b.io", true, true},
		{"hostname", "anything goes", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.input, func(t *testing.T) {
			valid, known := CheckFormat(tt.format, tt.input)
			if valid != tt.wantValid || known != tt.wantKnown {
				t.Errorf("CheckFormat(%q, %q) = (%v, %v), want (%v, %v)",
					tt.format, tt.input, valid, known, tt.wantValid, tt.wantKnown)
			}
		})
	}
}
