package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "digits only", input: "5551234567", want: "5551234567"},
		{name: "with dashes", input: "555-123-4567", want: "5551234567"},
		{name: "with parentheses", input: "(555) 123-4567", want: "5551234567"},
		{name: "with country code", input: "+1 555 123 4567", want: "15551234567"},
		{name: "dots and spaces", input: " 555.123.4567 ", want: "5551234567"},
		{name: "empty string", input: "", want: ""},
		{name: "letters only", input: "call me", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizePhone(NormalizePhone(tt.input)); again != tt.want {
				t.Errorf("NormalizePhone is not idempotent for %q: got %q", tt.input, again)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"5551234567", true},
		{"(555) 123-4567", true},
		{"+44 20 7946 0958", true},
		{"555-1234", false},
		{"123456789", false},
		{"+1 (555) 123-4567 ext 12", true},
		{"+1 (555) 123-4567 ext 90123", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidPhone(tt.input); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim", input: "  John Smith  ", want: "John Smith"},
		{name: "collapse spaces", input: "John    Smith", want: "John Smith"},
		{name: "tabs and newlines", input: "John\t\nSmith", want: "John Smith"},
		{name: "empty", input: "   ", want: ""},
		{name: "unicode preserved", input: " José  García ", want: "José García"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAppointmentID(t *testing.T) {
	if got := NormalizeAppointmentID("  AB12CD34 "); got != "ab12cd34" {
		t.Errorf("NormalizeAppointmentID = %q", got)
	}
}

func TestDedupeFold(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "case-insensitive duplicates keep first spelling",
			input: []string{"Morning appointments", "morning  appointments", "Dr. Lee"},
			want:  []string{"Morning appointments", "Dr. Lee"},
		},
		{
			name:  "drops empties",
			input: []string{"", "  ", "afternoons"},
			want:  []string{"afternoons"},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DedupeFold(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupeFold(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
