package sanitizer

import (
	"slices"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Pool Party  ", "Pool Party"},
		{"collapse inner spaces", "Pool    Party", "Pool Party"},
		{"tabs and newlines", "Pool\t\nParty", "Pool Party"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"unicode kept", " Café & Spa™ ", "Café & Spa™"},
		{"hebrew", " חדר כושר ", "חדר כושר"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("TrimAndNormalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  Bring chairs\nand a projector\x00  ")
	if got != "Bring chairs\nand a projector" {
		t.Errorf("NormalizeText() = %q", got)
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"Party Room":    "party_room",
		"  GYM ":        "gym",
		"bbq   area":    "bbq_area",
		"function_room": "function_room",
	}
	for input, want := range tests {
		if got := NormalizeLabel(input); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"israeli local mobile", "054-123-4567", "+972541234567"},
		{"israeli international", "+972 54 123 4567", "+972541234567"},
		{"us international", "+1 650-253-0000", "+16502530000"},
		{"already e164", "+972541234567", "+972541234567"},
		{"empty", "   ", ""},
		{"letters left for the validator", "invalid-phone", "invalid-phone"},
		{"too short left for the validator", "+1", "+1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_PreferredRegion(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		preferred string
		want      string
	}{
		{"uk local number", "020 7031 3000", "GB", "+442070313000"},
		{"us local number", "(650) 253-0000", "US", "+16502530000"},
		{"unknown preference falls back", "054-123-4567", "", "+972541234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input, tt.preferred); got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.preferred, got, tt.want)
			}
		})
	}
}

func TestNormalizeAmenities(t *testing.T) {
	got := NormalizeAmenities([]string{" Sound  system", "", "Projector", "Sound system", "  "})
	want := []string{"Sound system", "Projector"}
	if !slices.Equal(got, want) {
		t.Errorf("NormalizeAmenities() = %v, want %v", got, want)
	}

	if got := NormalizeAmenities(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeAmenities(nil) = %#v, want empty slice", got)
	}
}
