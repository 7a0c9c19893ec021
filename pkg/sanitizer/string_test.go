package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"trims edges", "  Summer Peak  ", "Summer Peak"},
		{"collapses inner runs", "Summer \t\n Peak", "Summer Peak"},
		{"keeps unicode", "  Été   haute ", "Été haute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  surge "); got != "SURGE" {
		t.Errorf("NormalizeCode() = %q, want SURGE", got)
	}
}

func TestNormalizeID(t *testing.T) {
	if got := NormalizeID(" 64B7F0C2A1B2C3D4E5F60701\n"); got != "64b7f0c2a1b2c3d4e5f60701" {
		t.Errorf("NormalizeID() = %q", got)
	}
}
