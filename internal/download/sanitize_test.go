package download

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bohemian Rhapsody", "Bohemian Rhapsody"},
		{"slashes stripped", "AC/DC - Back in Black", "ACDC - Back in Black"},
		{"unicode letters kept", "Señorita (Audio)", "Señorita Audio"},
		{"shell metacharacters", `song"; rm -rf $(HOME)`, "song rm -rf HOME"},
		{"dots and underscores kept", "track_01.final", "track_01.final"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"all stripped", "???***", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
