package util

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays intact", "hello", 10, "hello"},
		{"exact length stays intact", "hello", 5, "hello"},
		{"long gets ellipsis", "hello world", 5, "hello..."},
		{"zero max disables truncation", "hello", 0, "hello"},
		{"multibyte runes survive", "héllo wörld", 6, "héllo ..."},
		{"empty input", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
