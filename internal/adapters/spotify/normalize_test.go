package spotify

import "testing"

func TestNormalizeArtistName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "folds case", input: "Radiohead", want: "radiohead"},
		{name: "keeps mix", input: "Little Mix", want: "little mix"},
		{name: "keeps clean", input: "Clean Bandit", want: "clean bandit"},
		{name: "keeps stereo", input: "Stereo MCs", want: "stereo mcs"},
		{name: "punctuation becomes space", input: "AC/DC", want: "ac dc"},
		{name: "keeps digits and accents", input: "  Beyoncé  & Jay-Z 4:44", want: "beyoncé jay z 4 44"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeArtistName(tt.input)
			if got != tt.want {
				t.Fatalf("normalizeArtistName: got %q, want %q", got, tt.want)
			}
		})
	}
}
