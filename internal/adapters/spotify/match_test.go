package spotify

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{
			name: "kitten sitting",
			a:    "kitten",
			b:    "sitting",
			want: 3,
		},
		{
			name: "empty to word",
			a:    "",
			b:    "sound",
			want: 5,
		},
		{
			name: "multibyte runes count once",
			a:    "beyoncé",
			b:    "beyonce",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levenshteinDistance(tt.a, tt.b)
			if got != tt.want {
				t.Fatalf("distance: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArtistMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		artist  string
		track   spotifyTrack
		atLeast float64
		below   float64
	}{
		{
			name:    "exact match ignoring case",
			artist:  "Radiohead",
			track:   spotifyTrack{Artists: []spotifyArtist{{Name: "radiohead"}}},
			atLeast: 1.0,
			below:   1.01,
		},
		{
			name:    "best of several credited artists",
			artist:  "Daft Punk",
			track:   spotifyTrack{Artists: []spotifyArtist{{Name: "Pharrell Williams"}, {Name: "Daft Punk"}}},
			atLeast: 1.0,
			below:   1.01,
		},
		{
			name:    "name containing a release word",
			artist:  "Little Mix",
			track:   spotifyTrack{Artists: []spotifyArtist{{Name: "Little Mix"}}},
			atLeast: 1.0,
			below:   1.01,
		},
		{
			name:    "release word is not ignored",
			artist:  "Clean Bandit",
			track:   spotifyTrack{Artists: []spotifyArtist{{Name: "Bandit"}}},
			atLeast: 0,
			below:   0.8,
		},
		{
			name:    "unrelated artist",
			artist:  "Radiohead",
			track:   spotifyTrack{Artists: []spotifyArtist{{Name: "Taylor Swift"}}},
			atLeast: 0,
			below:   0.5,
		},
		{
			name:    "no artists",
			artist:  "Radiohead",
			track:   spotifyTrack{},
			atLeast: 0,
			below:   0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artistMatchScore(tt.artist, tt.track)
			if got < tt.atLeast || got >= tt.below {
				t.Fatalf("score: got %.3f, want [%.2f, %.2f)", got, tt.atLeast, tt.below)
			}
		})
	}
}
