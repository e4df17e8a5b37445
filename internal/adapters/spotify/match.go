package spotify

import "strings"

// artistMatchScore is the best similarity between the requested artist and
// any artist credited on candidate, after normalization.
func artistMatchScore(requestArtist string, candidate spotifyTrack) float64 {
	want := normalizeArtistName(requestArtist)
	if want == "" {
		return 0
	}

	best := 0.0
	for _, a := range candidate.Artists {
		got := normalizeArtistName(a.Name)
		if got == "" {
			continue
		}
		best = max(best, similarity(want, got))
	}
	return best
}

func similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}

func joinArtistNames(track spotifyTrack) string {
	if len(track.Artists) == 0 {
		return ""
	}
	parts := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		parts = append(parts, artist.Name)
	}
	return strings.Join(parts, ", ")
}
