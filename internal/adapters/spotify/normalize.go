package spotify

import (
	"strings"
	"unicode"
)

// normalizeArtistName folds case and punctuation so credited names compare
// equal to what a user typed. Every word of the name is kept.
func normalizeArtistName(name string) string {
	var out strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			continue
		}
		out.WriteRune(' ')
	}

	return strings.Join(strings.Fields(out.String()), " ")
}
