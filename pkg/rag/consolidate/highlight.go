package consolidate

import (
	"strings"
	"unicode"
)

// highlight markers wrap literal query-term matches in representative text.
const (
	markerOpen  = "<mark>"
	markerClose = "</mark>"
)

// Highlight wraps case-insensitive literal occurrences of the query's tokens
// in marker tags. Pure string transform; ranking is decided long before this
// runs. Tokens shorter than three characters are skipped to avoid lighting
// up articles and prepositions.
func Highlight(text, query string) string {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(tokens)*len(markerOpen+markerClose))

	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case folding changed byte offsets (rare multibyte case); skip
		// highlighting rather than risk splitting a rune.
		return text
	}
	pos := 0
	for pos < len(text) {
		matchLen := 0
		for _, tok := range tokens {
			if strings.HasPrefix(lower[pos:], tok) && len(tok) > matchLen {
				matchLen = len(tok)
			}
		}
		if matchLen > 0 {
			b.WriteString(markerOpen)
			b.WriteString(text[pos : pos+matchLen])
			b.WriteString(markerClose)
			pos += matchLen
			continue
		}
		b.WriteByte(text[pos])
		pos++
	}
	return b.String()
}

func queryTokens(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, f := range fields {
		if len(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}
