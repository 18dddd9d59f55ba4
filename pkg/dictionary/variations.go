package dictionary

import "strings"

var (
	prefixes = []string{"re", "un", "pre", "ex", "in", "co", "de"}
	suffixes = []string{"er", "ly", "ful", "ness", "able", "ing", "ed", "ist", "ify", "ize", "ous", "ive", "ity", "ment", "ation"}
)

// Variations expands word with common English affixes. A trailing 'e' is dropped before
// vowel-initial suffixes. The result is deduplicated, in generation order, and never
// contains word itself.
func Variations(word string) []string {
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) < 2 {
		return nil
	}

	seen := map[string]struct{}{w: {}}
	var out []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, p := range prefixes {
		add(p + w)
	}
	stem := w
	if strings.HasSuffix(w, "e") {
		stem = w[:len(w)-1]
	}
	for _, s := range suffixes {
		if strings.IndexByte("aeiou", s[0]) >= 0 {
			add(stem + s)
			continue
		}
		add(w + s)
	}
	return out
}
