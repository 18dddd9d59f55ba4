package heuristics

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	silentEnding  = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingY      = regexp.MustCompile(`^y`)
	syllableGroup = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// forbiddenBigrams never occur inside ordinary English words.
var forbiddenBigrams = []string{
	"bq", "cj", "cx", "dx", "fq", "fx", "gq", "gx", "hx", "jb", "jc", "jd", "jf", "jg",
	"jh", "jk", "jl", "jm", "jn", "jp", "jq", "jr", "js", "jt", "jv", "jw", "jx", "jz",
	"kq", "kx", "mx", "pq", "px", "qb", "qc", "qd", "qf", "qg", "qh", "qj", "qk", "ql",
	"qm", "qn", "qp", "qr", "qs", "qt", "qv", "qw", "qx", "qy", "qz", "sx", "tq", "vb",
	"vf", "vh", "vj", "vk", "vm", "vp", "vq", "vw", "vx", "vz", "wq", "wx", "xj", "xk",
	"xq", "xv", "xz", "zj", "zq", "zx",
}

// Syllables estimates the syllable count of word. It is never below 1.
func Syllables(word string) int {
	w := strings.ToLower(word)
	if len(w) <= 3 {
		return 1
	}
	w = silentEnding.ReplaceAllString(w, "")
	w = leadingY.ReplaceAllString(w, "")
	if n := len(syllableGroup.FindAllString(w, -1)); n > 1 {
		return n
	}
	return 1
}

// Shape maps consonants to C and vowels to V. Other characters are kept as is.
func Shape(word string) string {
	lower := strings.ToLower(word)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		switch c := lower[i]; {
		case isVowel(c):
			b.WriteByte('V')
		case isConsonant(c):
			b.WriteByte('C')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Patterns returns the structural descriptors of word. The first entry is its Shape,
// which is the bucket used for diversification.
func Patterns(word string) []string {
	lower := strings.ToLower(word)
	patterns := []string{Shape(word)}
	if len(lower) >= 2 {
		patterns = append(patterns,
			"start:"+lower[:2],
			"end:"+lower[len(lower)-2:])
	}
	return append(patterns, fmt.Sprintf("syllables:%d", Syllables(word)))
}

// LooksEnglish is a cheap letter-class test: ASCII letters only, at least one vowel,
// no tripled letter, no long consonant or vowel run, no forbidden bigram and a
// vowel ratio inside [0.2,0.8].
func LooksEnglish(word string) bool {
	lower := strings.ToLower(word)
	n := len(lower)
	if n < 2 {
		return false
	}
	vowelCount := 0
	consRun, vowRun := 0, 0
	for i := 0; i < n; i++ {
		c := lower[i]
		if c < 'a' || c > 'z' {
			return false
		}
		if i >= 2 && c == lower[i-1] && c == lower[i-2] {
			return false
		}
		if isVowel(c) || c == 'y' {
			vowelCount++
			vowRun++
			consRun = 0
		} else {
			consRun++
			vowRun = 0
		}
		if consRun >= 4 || vowRun >= 4 {
			return false
		}
		if c == 'q' && i+1 < n && lower[i+1] != 'u' {
			return false
		}
	}
	if vowelCount == 0 {
		return false
	}
	for _, bg := range forbiddenBigrams {
		if strings.Contains(lower, bg) {
			return false
		}
	}
	ratio := float64(vowelCount) / float64(n)
	return ratio >= 0.2 && ratio <= 0.8
}
