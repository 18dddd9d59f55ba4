/*
Package heuristics scores a single word string for branding use.

Every function here is pure: the same word always yields the same value, nothing is cached
and the input is never modified. All scores live in [0,1].

	r := heuristics.Rarity("quixotic")          // 0.3 + rare letter density
	m := heuristics.MarketPotential("voltra")   // clamped weighted sum

The scores are regex and letter-class heuristics. They approximate how English-like,
rare and brandable a word feels; they do not know what a word means.
*/
package heuristics

import (
	"regexp"
	"strings"
)

const (
	vowels     = "aeiou"
	consonants = "bcdfghjklmnpqrstvwxyz"
	rareLetter = "zjqxkvw"
)

var (
	unnaturalRun = regexp.MustCompile(`(?i)[zxq]{2,}|[aeiou]{3,}|[bcdfghjklmnpqrstvwxyz]{4,}`)
	childishRun  = regexp.MustCompile(`(?i)(?:oo|ee|aa|ii|uu){2,}|[xyz]{3,}`)
	professional = regexp.MustCompile(`^[A-Z]?[a-z]+$`)
)

// Rarity rewards length and uncommon letters, and penalizes unnatural runs.
func Rarity(word string) float64 {
	n := len(word)
	if n == 0 {
		return 0
	}
	score := 0.0
	switch {
	case n >= 8:
		score += 0.3
	case n >= 6:
		score += 0.2
	case n >= 4:
		score += 0.1
	}

	lower := strings.ToLower(word)
	if rare := countIn(lower, rareLetter); rare > 0 {
		score += float64(rare) / float64(n) * 0.4
	}
	if unnaturalRun.MatchString(word) {
		score -= 0.2
	}
	return clamp(score)
}

// Pronounceability favors a balanced vowel ratio and no hard consonant clusters.
func Pronounceability(word string) float64 {
	if word == "" {
		return 0
	}
	score := 0.5
	ratio := VowelRatio(word)
	if ratio >= 0.3 && ratio <= 0.5 {
		score += 0.3
	} else if ratio >= 0.25 && ratio <= 0.6 {
		score += 0.15
	}
	if MaxConsonantCluster(word) < 4 {
		score += 0.2
	}
	return clamp(score)
}

// Memorability rewards short words, repetition and strong edges.
func Memorability(word string) float64 {
	n := len(word)
	score := 0.0
	if n >= 4 && n <= 8 {
		score += 0.4
	} else if n >= 3 && n <= 10 {
		score += 0.2
	}

	lower := strings.ToLower(word)
	if hasRepetition(lower) {
		score += 0.3
	}
	if n > 0 && isConsonant(lower[0]) {
		score += 0.15
	}
	if n >= 2 && isVowel(lower[n-2]) && isConsonant(lower[n-1]) {
		score += 0.15
	}
	return clamp(score)
}

// Professionalism penalizes childish runs and rewards a plain capitalized shape.
func Professionalism(word string) float64 {
	score := 0.5
	if !childishRun.MatchString(word) {
		score += 0.3
	}
	if len(word) >= 4 && professional.MatchString(word) {
		score += 0.2
	}
	return clamp(score)
}

// LinguisticFlexibility estimates how easily a word bends into verb, noun or adjective use.
func LinguisticFlexibility(word string) float64 {
	n := len(word)
	if n == 0 {
		return 0
	}
	last := strings.ToLower(word)[n-1]
	score := 0.0
	if n >= 3 && isVowel(last) {
		score += 0.2
	}
	if n >= 3 && isConsonant(last) {
		score += 0.2
	}
	if n >= 4 {
		score += 0.1
	}
	return clamp(score)
}

// MarketPotential combines the sub-scores on a 0.5 base. The weighted sum can exceed 1,
// the clamp is the defined behavior.
func MarketPotential(word string) float64 {
	potential := 0.5
	potential += Pronounceability(word) * 0.3
	potential += Memorability(word) * 0.3
	potential += Professionalism(word) * 0.2
	potential += LinguisticFlexibility(word) * 0.2
	return clamp(potential)
}

// Brandability is the mean of pronounceability, memorability and professionalism.
func Brandability(word string) float64 {
	return clamp((Pronounceability(word) + Memorability(word) + Professionalism(word)) / 3)
}

// VowelRatio is the share of aeiou letters in word.
func VowelRatio(word string) float64 {
	if word == "" {
		return 0
	}
	return float64(countIn(strings.ToLower(word), vowels)) / float64(len(word))
}

// MaxConsonantCluster returns the longest run of consonants (y included).
func MaxConsonantCluster(word string) int {
	lower := strings.ToLower(word)
	best, run := 0, 0
	for i := 0; i < len(lower); i++ {
		if isConsonant(lower[i]) {
			run++
			if run > best {
				best = run
			}
			continue
		}
		run = 0
	}
	return best
}

// PronunciationDifficulty classifies a word as "easy", "medium" or "hard".
func PronunciationDifficulty(word string) string {
	if MaxConsonantCluster(word) >= 3 {
		return "hard"
	}
	ratio := VowelRatio(word)
	if ratio >= 0.35 && ratio <= 0.5 {
		return "easy"
	}
	return "medium"
}

// hasRepetition reports a doubled letter or a repeated digraph ("abab").
func hasRepetition(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == s[i+1] {
			return true
		}
		if i+3 < len(s) && s[i:i+2] == s[i+2:i+4] {
			return true
		}
	}
	return false
}

func countIn(s, set string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(set, s[i]) >= 0 {
			n++
		}
	}
	return n
}

func isVowel(c byte) bool {
	return strings.IndexByte(vowels, c) >= 0
}

func isConsonant(c byte) bool {
	return strings.IndexByte(consonants, c) >= 0
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
