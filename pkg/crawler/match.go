package crawler

import (
	"strings"

	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/heuristics"
	"github.com/bastiangx/wordhunt/pkg/model"
)

// passesBasic runs the cheap checks applied to every fetched line before validation.
func passesBasic(word string, a *filters.Advanced, learned *filters.LearningSnapshot) bool {
	if !heuristics.LooksEnglish(word) || !a.Matches(word) {
		return false
	}

	if a.Linguistic.RequireVowels && heuristics.VowelRatio(word) == 0 {
		return false
	}
	if limit := a.Linguistic.MaxConsonantCluster; limit > 0 && heuristics.MaxConsonantCluster(word) > limit {
		return false
	}

	if s := a.Pronunciation.Syllables; s != nil {
		n := heuristics.Syllables(word)
		if n < s.Min || (s.Max > 0 && n > s.Max) {
			return false
		}
	}

	ph := a.Phonetic
	if r := ph.VowelRatio; r != nil {
		if v := heuristics.VowelRatio(word); v < r.Min || v > r.Max {
			return false
		}
	}
	if ph.AllowDoubleConsonants != nil && !*ph.AllowDoubleConsonants && hasDoubleConsonant(word) {
		return false
	}
	for _, sound := range ph.AvoidSounds {
		if sound != "" && strings.Contains(word, strings.ToLower(sound)) {
			return false
		}
	}

	if learned != nil {
		if _, ok := learned.Score(word); !ok {
			return false
		}
	}
	return true
}

// passesAdvanced applies the score-based filters to a merged result.
func passesAdvanced(r model.WordResult, a *filters.Advanced) bool {
	if r.Scores.Rarity < a.Rarity.Min || r.Scores.Rarity > a.Rarity.Max {
		return false
	}
	if r.Scores.MarketPotential < a.MarketPotential {
		return false
	}
	if d := a.Pronunciation.Difficulty; d != "" && d != "any" && heuristics.PronunciationDifficulty(r.Word) != d {
		return false
	}
	if r.Scores.Memorability < a.Memorability {
		return false
	}
	if r.Scores.Brandability < a.Brandability {
		return false
	}
	return r.Scores.Confidence >= a.Quality.MinConfidence
}

func hasDoubleConsonant(word string) bool {
	for i := 1; i < len(word); i++ {
		if word[i] == word[i-1] && !strings.ContainsRune("aeiou", rune(word[i])) {
			return true
		}
	}
	return false
}
