package heuristics

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScores(t *testing.T) {
	testCases := []struct {
		description string
		fn          func(string) float64
		word        string
		want        float64
	}{
		{"rarity rare letters on long word", Rarity, "quixotic", 0.4},
		{"rarity short common word", Rarity, "cat", 0},
		{"rarity empty word", Rarity, "", 0},
		{"rarity consonant run penalty", Rarity, "strength", 0.1},
		{"pronounceability balanced", Pronounceability, "banana", 1.0},
		{"pronounceability cluster heavy", Pronounceability, "strengths", 0.5},
		{"memorability all bonuses", Memorability, "letter", 1.0},
		{"memorability single letter", Memorability, "a", 0},
		{"memorability vowel edges", Memorability, "idea", 0.4},
		{"professionalism capitalized", Professionalism, "Voltra", 1.0},
		{"professionalism shouting", Professionalism, "VOLTRA", 0.8},
		{"professionalism childish run", Professionalism, "zzzbar", 0.7},
		{"flexibility vowel ending", LinguisticFlexibility, "banana", 0.3},
		{"flexibility consonant ending", LinguisticFlexibility, "cat", 0.2},
		{"market potential is clamped", MarketPotential, "banana", 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if got := tc.fn(tc.word); !approx(got, tc.want) {
				t.Errorf("%q: got %v, want %v", tc.word, got, tc.want)
			}
		})
	}
}

func TestPronunciationDifficulty(t *testing.T) {
	testCases := []struct {
		word string
		want string
	}{
		{"strong", "hard"},
		{"banana", "easy"},
		{"idea", "medium"},
	}
	for _, tc := range testCases {
		if got := PronunciationDifficulty(tc.word); got != tc.want {
			t.Errorf("PronunciationDifficulty(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}

func TestSyllables(t *testing.T) {
	testCases := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"banana", 3},
		{"hello", 2},
		{"make", 1},
		{"yellow", 2},
	}
	for _, tc := range testCases {
		if got := Syllables(tc.word); got != tc.want {
			t.Errorf("Syllables(%q) = %d, want %d", tc.word, got, tc.want)
		}
	}
}

func TestPatterns(t *testing.T) {
	got := Patterns("Voltra")
	want := []string{"CVCCCV", "start:vo", "end:ra", "syllables:2"}
	if len(got) != len(want) {
		t.Fatalf("Patterns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Patterns[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if p := Patterns("a"); len(p) != 2 || p[0] != "V" {
		t.Errorf("single letter patterns = %v", p)
	}
}

func TestLooksEnglish(t *testing.T) {
	testCases := []struct {
		word string
		want bool
	}{
		{"garden", true},
		{"voltra", true},
		{"banana", true},
		{"Quest", true},
		{"x", false},
		{"bcdfg", false},
		{"aaab", false},
		{"qxzv", false},
		{"héllo", false},
		{"abc1", false},
		{"strengths", false},
		{"aeiou", false},
		{"qatar", false},
	}
	for _, tc := range testCases {
		if got := LooksEnglish(tc.word); got != tc.want {
			t.Errorf("LooksEnglish(%q) = %v, want %v", tc.word, got, tc.want)
		}
	}
}

// TestScoresDeterministicAndBounded checks that every score is a pure function into [0,1].
func TestScoresDeterministicAndBounded(t *testing.T) {
	fns := map[string]func(string) float64{
		"rarity":           Rarity,
		"pronounceability": Pronounceability,
		"memorability":     Memorability,
		"professionalism":  Professionalism,
		"flexibility":      LinguisticFlexibility,
		"market":           MarketPotential,
		"brandability":     Brandability,
	}

	rapid.Check(t, func(rt *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{0,16}`).Draw(rt, "word")
		orig := word
		for name, fn := range fns {
			a, b := fn(word), fn(word)
			if a != b {
				rt.Fatalf("%s(%q) not deterministic: %v vs %v", name, word, a, b)
			}
			if a < 0 || a > 1 {
				rt.Fatalf("%s(%q) = %v out of [0,1]", name, word, a)
			}
		}
		if word != orig {
			rt.Fatalf("input mutated: %q -> %q", orig, word)
		}
	})
}

func TestShapeLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,20}`).Draw(rt, "word")
		if s := Shape(word); len(s) != len(word) {
			rt.Fatalf("Shape(%q) = %q, length mismatch", word, s)
		}
		if Syllables(word) < 1 {
			rt.Fatalf("Syllables(%q) < 1", word)
		}
	})
}
