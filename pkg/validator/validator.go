// Package validator decides whether a word reads as plausible English and how much
// confidence that verdict carries.
package validator

import (
	"regexp"

	"github.com/bastiangx/wordhunt/pkg/heuristics"
	"github.com/bastiangx/wordhunt/pkg/model"
)

const (
	knownWordConfidence = 0.95
	minConfidence       = 0.75
	rarityThreshold     = 0.3
)

// Lexicon answers known-word lookups. The dictionary package satisfies it.
type Lexicon interface {
	Contains(word string) bool
}

var (
	lettersOnly  = regexp.MustCompile(`^[A-Za-z]+$`)
	hasVowel     = regexp.MustCompile(`(?i)[aeiou]`)
	hasConsonant = regexp.MustCompile(`(?i)[bcdfghjklmnpqrstvwxyz]`)
	naturalFlow  = regexp.MustCompile(`(?i)^(?:[bcdfghjklmnpqrstvwxyz]*[aeiou]){2,}[bcdfghjklmnpqrstvwxyz]*$`)
	rareTriple   = regexp.MustCompile(`(?i)[zxq]{3,}`)
	harshRun     = regexp.MustCompile(`(?i)[jkvwxz]{4,}`)
)

type check struct {
	penalty    float64
	issue      string
	suggestion string
	passes     func(string) bool
}

var structuralChecks = []check{
	{
		penalty:    0.2,
		issue:      "Unnatural phonetic pattern for English",
		suggestion: "Mix vowels and consonants",
		passes: func(w string) bool {
			return lettersOnly.MatchString(w) && hasVowel.MatchString(w) && hasConsonant.MatchString(w)
		},
	},
	{
		penalty:    0.15,
		issue:      "Unnatural sound flow",
		suggestion: "Use at least two vowel sounds",
		passes:     naturalFlow.MatchString,
	},
	{
		penalty:    0.25,
		issue:      "Appears unnaturally invented",
		suggestion: "Avoid long runs of rare letters",
		passes: func(w string) bool {
			return lettersOnly.MatchString(w) && !rareTriple.MatchString(w) && !harshRun.MatchString(w)
		},
	},
}

// Validator scores words against a fixed set of checks. It holds no mutable state, so
// a single instance is safe for concurrent use.
type Validator struct {
	lexicon Lexicon
}

// New returns a Validator. lex may be nil, in which case no word is known.
func New(lex Lexicon) *Validator {
	return &Validator{lexicon: lex}
}

// Validate always returns a fully populated result and never panics.
func (v *Validator) Validate(word string) model.ValidationResult {
	res := model.ValidationResult{
		Issues:      []string{},
		Suggestions: []string{},
	}
	confidence := 1.0
	looksOK := true

	if !lettersOnly.MatchString(word) {
		res.Issues = append(res.Issues, "Contains non-English characters")
		res.Suggestions = append(res.Suggestions, "Use letters A-Z only")
		confidence -= 0.3
	}

	known := v.lexicon != nil && v.lexicon.Contains(word)
	if known {
		confidence = knownWordConfidence
	} else if !heuristics.LooksEnglish(word) {
		res.Issues = append(res.Issues, "Does not appear to be a valid English word")
		res.Suggestions = append(res.Suggestions, "Follow common English letter patterns")
		confidence -= 0.5
		looksOK = false
	}

	for _, c := range structuralChecks {
		if c.passes(word) {
			continue
		}
		res.Issues = append(res.Issues, c.issue)
		res.Suggestions = append(res.Suggestions, c.suggestion)
		// a known word keeps its pinned confidence
		if !known {
			confidence -= c.penalty
		}
	}

	res.RarityScore = heuristics.Rarity(word)
	res.MarketPotential = heuristics.MarketPotential(word)
	if res.RarityScore < rarityThreshold {
		res.Issues = append(res.Issues, "Too common - not rare enough")
		res.Suggestions = append(res.Suggestions, "Try a longer word or rarer letters")
	}

	res.Confidence = clamp(confidence)
	res.IsValid = looksOK && res.Confidence >= minConfidence && res.RarityScore >= rarityThreshold
	return res
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
