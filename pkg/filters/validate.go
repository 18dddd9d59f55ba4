package filters

import (
	"fmt"
	"strings"
)

// MaxLength is the largest accepted length bound.
const MaxLength = 20

// ValidationError lists every problem found in a filter set or request. Its message is
// meant to be shown to the user verbatim.
type ValidationError struct {
	// Subject names what was checked, "filters" when empty.
	Subject  string
	Problems []string
}

func (e *ValidationError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "filters"
	}
	return "invalid " + subject + ": " + strings.Join(e.Problems, "; ")
}

// Validate checks f and returns a *ValidationError, or nil.
func Validate(f Filters) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	inUnit := func(name string, v float64) {
		if v < 0 || v > 1 {
			add("%s must be between 0 and 1", name)
		}
	}

	length := f.Base().Length
	if length.Min < 1 {
		add("length: min must be at least 1")
	}
	if length.Max > MaxLength {
		add("length: max cannot exceed %d", MaxLength)
	}
	if length.Min > length.Max {
		add("length: min greater than max")
	}

	if a, err := AsAdvanced(f); err == nil {
		inUnit("rarity: min", a.Rarity.Min)
		inUnit("rarity: max", a.Rarity.Max)
		if a.Rarity.Min > a.Rarity.Max {
			add("rarity: min greater than max")
		}
		inUnit("marketPotential: min", a.MarketPotential)
		inUnit("memorability: min", a.Memorability)
		inUnit("brandability: min", a.Brandability)
		inUnit("quality: minConfidence", a.Quality.MinConfidence)

		switch a.Pronunciation.Difficulty {
		case "", "any", "easy", "medium", "hard":
		default:
			add("pronunciation: unknown difficulty %q", a.Pronunciation.Difficulty)
		}
		if s := a.Pronunciation.Syllables; s != nil {
			if s.Min < 0 || s.Max < 0 {
				add("pronunciation: syllable counts cannot be negative")
			}
			if s.Max > 0 && s.Min > s.Max {
				add("pronunciation: syllables min greater than max")
			}
		}
		if a.Linguistic.MaxConsonantCluster < 0 {
			add("linguistic: maxConsonantCluster cannot be negative")
		}
		if r := a.Phonetic.VowelRatio; r != nil {
			inUnit("phonetic: vowelRatio min", r.Min)
			inUnit("phonetic: vowelRatio max", r.Max)
			if r.Min > r.Max {
				add("phonetic: vowelRatio min greater than max")
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Optimize returns a tuned copy of f; f itself is never modified. Wide length ranges are
// narrowed to ten letters and near-impossible hyper thresholds are eased.
func Optimize(f Filters) Filters {
	out := Clone(f)
	base := out.Base()
	if base.Length.Max-base.Length.Min > 12 {
		base.Length.Max = base.Length.Min + 10
	}
	if a, err := AsAdvanced(out); err == nil {
		if a.Rarity.Min > 0.9 {
			a.Rarity.Min = 0.8
		}
		if a.MarketPotential > 0.9 {
			a.MarketPotential = 0.7
		}
	}
	return out
}
