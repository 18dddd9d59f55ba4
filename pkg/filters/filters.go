// Package filters defines the user criteria for both search modes.
//
// Filters is a closed sum type: *Flexible (speed mode) or *Advanced (hyper mode).
// Code that needs advanced fields goes through AsAdvanced, which fails explicitly
// on a flexible value.
package filters

import (
	"errors"
	"strings"

	"github.com/bastiangx/wordhunt/pkg/model"
)

// ErrNotAdvanced is returned when advanced fields are requested from flexible filters.
var ErrNotAdvanced = errors.New("filters: advanced filters required")

// Length is an inclusive length range.
type Length struct {
	Min int `json:"min" msgpack:"min" toml:"min" yaml:"min"`
	Max int `json:"max" msgpack:"max" toml:"max" yaml:"max"`
}

// Pattern holds literal substring constraints. Empty fields are ignored.
type Pattern struct {
	StartsWith string `json:"startsWith,omitempty" msgpack:"sw,omitempty" toml:"starts_with" yaml:"startsWith,omitempty"`
	EndsWith   string `json:"endsWith,omitempty" msgpack:"ew,omitempty" toml:"ends_with" yaml:"endsWith,omitempty"`
	Contains   string `json:"contains,omitempty" msgpack:"ct,omitempty" toml:"contains" yaml:"contains,omitempty"`
	Excludes   string `json:"excludes,omitempty" msgpack:"ex,omitempty" toml:"excludes" yaml:"excludes,omitempty"`
}

// Range is an inclusive score range in [0,1].
type Range struct {
	Min float64 `json:"min" msgpack:"min" toml:"min" yaml:"min"`
	Max float64 `json:"max" msgpack:"max" toml:"max" yaml:"max"`
}

// Floor is a minimum score in [0,1].
type Floor struct {
	Min float64 `json:"min" msgpack:"min" toml:"min" yaml:"min"`
}

// Syllables is an inclusive syllable count range. A zero Max means unbounded.
type Syllables struct {
	Min int `json:"min" msgpack:"min" toml:"min" yaml:"min"`
	Max int `json:"max" msgpack:"max" toml:"max" yaml:"max"`
}

// Pronunciation constrains the difficulty class and syllable count.
// Difficulty is one of easy, medium, hard or any; empty means any.
type Pronunciation struct {
	Difficulty string     `json:"difficulty,omitempty" msgpack:"diff,omitempty" toml:"difficulty" yaml:"difficulty,omitempty"`
	Syllables  *Syllables `json:"syllableCount,omitempty" msgpack:"syl,omitempty" toml:"syllables" yaml:"syllableCount,omitempty"`
}

// Linguistic holds structural letter constraints. Zero MaxConsonantCluster disables the check.
type Linguistic struct {
	AllowCompounds      bool `json:"allowCompounds" msgpack:"compounds" toml:"allow_compounds" yaml:"allowCompounds"`
	RequireVowels       bool `json:"requireVowels" msgpack:"vowels" toml:"require_vowels" yaml:"requireVowels"`
	MaxConsonantCluster int  `json:"maxConsonantCluster" msgpack:"cluster" toml:"max_consonant_cluster" yaml:"maxConsonantCluster"`
}

// Phonetic holds sound-level constraints. Nil fields are unconstrained.
type Phonetic struct {
	VowelRatio            *Range   `json:"vowelRatio,omitempty" msgpack:"vr,omitempty" toml:"vowel_ratio" yaml:"vowelRatio,omitempty"`
	AllowDoubleConsonants *bool    `json:"allowDoubleConsonants,omitempty" msgpack:"dbl,omitempty" toml:"allow_double_consonants" yaml:"allowDoubleConsonants,omitempty"`
	AvoidSounds           []string `json:"avoidSounds,omitempty" msgpack:"avoid,omitempty" toml:"avoid_sounds" yaml:"avoidSounds,omitempty"`
}

// Quality holds validator-level floors.
type Quality struct {
	MinConfidence float64 `json:"minConfidence" msgpack:"conf" toml:"min_confidence" yaml:"minConfidence"`
}

// Filters is either *Flexible or *Advanced.
type Filters interface {
	Mode() model.Mode
	Base() *Flexible
	sealed()
}

// Flexible filters are available in both modes.
type Flexible struct {
	Length  Length
	Pattern Pattern
}

// Advanced filters are the hyper mode superset of Flexible.
type Advanced struct {
	Flexible
	Rarity          Range
	MarketPotential float64
	Pronunciation   Pronunciation
	Memorability    float64
	Linguistic      Linguistic
	Phonetic        Phonetic
	Brandability    float64
	Quality         Quality
	Categories      []string
}

func (f *Flexible) Mode() model.Mode { return model.ModeSpeed }
func (f *Flexible) Base() *Flexible  { return f }
func (f *Flexible) sealed()          {}

func (a *Advanced) Mode() model.Mode { return model.ModeHyper }
func (a *Advanced) Base() *Flexible  { return &a.Flexible }

// AsAdvanced returns the advanced case of f or ErrNotAdvanced.
func AsAdvanced(f Filters) (*Advanced, error) {
	if a, ok := f.(*Advanced); ok && a != nil {
		return a, nil
	}
	return nil, ErrNotAdvanced
}

// InLength reports whether word's length is inside the range.
func (f *Flexible) InLength(word string) bool {
	return len(word) >= f.Length.Min && len(word) <= f.Length.Max
}

// Matches applies the literal pattern constraints.
func (p Pattern) Matches(word string) bool {
	w := strings.ToLower(word)
	if p.StartsWith != "" && !strings.HasPrefix(w, strings.ToLower(p.StartsWith)) {
		return false
	}
	if p.EndsWith != "" && !strings.HasSuffix(w, strings.ToLower(p.EndsWith)) {
		return false
	}
	if p.Contains != "" && !strings.Contains(w, strings.ToLower(p.Contains)) {
		return false
	}
	if p.Excludes != "" && strings.Contains(w, strings.ToLower(p.Excludes)) {
		return false
	}
	return true
}

// Matches applies length and pattern constraints.
func (f *Flexible) Matches(word string) bool {
	return f.InLength(word) && f.Pattern.Matches(word)
}

// Clone returns a deep copy of f.
func Clone(f Filters) Filters {
	switch v := f.(type) {
	case *Flexible:
		c := *v
		return &c
	case *Advanced:
		c := *v
		if v.Pronunciation.Syllables != nil {
			s := *v.Pronunciation.Syllables
			c.Pronunciation.Syllables = &s
		}
		if v.Phonetic.VowelRatio != nil {
			r := *v.Phonetic.VowelRatio
			c.Phonetic.VowelRatio = &r
		}
		if v.Phonetic.AllowDoubleConsonants != nil {
			b := *v.Phonetic.AllowDoubleConsonants
			c.Phonetic.AllowDoubleConsonants = &b
		}
		c.Phonetic.AvoidSounds = append([]string(nil), v.Phonetic.AvoidSounds...)
		c.Categories = append([]string(nil), v.Categories...)
		return &c
	}
	return nil
}

// Relax returns a copy of a with every score floor lowered by delta, never below 0.
func Relax(a *Advanced, delta float64) *Advanced {
	c := Clone(a).(*Advanced)
	lower := func(v float64) float64 {
		if v-delta < 0 {
			return 0
		}
		return v - delta
	}
	c.Rarity.Min = lower(c.Rarity.Min)
	c.MarketPotential = lower(c.MarketPotential)
	c.Memorability = lower(c.Memorability)
	c.Brandability = lower(c.Brandability)
	c.Quality.MinConfidence = lower(c.Quality.MinConfidence)
	return c
}
