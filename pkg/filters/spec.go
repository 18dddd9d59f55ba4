package filters

import "github.com/bastiangx/wordhunt/pkg/model"

// Default bounds applied when a field is absent.
const (
	DefaultMinLength = 3
	DefaultMaxLength = 12
)

// Spec is the flat, loosely populated shape filters arrive in over IPC, from the CLI
// and from the config file. Nil fields take the mode defaults.
type Spec struct {
	Length          *Length        `json:"length,omitempty" msgpack:"length,omitempty" toml:"length,omitempty" yaml:"length,omitempty"`
	Pattern         *Pattern       `json:"pattern,omitempty" msgpack:"pattern,omitempty" toml:"pattern,omitempty" yaml:"pattern,omitempty"`
	Rarity          *Range         `json:"rarity,omitempty" msgpack:"rarity,omitempty" toml:"rarity,omitempty" yaml:"rarity,omitempty"`
	MarketPotential *Floor         `json:"marketPotential,omitempty" msgpack:"market,omitempty" toml:"market_potential,omitempty" yaml:"marketPotential,omitempty"`
	Pronunciation   *Pronunciation `json:"pronunciation,omitempty" msgpack:"pron,omitempty" toml:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
	Memorability    *Floor         `json:"memorability,omitempty" msgpack:"mem,omitempty" toml:"memorability,omitempty" yaml:"memorability,omitempty"`
	Linguistic      *Linguistic    `json:"linguistic,omitempty" msgpack:"ling,omitempty" toml:"linguistic,omitempty" yaml:"linguistic,omitempty"`
	Phonetic        *Phonetic      `json:"phonetic,omitempty" msgpack:"phon,omitempty" toml:"phonetic,omitempty" yaml:"phonetic,omitempty"`
	Brandability    *Floor         `json:"brandability,omitempty" msgpack:"brand,omitempty" toml:"brandability,omitempty" yaml:"brandability,omitempty"`
	Quality         *Quality       `json:"quality,omitempty" msgpack:"quality,omitempty" toml:"quality,omitempty" yaml:"quality,omitempty"`
	Categories      []string       `json:"domainCategory,omitempty" msgpack:"cat,omitempty" toml:"categories,omitempty" yaml:"domainCategory,omitempty"`
}

// ForMode resolves s into the variant for mode. Speed mode keeps only the flexible
// fields; hyper mode fills rarity, market potential and linguistic defaults.
func ForMode(mode model.Mode, s Spec) Filters {
	flex := Flexible{Length: Length{Min: DefaultMinLength, Max: DefaultMaxLength}}
	if s.Length != nil {
		flex.Length = *s.Length
	}
	if s.Pattern != nil {
		flex.Pattern = *s.Pattern
	}
	if mode != model.ModeHyper {
		return &flex
	}

	adv := &Advanced{
		Flexible:        flex,
		Rarity:          Range{Min: 0.3, Max: 1},
		MarketPotential: 0.5,
		Linguistic:      Linguistic{AllowCompounds: true, RequireVowels: true, MaxConsonantCluster: 4},
		Categories:      append([]string(nil), s.Categories...),
	}
	if s.Rarity != nil {
		adv.Rarity = *s.Rarity
	}
	if s.MarketPotential != nil {
		adv.MarketPotential = s.MarketPotential.Min
	}
	if s.Pronunciation != nil {
		adv.Pronunciation = *s.Pronunciation
	}
	if s.Memorability != nil {
		adv.Memorability = s.Memorability.Min
	}
	if s.Linguistic != nil {
		adv.Linguistic = *s.Linguistic
	}
	if s.Phonetic != nil {
		adv.Phonetic = *s.Phonetic
	}
	if s.Brandability != nil {
		adv.Brandability = s.Brandability.Min
	}
	if s.Quality != nil {
		adv.Quality = *s.Quality
	}
	return Clone(adv)
}

// ToSpec flattens f back into its wire shape.
func ToSpec(f Filters) Spec {
	base := f.Base()
	length, pattern := base.Length, base.Pattern
	s := Spec{Length: &length, Pattern: &pattern}

	a, err := AsAdvanced(f)
	if err != nil {
		return s
	}
	c := Clone(a).(*Advanced)
	s.Rarity = &c.Rarity
	s.MarketPotential = &Floor{Min: c.MarketPotential}
	s.Pronunciation = &c.Pronunciation
	s.Memorability = &Floor{Min: c.Memorability}
	s.Linguistic = &c.Linguistic
	s.Phonetic = &c.Phonetic
	s.Brandability = &Floor{Min: c.Brandability}
	s.Quality = &c.Quality
	s.Categories = c.Categories
	return s
}
