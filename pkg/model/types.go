// Package model holds the result types shared by the validator, both engines and the IPC server.
package model

import "strings"

// Mode selects the search path.
type Mode string

const (
	ModeSpeed Mode = "speed"
	ModeHyper Mode = "hyper"
)

// ParseMode returns the Mode for s, or false when s names no mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSpeed:
		return ModeSpeed, true
	case ModeHyper:
		return ModeHyper, true
	}
	return "", false
}

// Origin tells where a word came from.
type Origin string

const (
	OriginGenerated Origin = "generated"
	OriginCrawled   Origin = "crawled"
)

// ValidationResult is produced once per word per validator call.
type ValidationResult struct {
	IsValid         bool     `json:"isValid" msgpack:"valid" yaml:"valid"`
	Confidence      float64  `json:"confidence" msgpack:"conf" yaml:"confidence"`
	Issues          []string `json:"issues" msgpack:"issues" yaml:"issues,omitempty"`
	Suggestions     []string `json:"suggestions" msgpack:"sugg" yaml:"suggestions,omitempty"`
	RarityScore     float64  `json:"rarityScore" msgpack:"rarity" yaml:"rarity"`
	MarketPotential float64  `json:"marketPotential" msgpack:"market" yaml:"market"`
}

// Scores are the ranking values of a WordResult. The optional fields are zero when unset.
type Scores struct {
	Rarity          float64 `json:"rarity" msgpack:"r" yaml:"rarity"`
	MarketPotential float64 `json:"marketPotential" msgpack:"m" yaml:"marketPotential"`
	Confidence      float64 `json:"confidence" msgpack:"c" yaml:"confidence"`
	Overall         float64 `json:"overall" msgpack:"o" yaml:"overall"`
	Brandability    float64 `json:"brandability,omitempty" msgpack:"b,omitempty" yaml:"brandability,omitempty"`
	Memorability    float64 `json:"memorability,omitempty" msgpack:"mem,omitempty" yaml:"memorability,omitempty"`
	Pronunciation   float64 `json:"pronunciation,omitempty" msgpack:"p,omitempty" yaml:"pronunciation,omitempty"`
}

// Metadata describes a scored word. Sources and Count are merged when the same
// word arrives from more than one origin.
type Metadata struct {
	Length     int              `json:"length" msgpack:"len" yaml:"length"`
	Patterns   []string         `json:"patterns" msgpack:"pat" yaml:"patterns"`
	Validation ValidationResult `json:"validation" msgpack:"val" yaml:"validation"`
	Sources    []string         `json:"sources,omitempty" msgpack:"src,omitempty" yaml:"sources,omitempty"`
	Count      int              `json:"count,omitempty" msgpack:"cnt,omitempty" yaml:"count,omitempty"`
	Syllables  int              `json:"syllables,omitempty" msgpack:"syl,omitempty" yaml:"syllables,omitempty"`
}

// WordResult is a scored candidate, keyed by Word within one result set.
type WordResult struct {
	Word     string   `json:"word" msgpack:"w" yaml:"word"`
	Source   Origin   `json:"source" msgpack:"s" yaml:"source"`
	Scores   Scores   `json:"scores" msgpack:"sc" yaml:"scores"`
	Metadata Metadata `json:"metadata" msgpack:"md" yaml:"metadata"`
}

// DominantPattern is the structural bucket a result is diversified by.
func (r WordResult) DominantPattern() string {
	if len(r.Metadata.Patterns) == 0 || r.Metadata.Patterns[0] == "" {
		return "unknown"
	}
	return r.Metadata.Patterns[0]
}

// Words returns the word strings of results in order.
func Words(results []WordResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Word
	}
	return out
}
