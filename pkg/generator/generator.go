// Package generator synthesizes candidate words from weighted consonant/vowel templates.
package generator

import (
	"math"
	"math/rand"
	"strings"

	"github.com/bastiangx/wordhunt/pkg/heuristics"
)

// Alphabets ordered by English letter frequency. Draws favor the front.
const (
	Consonants = "tnrsldcmpbfghvwykjxqz"
	Vowels     = "eaiouy"
)

// Template is a syllable skeleton such as "CVC" with its relative weight.
type Template struct {
	Pattern string
	Weight  float64
}

// DefaultTemplates is the fixed template table, in draw order.
var DefaultTemplates = []Template{
	{"CV", 0.8},
	{"CVC", 0.9},
	{"VC", 0.7},
	{"CVCV", 0.85},
	{"VCVC", 0.75},
	{"CVCC", 0.8},
	{"CCVC", 0.7},
	{"CVVC", 0.6},
	{"CCVCC", 0.75},
	{"CVCVC", 0.8},
}

// Generator is not safe for concurrent use; it owns its random source.
type Generator struct {
	rng       *rand.Rand
	templates []Template
	total     float64
}

// New returns a Generator drawing from rng over DefaultTemplates.
func New(rng *rand.Rand) *Generator {
	return NewWithTemplates(rng, DefaultTemplates)
}

// NewWithTemplates uses a custom template table.
func NewWithTemplates(rng *rand.Rand, templates []Template) *Generator {
	g := &Generator{rng: rng, templates: templates}
	for _, t := range templates {
		g.total += t.Weight
	}
	return g
}

// SelectTemplate makes a weighted draw. A positive bias pushes the draw toward the end of
// the table, which holds the longer templates; past the end it falls back to "CVC".
func (g *Generator) SelectTemplate(bias float64) string {
	r := (g.rng.Float64() + bias*0.3) * g.total
	for _, t := range g.templates {
		r -= t.Weight
		if r <= 0 {
			return t.Pattern
		}
	}
	return "CVC"
}

// BuildWord fills template with frequency-biased letters, pads with random letters up to
// minLen and truncates to exactly maxLen.
func (g *Generator) BuildWord(template string, minLen, maxLen int) string {
	var b strings.Builder
	for _, c := range template {
		switch c {
		case 'C':
			b.WriteByte(g.draw(Consonants))
		case 'V':
			b.WriteByte(g.draw(Vowels))
		}
	}
	for b.Len() < minLen {
		if g.rng.Float64() > 0.5 {
			b.WriteByte(g.draw(Consonants))
		} else {
			b.WriteByte(g.draw(Vowels))
		}
	}

	word := b.String()
	if maxLen > 0 && len(word) > maxLen {
		word = word[:maxLen]
	}
	return word
}

// Generate returns up to n English-looking words with length in [minLen,maxLen],
// making at most 3n attempts. Duplicates are possible.
func (g *Generator) Generate(n, minLen, maxLen int, bias float64) []string {
	var words []string
	for i := 0; i < n*3 && len(words) < n; i++ {
		word := g.BuildWord(g.SelectTemplate(bias), minLen, maxLen)
		if len(word) >= minLen && len(word) <= maxLen && heuristics.LooksEnglish(word) {
			words = append(words, word)
		}
	}
	return words
}

// Float64 exposes the generator's random source, used to derive a per-run bias.
func (g *Generator) Float64() float64 {
	return g.rng.Float64()
}

// draw picks index floor(r^1.5 * len(alphabet)).
func (g *Generator) draw(alphabet string) byte {
	i := int(math.Floor(math.Pow(g.rng.Float64(), 1.5) * float64(len(alphabet))))
	if i >= len(alphabet) {
		i = len(alphabet) - 1
	}
	return alphabet[i]
}
