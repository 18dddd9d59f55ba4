/*
Package speed generates candidate words without touching the network.

A run mixes three sources: a random sample of the backing dictionary, affix variations
of ~50 dictionary base words, and synthetic words from the pattern generator. Every
candidate is validated and scored once per engine lifetime; synthetic words need a
higher score to be accepted.
*/
package speed

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/dictionary"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/generator"
	"github.com/bastiangx/wordhunt/pkg/heuristics"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/session"
	"github.com/bastiangx/wordhunt/pkg/validator"
)

// SourceTag is recorded as the source of every speed search.
const SourceTag = "internal-generation"

const (
	dictionaryShare = 0.6
	patternShare    = 0.1
	baseWordCount   = 50
	baseMinLen      = 3
	baseMaxLen      = 8

	acceptScore        = 0.7
	acceptPatternScore = 0.8
	successRatio       = 0.5
)

// Options configures an Engine. Dictionary, Validator and Session are required.
type Options struct {
	Dictionary *dictionary.Dictionary
	Validator  *validator.Validator
	Session    session.Tracker
	// Rand drives sampling and generation. Defaults to a time-seeded source.
	Rand   *rand.Rand
	Logger *log.Logger
}

// Engine is safe for concurrent use; runs are serialized.
type Engine struct {
	mu    sync.Mutex
	dict  *dictionary.Dictionary
	val   *validator.Validator
	sess  session.Tracker
	rng   *rand.Rand
	gen   *generator.Generator
	cache map[string]model.WordResult
	log   *log.Logger
}

func New(opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l := opts.Logger
	if l == nil {
		l = logger.New("speed")
	}
	return &Engine{
		dict:  opts.Dictionary,
		val:   opts.Validator,
		sess:  opts.Session,
		rng:   rng,
		gen:   generator.New(rng),
		cache: make(map[string]model.WordResult),
		log:   l,
	}
}

// Generate produces up to count scored words matching f. Words reported by seen are
// skipped; a nil seen uses the session history. The context is checked between stages.
func (e *Engine) Generate(ctx context.Context, f filters.Filters, count int, seen session.History) ([]model.WordResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seen == nil {
		seen = e.sess
	}
	base := f.Base()
	strategy := e.sess.PickStrategy()
	e.log.Debugf("Speed mode using strategy %s", strategy.Name)

	var results []model.WordResult
	produced := make(map[string]struct{})
	consider := func(word string, threshold float64) {
		if _, dup := produced[word]; dup || seen.IsWordReturned(word) || !base.Matches(word) {
			return
		}
		produced[word] = struct{}{}
		if r := e.score(word); r.Scores.Overall >= threshold {
			results = append(results, r)
		}
	}

	for _, w := range e.dict.RandomWords(e.rng, int(float64(count)*dictionaryShare), base.Length.Min, base.Length.Max, base.Pattern.StartsWith) {
		consider(w, acceptScore)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, b := range e.dict.RandomWords(e.rng, baseWordCount, baseMinLen, baseMaxLen, "") {
		for _, v := range dictionary.Variations(b) {
			if base.InLength(v) && heuristics.LooksEnglish(v) {
				consider(v, acceptScore)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bias := 0.0
	if strategy.Name == session.PatternVariation {
		bias = e.gen.Float64()
	}
	for _, w := range e.gen.Generate(int(float64(count)*patternShare), base.Length.Min, base.Length.Max, bias) {
		consider(w, acceptPatternScore)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results = model.Diversify(results, strategy.Name == session.PatternVariation)
	if len(results) > count {
		results = results[:count]
	}

	e.sess.RecordSearch(model.ModeSpeed, filters.ToSpec(f), model.Words(results), []string{SourceTag})
	success := float64(len(results)) >= successRatio*float64(count)
	e.sess.UpdateStrategySuccess(strategy.Name, success)

	e.log.Debugf("Speed mode produced %d words (%d candidates)", len(results), len(produced))
	return results, nil
}

// score validates and scores word, memoized for the engine lifetime. Invalid words
// score 0.
func (e *Engine) score(word string) model.WordResult {
	if r, ok := e.cache[word]; ok {
		return r
	}

	v := e.val.Validate(word)
	r := model.WordResult{
		Word:   word,
		Source: model.OriginGenerated,
		Metadata: model.Metadata{
			Length:     len(word),
			Validation: v,
		},
	}
	if v.IsValid {
		r.Scores = model.Scores{
			Rarity:          v.RarityScore,
			MarketPotential: v.MarketPotential,
			Confidence:      v.Confidence,
			Overall:         round(v.Confidence*0.6 + v.RarityScore*0.4),
			Brandability:    heuristics.Brandability(word),
			Memorability:    heuristics.Memorability(word),
			Pronunciation:   heuristics.Pronounceability(word),
		}
		r.Metadata.Patterns = heuristics.Patterns(word)
		r.Metadata.Syllables = heuristics.Syllables(word)
		r.Metadata.Sources = []string{SourceTag}
		r.Metadata.Count = 1
	}
	e.cache[word] = r
	return r
}

// round trims float noise so equal scores compare equal across sources.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
