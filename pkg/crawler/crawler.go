/*
Package crawler implements hyper mode: it pulls line-delimited word lists from web
sources, filters and scores every line, and merges words seen in more than one list.

Sources are fetched one at a time. A failing source is logged and skipped; the words
gathered from the other sources are kept.
*/
package crawler

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/heuristics"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/session"
	"github.com/bastiangx/wordhunt/pkg/validator"
)

// SourceType labels what a source serves.
type SourceType string

const (
	TypeDictionary SourceType = "dictionary"
	TypeWordlist   SourceType = "wordlist"
	TypeDomain     SourceType = "domain"
	TypeAPI        SourceType = "api"
)

// Source is one crawlable word list. Lower Priority is fetched first.
type Source struct {
	URL      string     `json:"url" toml:"url" yaml:"url"`
	Type     SourceType `json:"type" toml:"type" yaml:"type"`
	Priority int        `json:"priority" toml:"priority" yaml:"priority"`
}

// DefaultSources are the public English word lists crawled when none are configured.
func DefaultSources() []Source {
	return []Source{
		{URL: "https://raw.githubusercontent.com/dwyl/english-words/master/words_alpha.txt", Type: TypeWordlist, Priority: 1},
		{URL: "https://www.mit.edu/~ecprice/wordlist.10000", Type: TypeWordlist, Priority: 2},
		{URL: "https://raw.githubusercontent.com/first20hours/google-10000-english/master/google-10000-english-usa.txt", Type: TypeWordlist, Priority: 3},
		{URL: "https://raw.githubusercontent.com/bitcoin/bips/master/bip-0039/english.txt", Type: TypeWordlist, Priority: 4},
	}
}

const (
	successRatio = 0.5
	relaxDelta   = 0.05
)

// Stats summarizes one crawl.
type Stats struct {
	TotalCrawled int           `json:"totalCrawled" msgpack:"total" yaml:"totalCrawled"`
	ValidWords   int           `json:"validWords" msgpack:"valid" yaml:"validWords"`
	Sources      []string      `json:"sources" msgpack:"sources" yaml:"sources"`
	Duration     time.Duration `json:"durationMs" msgpack:"dur" yaml:"duration"`
}

// Result is the outcome of a crawl.
type Result struct {
	Words []model.WordResult `json:"words" msgpack:"words" yaml:"words"`
	Stats Stats              `json:"stats" msgpack:"stats" yaml:"stats"`
}

// Progress is called after every attempted source with the number of sources done.
type Progress func(done, total int, source string)

// Options configures a Crawler. Validator and Session are required.
type Options struct {
	Fetcher   Fetcher
	Validator *validator.Validator
	Session   session.Tracker
	Sources   []Source
	// Learning, when set, is snapshotted at the start of every crawl and used as an
	// extra basic filter.
	Learning *filters.Learning
	Clock    func() time.Time
	Logger   *log.Logger
}

// Crawler is not safe for concurrent crawls; the search orchestrator serializes them.
type Crawler struct {
	fetch    Fetcher
	val      *validator.Validator
	sess     session.Tracker
	sources  []Source
	learning *filters.Learning
	now      func() time.Time
	log      *log.Logger
}

func New(opts Options) *Crawler {
	c := &Crawler{
		fetch:    opts.Fetcher,
		val:      opts.Validator,
		sess:     opts.Session,
		sources:  append([]Source(nil), opts.Sources...),
		learning: opts.Learning,
		now:      opts.Clock,
		log:      opts.Logger,
	}
	if c.fetch == nil {
		c.fetch = NewHTTPFetcher(FetcherOptions{})
	}
	if len(c.sources) == 0 {
		c.sources = DefaultSources()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = logger.New("crawler")
	}
	return c
}

// Sources returns the configured source list.
func (c *Crawler) Sources() []Source {
	return append([]Source(nil), c.sources...)
}

// Crawl fetches up to depth sources and returns at most maxResults words matching a.
// Words reported by seen are skipped; a nil seen uses the session history. Only a
// cancelled or expired ctx fails the crawl.
func (c *Crawler) Crawl(ctx context.Context, a *filters.Advanced, maxResults, depth int, seen session.History, progress Progress) (Result, error) {
	start := c.now()
	if seen == nil {
		seen = c.sess
	}

	strategy := c.sess.PickStrategy()
	c.log.Debugf("Hyper mode using strategy %s", strategy.Name)
	if strategy.Name == session.FilterRelaxation {
		a = filters.Relax(a, relaxDelta)
	}

	selected := c.selectSources(strategy, depth)
	depth = c.adjustDepth(strategy, depth)
	if depth < len(selected) {
		selected = selected[:depth]
	}

	var learned *filters.LearningSnapshot
	if c.learning != nil {
		snap := c.learning.Snapshot()
		learned = &snap
	}

	merged := make(map[string]*model.WordResult)
	var order []string
	var used []string
	for i, src := range selected {
		words, err := c.crawlSource(ctx, src, a, learned)
		if progress != nil {
			progress(i+1, len(selected), src.URL)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			var fe *FetchError
			if !errors.As(err, &fe) {
				fe = &FetchError{URL: src.URL, Err: err}
			}
			c.log.Warnf("Skipping source: %v", fe)
			continue
		}

		fresh := 0
		for _, w := range words {
			if seen.IsWordReturned(w.Word) {
				continue
			}
			fresh++
			if existing, ok := merged[w.Word]; ok {
				existing.Metadata.Sources = append(existing.Metadata.Sources, w.Metadata.Sources...)
				existing.Metadata.Count++
				continue
			}
			merged[w.Word] = &w
			order = append(order, w.Word)
		}
		used = append(used, src.URL)
		c.log.Debugf("Crawled %d new words from %s", fresh, src.URL)
	}

	var candidates []model.WordResult
	for _, word := range order {
		if r := merged[word]; passesAdvanced(*r, a) {
			candidates = append(candidates, *r)
		}
	}

	results := model.Diversify(candidates, strategy.Name == session.PatternVariation)
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	c.sess.RecordSearch(model.ModeHyper, filters.ToSpec(a), model.Words(results), used)
	success := float64(len(results)) >= successRatio*float64(maxResults)
	c.sess.UpdateStrategySuccess(strategy.Name, success)

	stats := Stats{
		TotalCrawled: len(merged),
		ValidWords:   len(results),
		Sources:      used,
		Duration:     c.now().Sub(start),
	}
	c.log.Debugf("Hyper mode finished: %d crawled, %d kept, strategy %s, %s",
		stats.TotalCrawled, stats.ValidWords, strategy.Name, stats.Duration)
	return Result{Words: results, Stats: stats}, nil
}

// selectSources orders the candidate sources for strategy.
func (c *Crawler) selectSources(strategy session.Strategy, depth int) []Source {
	switch strategy.Name {
	case session.SourceRotation:
		urls := make([]string, len(c.sources))
		for i, s := range c.sources {
			urls[i] = s.URL
		}
		pick := make(map[string]bool)
		for _, u := range c.sess.LeastUsedSources(urls, depth+2) {
			pick[u] = true
		}
		var out []Source
		for _, s := range c.sources {
			if pick[s.URL] {
				out = append(out, s)
			}
		}
		return out
	case session.TimeBasedVariation:
		offset := c.now().Hour() % len(c.sources)
		return append(append([]Source(nil), c.sources[offset:]...), c.sources[:offset]...)
	}

	out := append([]Source(nil), c.sources...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func (c *Crawler) adjustDepth(strategy session.Strategy, depth int) int {
	if strategy.Name == session.DepthAdjustment {
		return min(depth+1, len(c.sources))
	}
	return depth
}

// crawlSource fetches one source and scores every line that passes the basic filters.
// A word is reported once per source.
func (c *Crawler) crawlSource(ctx context.Context, src Source, a *filters.Advanced, learned *filters.LearningSnapshot) ([]model.WordResult, error) {
	c.log.Debugf("Crawling %s", src.URL)
	text, err := c.fetch.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	var words []model.WordResult
	inSource := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		word := strings.ToLower(strings.TrimSpace(line))
		if _, dup := inSource[word]; dup || !passesBasic(word, a, learned) {
			continue
		}
		inSource[word] = struct{}{}

		v := c.val.Validate(word)
		if !v.IsValid {
			continue
		}
		words = append(words, model.WordResult{
			Word:   word,
			Source: model.OriginCrawled,
			Scores: model.Scores{
				Rarity:          v.RarityScore,
				MarketPotential: v.MarketPotential,
				Confidence:      v.Confidence,
				Overall:         overall(v),
				Brandability:    heuristics.Brandability(word),
				Memorability:    heuristics.Memorability(word),
				Pronunciation:   heuristics.Pronounceability(word),
			},
			Metadata: model.Metadata{
				Length:     len(word),
				Patterns:   heuristics.Patterns(word),
				Validation: v,
				Sources:    []string{src.URL},
				Count:      1,
				Syllables:  heuristics.Syllables(word),
			},
		})
	}
	return words, nil
}

func overall(v model.ValidationResult) float64 {
	s := v.Confidence*0.3 + v.RarityScore*0.4 + v.MarketPotential*0.3
	return math.Round(s*1e6) / 1e6
}
