/*
Package search is the entry point for word discovery. An Orchestrator validates a
request, plans it, dispatches it to the speed engine or the crawler and removes words
the session returned before the request started.

One request runs at a time per Orchestrator.
*/
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/analyzer"
	"github.com/bastiangx/wordhunt/pkg/crawler"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/session"
	"github.com/bastiangx/wordhunt/pkg/speed"
	"github.com/bastiangx/wordhunt/pkg/validator"
)

// Request limits.
const (
	MinResults     = 10
	MaxResults     = 10000
	MinDepth       = 1
	MaxDepth       = 5
	DefaultTimeout = 120 * time.Second
	DefaultDepth   = 3
)

// Request is one search. Mode is ignored by SearchBoth. Depth 0 lets the analyzer decide.
type Request struct {
	Mode       model.Mode   `json:"mode" msgpack:"mode" yaml:"mode"`
	Filters    filters.Spec `json:"filters" msgpack:"filters" yaml:"filters"`
	MaxResults int          `json:"maxResults" msgpack:"maxResults" yaml:"maxResults"`
	Depth      int          `json:"depth,omitempty" msgpack:"depth,omitempty" yaml:"depth,omitempty"`
}

// Response is the result of Search. Crawl is set for hyper mode only.
type Response struct {
	Words []model.WordResult `json:"words" msgpack:"words" yaml:"words"`
	Plan  analyzer.Plan      `json:"plan" msgpack:"plan" yaml:"plan"`
	Crawl *crawler.Stats     `json:"crawl,omitempty" msgpack:"crawl,omitempty" yaml:"crawl,omitempty"`
}

// BothResponse keeps the per-mode lists next to the merged one.
type BothResponse struct {
	Speed    []model.WordResult `json:"speed" msgpack:"speed" yaml:"speed"`
	Hyper    []model.WordResult `json:"hyper" msgpack:"hyper" yaml:"hyper"`
	Combined []model.WordResult `json:"combined" msgpack:"combined" yaml:"combined"`
	Crawl    *crawler.Stats     `json:"crawl,omitempty" msgpack:"crawl,omitempty" yaml:"crawl,omitempty"`
}

// WordValidation pairs a word with its validation result.
type WordValidation struct {
	Word   string                 `json:"word" msgpack:"word" yaml:"word"`
	Result model.ValidationResult `json:"result" msgpack:"result" yaml:"result"`
}

// Feedback is a user verdict on a word, optionally rating the filters that found it.
type Feedback struct {
	Word         string        `json:"word" msgpack:"word" yaml:"word"`
	Positive     bool          `json:"positive" msgpack:"positive" yaml:"positive"`
	Filters      *filters.Spec `json:"filters,omitempty" msgpack:"filters,omitempty" yaml:"filters,omitempty"`
	Satisfaction *float64      `json:"satisfaction,omitempty" msgpack:"satisfaction,omitempty" yaml:"satisfaction,omitempty"`
}

// Options wires an Orchestrator. Speed, Crawler, Session and Validator are required.
type Options struct {
	Speed     *speed.Engine
	Crawler   *crawler.Crawler
	Session   *session.Store
	Validator *validator.Validator
	Analyzer  *analyzer.Analyzer
	Learning  *filters.Learning
	Timeout   time.Duration
	Logger    *log.Logger
	// Progress receives per-source crawl progress.
	Progress crawler.Progress
}

type Orchestrator struct {
	mu       sync.Mutex
	speed    *speed.Engine
	crawler  *crawler.Crawler
	sess     *session.Store
	val      *validator.Validator
	analyzer *analyzer.Analyzer
	learning *filters.Learning
	timeout  time.Duration
	progress crawler.Progress
	log      *log.Logger
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		speed:    opts.Speed,
		crawler:  opts.Crawler,
		sess:     opts.Session,
		val:      opts.Validator,
		analyzer: opts.Analyzer,
		learning: opts.Learning,
		timeout:  opts.Timeout,
		progress: opts.Progress,
		log:      opts.Logger,
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.log == nil {
		o.log = logger.New("search")
	}
	if o.analyzer == nil {
		o.analyzer = analyzer.New(nil, o.log)
	}
	if o.learning == nil {
		o.learning = filters.NewLearning()
	}
	return o
}

// ValidateRequest checks the request shape. Filters are checked separately per mode.
func ValidateRequest(req Request, checkMode bool) error {
	var problems []string
	if checkMode {
		if _, ok := model.ParseMode(string(req.Mode)); !ok {
			problems = append(problems, fmt.Sprintf("mode: must be %q or %q", model.ModeSpeed, model.ModeHyper))
		}
	}
	if req.MaxResults < MinResults || req.MaxResults > MaxResults {
		problems = append(problems, fmt.Sprintf("maxResults: must be between %d and %d", MinResults, MaxResults))
	}
	if req.Depth != 0 && (req.Depth < MinDepth || req.Depth > MaxDepth) {
		problems = append(problems, fmt.Sprintf("depth: must be between %d and %d", MinDepth, MaxDepth))
	}
	if len(problems) > 0 {
		return &filters.ValidationError{Subject: "request", Problems: problems}
	}
	return nil
}

// prepare validates and optimizes the filters of req for mode.
func prepare(mode model.Mode, spec filters.Spec) (filters.Filters, error) {
	f := filters.ForMode(mode, spec)
	if err := filters.Validate(f); err != nil {
		return nil, err
	}
	return filters.Optimize(f), nil
}

// Search runs one mode and returns words the session had not returned before the call.
func (o *Orchestrator) Search(ctx context.Context, req Request) (resp Response, err error) {
	if err := ValidateRequest(req, true); err != nil {
		return Response{}, err
	}
	mode, _ := model.ParseMode(string(req.Mode))
	f, err := prepare(mode, req.Filters)
	if err != nil {
		return Response{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.recoverUnexpected(&err)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	checkpoint := o.sess.Checkpoint()
	resp, err = o.run(ctx, f, req, checkpoint)
	if err != nil {
		return Response{}, o.wrap(err)
	}
	return resp, nil
}

// SearchBoth runs speed then hyper against the same pre-call history and merges them.
func (o *Orchestrator) SearchBoth(ctx context.Context, req Request) (resp BothResponse, err error) {
	if err := ValidateRequest(req, false); err != nil {
		return BothResponse{}, err
	}
	sf, err := prepare(model.ModeSpeed, req.Filters)
	if err != nil {
		return BothResponse{}, err
	}
	hf, err := prepare(model.ModeHyper, req.Filters)
	if err != nil {
		return BothResponse{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.recoverUnexpected(&err)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	checkpoint := o.sess.Checkpoint()
	sr, err := o.run(ctx, sf, req, checkpoint)
	if err != nil {
		return BothResponse{}, o.wrap(err)
	}
	hr, err := o.run(ctx, hf, req, checkpoint)
	if err != nil {
		return BothResponse{}, o.wrap(err)
	}

	return BothResponse{
		Speed:    sr.Words,
		Hyper:    hr.Words,
		Combined: Merge(sr.Words, hr.Words),
		Crawl:    hr.Crawl,
	}, nil
}

func (o *Orchestrator) run(ctx context.Context, f filters.Filters, req Request, checkpoint session.WordSet) (Response, error) {
	plan := o.analyzer.Plan(ctx, f, req.MaxResults)
	o.logPlan(plan)

	resp := Response{Plan: plan}
	switch f.Mode() {
	case model.ModeSpeed:
		words, err := o.speed.Generate(ctx, f, req.MaxResults, checkpoint)
		if err != nil {
			return Response{}, err
		}
		resp.Words = words
	case model.ModeHyper:
		adv, err := filters.AsAdvanced(f)
		if err != nil {
			return Response{}, err
		}
		depth := req.Depth
		if depth == 0 && plan.Analysis.CrawlStrategy != nil {
			depth = plan.Analysis.CrawlStrategy.Depth
		}
		if depth == 0 {
			depth = DefaultDepth
		}
		res, err := o.crawler.Crawl(ctx, adv, req.MaxResults, depth, checkpoint, o.progress)
		if err != nil {
			return Response{}, err
		}
		resp.Words = res.Words
		resp.Crawl = &res.Stats
		o.log.Debugf("Crawl stats: %d crawled, %d valid, %d sources, %s",
			res.Stats.TotalCrawled, res.Stats.ValidWords, len(res.Stats.Sources), res.Stats.Duration)
	}

	before := len(resp.Words)
	resp.Words = dropReturned(resp.Words, checkpoint)
	if removed := before - len(resp.Words); removed > 0 {
		o.log.Debugf("Dropped %d words returned earlier in the session", removed)
	}
	o.log.Debugf("Search finished with %d unique %s results", len(resp.Words), f.Mode())
	return resp, nil
}

func (o *Orchestrator) logPlan(p analyzer.Plan) {
	o.log.Debugf("Plan: %s mode, %s complexity, ~%d results, %s, %d steps, eta %s",
		p.Mode, p.Analysis.Complexity, p.Analysis.EstimatedResults, p.Analysis.ProcessingTime,
		len(p.Steps), p.EstimatedDuration)
	for _, r := range p.Analysis.Recommendations {
		o.log.Debugf("Recommendation: %s", r)
	}
	for _, s := range p.Steps {
		o.log.Debugf("Step %d: %s (%s)", s.Priority, s.Name, s.Type)
	}
}

func (o *Orchestrator) wrap(err error) error {
	var ve *filters.ValidationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &TimeoutError{After: o.timeout}
	case errors.As(err, &ve):
		return err
	}
	o.log.Errorf("Search failed: %v", err)
	return &UnexpectedError{Err: err}
}

func (o *Orchestrator) recoverUnexpected(err *error) {
	if r := recover(); r != nil {
		o.log.Errorf("Search panicked: %v", r)
		*err = &UnexpectedError{Err: fmt.Errorf("panic: %v", r)}
	}
}

func dropReturned(words []model.WordResult, seen session.History) []model.WordResult {
	out := words[:0:0]
	for _, w := range words {
		if !seen.IsWordReturned(w.Word) {
			out = append(out, w)
		}
	}
	return out
}

// Merge combines speed and hyper results. A word present in both keeps the maximum of
// every score field and the union of its sources. The result is sorted by overall score.
func Merge(speedWords, hyperWords []model.WordResult) []model.WordResult {
	index := make(map[string]int, len(speedWords)+len(hyperWords))
	var merged []model.WordResult
	for _, list := range [][]model.WordResult{speedWords, hyperWords} {
		for _, w := range list {
			i, ok := index[w.Word]
			if !ok {
				w.Metadata.Sources = append([]string(nil), w.Metadata.Sources...)
				index[w.Word] = len(merged)
				merged = append(merged, w)
				continue
			}
			e := &merged[i]
			e.Scores = maxScores(e.Scores, w.Scores)
			e.Metadata.Sources = union(e.Metadata.Sources, w.Metadata.Sources)
		}
	}
	model.SortByOverall(merged)
	return merged
}

func maxScores(a, b model.Scores) model.Scores {
	return model.Scores{
		Rarity:          max(a.Rarity, b.Rarity),
		MarketPotential: max(a.MarketPotential, b.MarketPotential),
		Confidence:      max(a.Confidence, b.Confidence),
		Overall:         max(a.Overall, b.Overall),
		Brandability:    max(a.Brandability, b.Brandability),
		Memorability:    max(a.Memorability, b.Memorability),
		Pronunciation:   max(a.Pronunciation, b.Pronunciation),
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			a = append(a, s)
		}
	}
	return a
}

// Validate runs the validator over words in order.
func (o *Orchestrator) Validate(words []string) []WordValidation {
	out := make([]WordValidation, len(words))
	for i, w := range words {
		out[i] = WordValidation{Word: w, Result: o.val.Validate(w)}
	}
	return out
}

// Stats summarizes the session.
func (o *Orchestrator) Stats() session.Stats {
	return o.sess.Stats()
}

// Reset starts a new session.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sess.Reset()
	o.log.Info("Session reset")
}

// Feedback folds a user verdict into the learning state and, when rated, the
// session's filter history.
func (o *Orchestrator) Feedback(fb Feedback) filters.LearningSnapshot {
	o.learning.Feedback(fb.Word, fb.Positive)
	if fb.Filters != nil {
		satisfaction := 0.0
		if fb.Positive {
			satisfaction = 1
		}
		if fb.Satisfaction != nil {
			satisfaction = *fb.Satisfaction
		}
		o.sess.RecordFilterUsage(*fb.Filters, satisfaction)
	}
	return o.learning.Snapshot()
}
