// Package analyzer inspects a filter set before a search and builds an informational
// processing plan: complexity, expected yield, crawl or generation strategy and the
// ordered steps the engines will run.
package analyzer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
)

type Complexity string

const (
	Simple   Complexity = "simple"
	Moderate Complexity = "moderate"
	Complex  Complexity = "complex"
)

// CrawlStrategy is the hyper mode part of an Analysis.
type CrawlStrategy struct {
	Depth    int      `json:"depth" msgpack:"depth" yaml:"depth"`
	Sources  []string `json:"sources" msgpack:"sources" yaml:"sources"`
	Priority string   `json:"priority" msgpack:"priority" yaml:"priority"`
}

// GenerationStrategy is the speed mode part of an Analysis.
type GenerationStrategy struct {
	Patterns []string `json:"patterns" msgpack:"patterns" yaml:"patterns"`
	Count    int      `json:"count" msgpack:"count" yaml:"count"`
	Quality  string   `json:"quality" msgpack:"quality" yaml:"quality"`
}

type Analysis struct {
	Complexity         Complexity          `json:"complexity" msgpack:"complexity" yaml:"complexity"`
	Score              int                 `json:"score" msgpack:"score" yaml:"score"`
	EstimatedResults   int                 `json:"estimatedResults" msgpack:"estimated" yaml:"estimatedResults"`
	ProcessingTime     string              `json:"processingTime" msgpack:"time" yaml:"processingTime"`
	Recommendations    []string            `json:"recommendations" msgpack:"recs" yaml:"recommendations"`
	Optimizations      []string            `json:"optimizations" msgpack:"opts" yaml:"optimizations"`
	CrawlStrategy      *CrawlStrategy      `json:"crawlStrategy,omitempty" msgpack:"crawl,omitempty" yaml:"crawlStrategy,omitempty"`
	GenerationStrategy *GenerationStrategy `json:"generationStrategy,omitempty" msgpack:"gen,omitempty" yaml:"generationStrategy,omitempty"`
}

type StepType string

const (
	StepValidation StepType = "validation"
	StepGeneration StepType = "generation"
	StepCrawling   StepType = "crawling"
	StepFiltering  StepType = "filtering"
	StepScoring    StepType = "scoring"
)

// Step is one entry of a processing plan. Steps are descriptive; nothing branches on them.
type Step struct {
	ID           string   `json:"id" msgpack:"id" yaml:"id"`
	Name         string   `json:"name" msgpack:"name" yaml:"name"`
	Description  string   `json:"description" msgpack:"desc" yaml:"description"`
	Type         StepType `json:"type" msgpack:"type" yaml:"type"`
	Priority     int      `json:"priority" msgpack:"prio" yaml:"priority"`
	Dependencies []string `json:"dependencies" msgpack:"deps" yaml:"dependencies"`
}

type Plan struct {
	Mode              model.Mode    `json:"mode" msgpack:"mode" yaml:"mode"`
	Filters           filters.Spec  `json:"filters" msgpack:"filters" yaml:"filters"`
	Analysis          Analysis      `json:"analysis" msgpack:"analysis" yaml:"analysis"`
	Steps             []Step        `json:"steps" msgpack:"steps" yaml:"steps"`
	EstimatedDuration time.Duration `json:"estimatedDuration" msgpack:"eta" yaml:"estimatedDuration"`
}

// Analyzer builds plans. The optional Advisor adds one remote insight to the
// recommendations; its failures never fail a plan.
type Analyzer struct {
	advisor Advisor
	log     *log.Logger
}

func New(advisor Advisor, l *log.Logger) *Analyzer {
	if l == nil {
		l = logger.New("analyzer")
	}
	return &Analyzer{advisor: advisor, log: l}
}

const insightLength = 200

// Plan analyzes f for a search of maxResults words. f must already be validated.
func (a *Analyzer) Plan(ctx context.Context, f filters.Filters, maxResults int) Plan {
	mode := f.Mode()
	analysis := Analyze(f)
	plan := Plan{
		Mode:              mode,
		Filters:           filters.ToSpec(f),
		Analysis:          analysis,
		Steps:             Steps(mode, analysis),
		EstimatedDuration: EstimateDuration(analysis.Complexity, mode, maxResults),
	}

	if a.advisor == nil {
		return plan
	}
	insight, err := a.advisor.Advise(ctx, Prompt(mode, plan.Filters, maxResults))
	if err != nil {
		a.log.Warnf("Advisor unavailable, using local analysis: %v", err)
		return plan
	}
	if insight == "" {
		return plan
	}
	if r := []rune(insight); len(r) > insightLength {
		insight = string(r[:insightLength])
	}
	plan.Analysis.Recommendations = append([]string{"AI Insight: " + insight + "..."}, plan.Analysis.Recommendations...)
	a.log.Debug("Advisor insight added to plan")
	return plan
}

// Analyze scores the complexity of f and derives the mode strategy.
func Analyze(f filters.Filters) Analysis {
	base := f.Base()
	score := 0
	recs := []string{}
	opts := []string{}

	switch r := base.Length.Max - base.Length.Min; {
	case r > 10:
		score += 2
		recs = append(recs, "Consider narrowing the length range for better results")
	case r > 5:
		score++
	}
	if base.Pattern.StartsWith != "" {
		score++
	}
	if base.Pattern.EndsWith != "" {
		score++
	}
	if base.Pattern.Contains != "" {
		score += 2
	}

	var analysis Analysis
	if adv, err := filters.AsAdvanced(f); err == nil {
		if adv.Rarity.Min > 0 || adv.Rarity.Max < 1 {
			score += 2
			if adv.Rarity.Min > 0.7 {
				recs = append(recs, "High rarity threshold may limit results significantly")
			}
		}
		if adv.MarketPotential > 0 {
			score += 2
			if adv.MarketPotential > 0.7 {
				recs = append(recs, "High market potential threshold requires deep analysis")
			}
		}
		if (adv.Pronunciation.Difficulty != "" && adv.Pronunciation.Difficulty != "any") || adv.Pronunciation.Syllables != nil {
			score++
		}
		if adv.Memorability > 0 {
			score++
		}
		if adv.Linguistic != (filters.Linguistic{}) {
			score += 2
			if !adv.Linguistic.RequireVowels {
				opts = append(opts, "Allowing consonant-only words may produce unusual results")
			}
		}
		analysis.CrawlStrategy = &CrawlStrategy{
			Depth:    crawlDepth(score),
			Sources:  crawlSourceKinds(adv),
			Priority: crawlPriority(adv),
		}
	} else {
		analysis.GenerationStrategy = &GenerationStrategy{
			Patterns: generationPatterns(base),
			Count:    generationCount(base),
			Quality:  "standard",
		}
	}

	analysis.Score = score
	analysis.Complexity = complexityOf(score)
	analysis.EstimatedResults = estimateResults(base, f.Mode(), analysis.Complexity)
	analysis.ProcessingTime = map[Complexity]string{Simple: "fast", Moderate: "medium", Complex: "slow"}[analysis.Complexity]
	analysis.Recommendations = recs
	analysis.Optimizations = opts
	return analysis
}

func complexityOf(score int) Complexity {
	switch {
	case score <= 3:
		return Simple
	case score <= 7:
		return Moderate
	}
	return Complex
}

func crawlDepth(score int) int {
	switch {
	case score <= 3:
		return 1
	case score <= 7:
		return 2
	}
	return 3
}

func crawlSourceKinds(a *filters.Advanced) []string {
	kinds := []string{"dictionary", "thesaurus", "word-lists"}
	if a.Rarity.Min > 0.5 {
		kinds = append(kinds, "rare-words", "technical-terms")
	}
	if a.MarketPotential > 0.6 {
		kinds = append(kinds, "brand-names", "domain-names")
	}
	return kinds
}

func crawlPriority(a *filters.Advanced) string {
	switch {
	case a.Rarity.Min > 0.7 || a.MarketPotential > 0.7:
		return "quality"
	case a.Rarity.Min > 0.4 || a.MarketPotential > 0.4:
		return "balanced"
	}
	return "speed"
}

func generationPatterns(f *filters.Flexible) []string {
	patterns := []string{"CVC", "CVCV", "CVCC", "CCVC"}
	if f.Length.Max >= 8 {
		patterns = append(patterns, "CVCVCV", "CVCCVC")
	}
	if f.Length.Min <= 4 {
		patterns = append(patterns, "CV", "VC")
	}
	return patterns
}

func generationCount(f *filters.Flexible) int {
	count := 1000.0
	if f.Pattern.StartsWith != "" {
		count *= 0.5
	}
	if f.Pattern.EndsWith != "" {
		count *= 0.5
	}
	if f.Pattern.Contains != "" {
		count *= 0.3
	}
	return max(500, int(count))
}

func estimateResults(f *filters.Flexible, mode model.Mode, c Complexity) int {
	estimate := 1000.0
	if mode == model.ModeHyper {
		estimate = 3000
	}
	switch c {
	case Moderate:
		estimate *= 0.6
	case Complex:
		estimate *= 0.3
	}
	if f.Pattern.StartsWith != "" {
		estimate *= 0.4
	}
	if f.Pattern.EndsWith != "" {
		estimate *= 0.4
	}
	if f.Pattern.Contains != "" {
		estimate *= 0.2
	}
	return max(50, int(math.Floor(estimate)))
}

// EstimateDuration is a rough wall-clock guess for a run.
func EstimateDuration(c Complexity, mode model.Mode, maxResults int) time.Duration {
	ms := 2000.0
	if mode == model.ModeHyper {
		ms = 5000
	}
	switch c {
	case Moderate:
		ms *= 1.5
	case Complex:
		ms *= 2.5
	}
	if maxResults > 1000 {
		ms *= 1.3
	}
	if maxResults > 3000 {
		ms *= 1.6
	}
	return time.Duration(ms) * time.Millisecond
}

// Steps lists the processing steps of a mode in run order.
func Steps(mode model.Mode, a Analysis) []Step {
	steps := []Step{{
		ID: "validate-filters", Name: "Validate Filters", Type: StepValidation, Priority: 1,
		Description: "Verify all filter parameters are valid", Dependencies: []string{},
	}}

	last := ""
	if mode == model.ModeSpeed {
		patterns := 0
		if a.GenerationStrategy != nil {
			patterns = len(a.GenerationStrategy.Patterns)
		}
		steps = append(steps,
			Step{ID: "initialize-generator", Name: "Initialize Word Generator", Type: StepGeneration, Priority: 2,
				Description: "Prepare internal word generation engine", Dependencies: []string{"validate-filters"}},
			Step{ID: "generate-words", Name: "Generate Words", Type: StepGeneration, Priority: 3,
				Description: fmt.Sprintf("Generate words using %d patterns", patterns), Dependencies: []string{"initialize-generator"}},
			Step{ID: "apply-flexible-filters", Name: "Apply Flexible Filters", Type: StepFiltering, Priority: 4,
				Description: "Filter generated words by length and pattern", Dependencies: []string{"generate-words"}},
		)
		last = "apply-flexible-filters"
	} else {
		depth, sources := 1, 0
		if a.CrawlStrategy != nil {
			depth, sources = a.CrawlStrategy.Depth, len(a.CrawlStrategy.Sources)
		}
		steps = append(steps,
			Step{ID: "prepare-crawler", Name: "Prepare Web Crawler", Type: StepCrawling, Priority: 2,
				Description: fmt.Sprintf("Initialize crawler with depth %d", depth), Dependencies: []string{"validate-filters"}},
			Step{ID: "crawl-sources", Name: "Crawl Web Sources", Type: StepCrawling, Priority: 3,
				Description: fmt.Sprintf("Scrape %d sources", sources), Dependencies: []string{"prepare-crawler"}},
			Step{ID: "apply-advanced-filters", Name: "Apply Advanced Filters", Type: StepFiltering, Priority: 4,
				Description: "Filter results by rarity, market potential and linguistic rules", Dependencies: []string{"crawl-sources"}},
			Step{ID: "deep-analysis", Name: "Deep Analysis", Type: StepScoring, Priority: 5,
				Description: "Analyze pronunciation, memorability and market potential", Dependencies: []string{"apply-advanced-filters"}},
		)
		last = "deep-analysis"
	}

	next := steps[len(steps)-1].Priority + 1
	return append(steps,
		Step{ID: "validate-words", Name: "Validate Words", Type: StepValidation, Priority: next,
			Description: "Verify English validity of every candidate", Dependencies: []string{last}},
		Step{ID: "score-and-rank", Name: "Score and Rank", Type: StepScoring, Priority: next + 1,
			Description: "Calculate final scores and rank results", Dependencies: []string{"validate-words"}},
	)
}
