/*
Package session keeps the per-session search memory: words already returned, source
usage counts and the adaptive strategies with their success rates.

A session lives for 24 hours. State is persisted as one flat msgpack snapshot through a
Backend after every mutation; a missing, stale or malformed snapshot simply starts a
fresh session.
*/
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
)

// Strategy names.
const (
	SourceRotation     = "source_rotation"
	PatternVariation   = "pattern_variation"
	DepthAdjustment    = "depth_adjustment"
	FilterRelaxation   = "filter_relaxation"
	TimeBasedVariation = "time_based_variation"
)

const (
	// DefaultTTL is how long a session survives between runs.
	DefaultTTL = 24 * time.Hour
	// DefaultKey is the snapshot key used when none is configured.
	DefaultKey = "wordhunt_session"

	recentlyUsed  = 60 * time.Second
	successWeight = 0.2
)

// Strategy is a named way of varying sources, patterns or depth between runs.
type Strategy struct {
	Name        string    `json:"name" msgpack:"name" yaml:"name"`
	Description string    `json:"description" msgpack:"desc" yaml:"description"`
	Priority    int       `json:"priority" msgpack:"prio" yaml:"priority"`
	LastUsed    time.Time `json:"lastUsed" msgpack:"last" yaml:"lastUsed"`
	SuccessRate float64   `json:"successRate" msgpack:"rate" yaml:"successRate"`
}

// SearchHistory is one recorded search.
type SearchHistory struct {
	Timestamp    time.Time    `json:"timestamp" msgpack:"ts" yaml:"timestamp"`
	Mode         model.Mode   `json:"mode" msgpack:"mode" yaml:"mode"`
	Filters      filters.Spec `json:"filters" msgpack:"filters" yaml:"filters"`
	ResultsCount int          `json:"resultsCount" msgpack:"n" yaml:"resultsCount"`
	Sources      []string     `json:"sources" msgpack:"src" yaml:"sources"`
}

// FilterUsage records how satisfied the user was with a filter set, in [0,1].
type FilterUsage struct {
	Filters      filters.Spec `json:"filters" msgpack:"filters"`
	Timestamp    time.Time    `json:"timestamp" msgpack:"ts"`
	Satisfaction float64      `json:"satisfaction" msgpack:"sat"`
}

// Stats is a read-only summary of the session.
type Stats struct {
	SessionID     string        `json:"sessionId" msgpack:"id" yaml:"sessionId"`
	Duration      time.Duration `json:"duration" msgpack:"dur" yaml:"duration"`
	TotalSearches int           `json:"totalSearches" msgpack:"searches" yaml:"totalSearches"`
	UniqueWords   int           `json:"uniqueWords" msgpack:"words" yaml:"uniqueWords"`
	SourcesUsed   int           `json:"sourcesUsed" msgpack:"sources" yaml:"sourcesUsed"`
	Strategies    []Strategy    `json:"strategies" msgpack:"strategies" yaml:"strategies"`
}

// History answers "was this word returned before".
type History interface {
	IsWordReturned(word string) bool
}

// WordSet is an immutable set of words, used as a history checkpoint.
type WordSet map[string]struct{}

func (w WordSet) IsWordReturned(word string) bool {
	_, ok := w[word]
	return ok
}

// snapshot is the persisted shape. Sets and maps are flattened for the wire.
type snapshot struct {
	SessionID     string          `msgpack:"sessionId"`
	StartTime     time.Time       `msgpack:"startTime"`
	Searches      []SearchHistory `msgpack:"searches"`
	ReturnedWords []string        `msgpack:"returnedWords"`
	UsedSources   map[string]int  `msgpack:"usedSources"`
	FilterHistory []FilterUsage   `msgpack:"filterHistory"`
	Strategies    []Strategy      `msgpack:"adaptiveStrategies"`
}

// Options configures a Store. Zero values take the defaults.
type Options struct {
	Backend Backend
	Key     string
	TTL     time.Duration
	Clock   func() time.Time
	Logger  *log.Logger
}

// Store owns one session. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	backend Backend
	key     string
	ttl     time.Duration
	now     func() time.Time
	log     *log.Logger

	id        string
	start     time.Time
	searches  []SearchHistory
	returned  map[string]struct{}
	sources   map[string]int
	filterUse []FilterUsage
	strats    []Strategy
}

// New builds a Store and restores the persisted session if it is still fresh.
func New(opts Options) *Store {
	s := &Store{
		backend: opts.Backend,
		key:     opts.Key,
		ttl:     opts.TTL,
		now:     opts.Clock,
		log:     opts.Logger,
	}
	if s.backend == nil {
		s.backend = NewMemoryBackend()
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logger.New("session")
	}
	s.RestoreOrCreate()
	return s
}

// DefaultStrategies returns the seed strategy list.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: SourceRotation, Description: "Rotate between different web sources", Priority: 1, SuccessRate: 0.8},
		{Name: PatternVariation, Description: "Vary generation patterns", Priority: 2, SuccessRate: 0.75},
		{Name: DepthAdjustment, Description: "Adjust crawl depth dynamically", Priority: 3, SuccessRate: 0.7},
		{Name: FilterRelaxation, Description: "Slightly relax filters for diversity", Priority: 4, SuccessRate: 0.65},
		{Name: TimeBasedVariation, Description: "Use time-based seed for randomization", Priority: 5, SuccessRate: 0.6},
	}
}

// RestoreOrCreate loads the persisted snapshot when it is younger than the TTL and starts
// a fresh session otherwise.
func (s *Store) RestoreOrCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.load(); ok {
		s.id = snap.SessionID
		s.start = snap.StartTime
		s.searches = snap.Searches
		s.returned = make(map[string]struct{}, len(snap.ReturnedWords))
		for _, w := range snap.ReturnedWords {
			s.returned[w] = struct{}{}
		}
		s.sources = snap.UsedSources
		if s.sources == nil {
			s.sources = make(map[string]int)
		}
		s.filterUse = snap.FilterHistory
		s.strats = snap.Strategies
		if len(s.strats) == 0 {
			s.strats = DefaultStrategies()
		}
		s.log.Debugf("Restored session %s with %d returned words", s.id, len(s.returned))
		return
	}
	s.fresh()
}

func (s *Store) load() (snapshot, bool) {
	var snap snapshot
	data, err := s.backend.Load(s.key)
	if err != nil {
		if err != ErrNotFound {
			s.log.Warnf("Failed to load session snapshot: %v", err)
		}
		return snap, false
	}
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		s.log.Warnf("Ignoring malformed session snapshot: %v", err)
		return snap, false
	}
	if snap.SessionID == "" || snap.StartTime.IsZero() {
		s.log.Warnf("Ignoring incomplete session snapshot")
		return snap, false
	}
	if s.now().Sub(snap.StartTime) >= s.ttl {
		s.log.Debugf("Session %s expired", snap.SessionID)
		return snap, false
	}
	return snap, true
}

// fresh starts a new session. Callers hold s.mu.
func (s *Store) fresh() {
	s.id = "session_" + ulid.Make().String()
	s.start = s.now()
	s.searches = nil
	s.returned = make(map[string]struct{})
	s.sources = make(map[string]int)
	s.filterUse = nil
	s.strats = DefaultStrategies()
	s.log.Debugf("Started session %s", s.id)
}

// persist saves the snapshot. Failures are logged; history is best effort. Callers hold s.mu.
func (s *Store) persist() {
	words := make([]string, 0, len(s.returned))
	for w := range s.returned {
		words = append(words, w)
	}
	sort.Strings(words)

	data, err := msgpack.Marshal(snapshot{
		SessionID:     s.id,
		StartTime:     s.start,
		Searches:      s.searches,
		ReturnedWords: words,
		UsedSources:   s.sources,
		FilterHistory: s.filterUse,
		Strategies:    s.strats,
	})
	if err != nil {
		s.log.Warnf("Failed to encode session snapshot: %v", err)
		return
	}
	if err := s.backend.Save(s.key, data); err != nil {
		s.log.Warnf("Failed to persist session snapshot: %v", err)
	}
}

// PickStrategy returns the next strategy and stamps its LastUsed. Strategies not used in
// the last minute come first, then higher success rates. Ties keep seed order.
func (s *Store) PickStrategy() Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := make([]int, len(s.strats))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := s.strats[order[i]], s.strats[order[j]]
		d := a.LastUsed.Sub(b.LastUsed)
		if d < -recentlyUsed {
			return true
		}
		if d > recentlyUsed {
			return false
		}
		return a.SuccessRate > b.SuccessRate
	})

	picked := &s.strats[order[0]]
	picked.LastUsed = s.now()
	s.persist()
	return *picked
}

// RecordSearch appends a history entry, marks words as returned and counts sources.
func (s *Store) RecordSearch(mode model.Mode, f filters.Spec, words, sources []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searches = append(s.searches, SearchHistory{
		Timestamp:    s.now(),
		Mode:         mode,
		Filters:      f,
		ResultsCount: len(words),
		Sources:      append([]string(nil), sources...),
	})
	for _, w := range words {
		s.returned[w] = struct{}{}
	}
	for _, src := range sources {
		s.sources[src]++
	}
	s.persist()
}

// RecordFilterUsage stores user satisfaction with a filter set. Satisfaction is clamped to [0,1].
func (s *Store) RecordFilterUsage(f filters.Spec, satisfaction float64) {
	satisfaction = min(1, max(0, satisfaction))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterUse = append(s.filterUse, FilterUsage{Filters: f, Timestamp: s.now(), Satisfaction: satisfaction})
	s.persist()
}

// UpdateStrategySuccess folds one outcome into the strategy's moving average.
// Unknown names are ignored.
func (s *Store) UpdateStrategySuccess(name string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.strats {
		if s.strats[i].Name != name {
			continue
		}
		outcome := 0.0
		if success {
			outcome = 1
		}
		s.strats[i].SuccessRate = s.strats[i].SuccessRate*(1-successWeight) + outcome*successWeight
		s.persist()
		return
	}
}

// IsWordReturned reports whether word was returned earlier in this session.
func (s *Store) IsWordReturned(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.returned[word]
	return ok
}

// FilterDuplicates drops words already returned, keeping order.
func (s *Store) FilterDuplicates(words []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := s.returned[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

// Checkpoint copies the returned-word set as it is now.
func (s *Store) Checkpoint() WordSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(WordSet, len(s.returned))
	for w := range s.returned {
		set[w] = struct{}{}
	}
	return set
}

// LeastUsedSources orders candidates by ascending usage count, stable on ties, and
// returns the first n. The input slice is not modified.
func (s *Store) LeastUsedSources(candidates []string, n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]string(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return s.sources[sorted[i]] < s.sources[sorted[j]]
	})
	if n < len(sorted) {
		sorted = sorted[:max(n, 0)]
	}
	return sorted
}

// SourceUsage returns how often source was used.
func (s *Store) SourceUsage(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sources[source]
}

// Strategies returns a copy of the strategy table.
func (s *Store) Strategies() []Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Strategy(nil), s.strats...)
}

// Searches returns a copy of the search history.
func (s *Store) Searches() []SearchHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SearchHistory(nil), s.searches...)
}

// Stats summarizes the session.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		SessionID:     s.id,
		Duration:      s.now().Sub(s.start),
		TotalSearches: len(s.searches),
		UniqueWords:   len(s.returned),
		SourcesUsed:   len(s.sources),
		Strategies:    append([]Strategy(nil), s.strats...),
	}
}

// Reset discards all state and starts a new session with the seed strategies.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh()
	s.persist()
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Tracker is the part of a Store the search engines depend on.
type Tracker interface {
	History
	PickStrategy() Strategy
	RecordSearch(mode model.Mode, f filters.Spec, words, sources []string)
	UpdateStrategySuccess(name string, success bool)
	LeastUsedSources(candidates []string, n int) []string
}
