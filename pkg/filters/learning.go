package filters

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// An ordinary word (vowels, consonants, no long repeat) scores 0.8 with no pattern
// match, so the threshold tops out below that and feedback alone never rejects it.
const (
	defaultThreshold = 0.7
	minThreshold     = 0.5
	maxThreshold     = 0.75
	thresholdStep    = 0.02
)

// Learning accumulates preferred and blacklisted words from user feedback. Entries match
// whole words only. Scoring never reads it directly; callers take a Snapshot first.
type Learning struct {
	mu        sync.Mutex
	patterns  map[string]struct{}
	blacklist map[string]struct{}
	threshold float64
	samples   int
}

// LearningSnapshot is an immutable view of a Learning state.
type LearningSnapshot struct {
	Patterns  []string `json:"patterns" msgpack:"patterns" yaml:"patterns"`
	Blacklist []string `json:"blacklist" msgpack:"blacklist" yaml:"blacklist"`
	Threshold float64  `json:"threshold" msgpack:"threshold" yaml:"threshold"`
	Samples   int      `json:"samples" msgpack:"samples" yaml:"samples"`
}

func NewLearning() *Learning {
	return &Learning{
		patterns:  make(map[string]struct{}),
		blacklist: make(map[string]struct{}),
		threshold: defaultThreshold,
	}
}

// AddPattern registers a preferred word.
func (l *Learning) AddPattern(p string) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return
	}
	l.mu.Lock()
	l.patterns[p] = struct{}{}
	l.mu.Unlock()
}

// AddBlacklist registers a word that rejects any input containing it as a whole word.
func (l *Learning) AddBlacklist(p string) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return
	}
	l.mu.Lock()
	l.blacklist[p] = struct{}{}
	l.mu.Unlock()
}

// Feedback learns from a selected (positive) or rejected word. Positive feedback keeps
// each word of three letters or more as a pattern and lowers the acceptance threshold;
// negative feedback blacklists the word and raises the threshold.
func (l *Learning) Feedback(word string, positive bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) < 3 || len(w) > 15 {
		return
	}
	if positive {
		for _, t := range tokens(w) {
			if len(t) >= 3 {
				l.AddPattern(t)
			}
		}
	} else {
		l.AddBlacklist(w)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples++
	if positive {
		l.threshold = max(minThreshold, l.threshold-thresholdStep)
	} else {
		l.threshold = min(maxThreshold, l.threshold+thresholdStep)
	}
}

// Snapshot copies the current state. Patterns and blacklist are sorted.
func (l *Learning) Snapshot() LearningSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LearningSnapshot{
		Patterns:  sortedKeys(l.patterns),
		Blacklist: sortedKeys(l.blacklist),
		Threshold: l.threshold,
		Samples:   l.samples,
	}
}

// Score rates word against the snapshot. A blacklisted word rejects outright.
func (s LearningSnapshot) Score(word string) (confidence float64, passed bool) {
	w := strings.ToLower(word)
	words := make(map[string]struct{})
	for _, t := range tokens(w) {
		words[t] = struct{}{}
	}
	for _, b := range s.Blacklist {
		if containsWord(words, b) {
			return 0, false
		}
	}

	confidence = 0.5
	matches := 0
	for _, p := range s.Patterns {
		if containsWord(words, p) {
			matches++
			confidence += 0.1
		}
	}
	if matches > 2 {
		confidence += 0.1
	}
	if strings.ContainsAny(w, "aeiou") {
		confidence += 0.1
	}
	if strings.ContainsAny(w, "bcdfghjklmnpqrstvwxyz") {
		confidence += 0.1
	}
	if !hasLongRepeat(w) {
		confidence += 0.1
	}
	confidence = min(1, math.Round(confidence*100)/100)
	return confidence, confidence >= s.Threshold
}

// tokens splits s into runs of letters and digits.
func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// containsWord reports whether every token of entry is a word of the input, so
// multi-word entries match too.
func containsWord(words map[string]struct{}, entry string) bool {
	parts := tokens(entry)
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if _, ok := words[p]; !ok {
			return false
		}
	}
	return true
}

// hasLongRepeat reports a character repeated four or more times in a row.
func hasLongRepeat(s string) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			run++
			if run >= 4 {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
