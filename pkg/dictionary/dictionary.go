/*
Package dictionary holds the backing English word list used for known-word lookups and
for sampling in speed mode.

Words live in a patricia trie keyed by the lowercase word, with a per-length index for
bounded random sampling. An embedded list is always available; larger lists can be added
from plain text files or from chunked binary dictionaries (dict_NNNN.bin).
*/
package dictionary

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

//go:embed data/words.txt
var embeddedWords string

// Dictionary is a concurrency-safe word set with prefix and length lookups.
type Dictionary struct {
	mu    sync.RWMutex
	trie  *patricia.Trie
	byLen map[int][]string
	size  int
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		trie:  patricia.NewTrie(),
		byLen: make(map[int][]string),
	}
}

// Embedded returns a dictionary preloaded with the built-in word list.
func Embedded() *Dictionary {
	d := New()
	n, err := d.LoadText(strings.NewReader(embeddedWords))
	if err != nil {
		// the embedded list is plain text read from memory
		panic(fmt.Sprintf("dictionary: embedded word list: %v", err))
	}
	log.Debugf("Loaded %d embedded words", n)
	return d
}

// Add inserts word with the given frequency score. Words that are empty or contain
// anything other than ASCII letters are ignored. It reports whether the word was new.
func (d *Dictionary) Add(word string, score int) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	if !isWord(w) {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.trie.Insert(patricia.Prefix(w), score) {
		return false
	}
	d.byLen[len(w)] = append(d.byLen[len(w)], w)
	d.size++
	return true
}

// LoadText reads one word per line. Lines starting with '#' are comments; anything after
// the first whitespace on a line is ignored. The line number is used as a rank.
func (d *Dictionary) LoadText(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	added, line := 0, 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			text = fields[0]
		}
		if d.Add(text, rankScore(line)) {
			added++
		}
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("failed to read word list: %w", err)
	}
	return added, nil
}

// LoadFile adds the words of a text list or a single chunk file, detected by name.
func (d *Dictionary) LoadFile(path string) (int, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return 0, err
	}

	switch format {
	case FormatChunk:
		return readChunk(path, func(word string, score int) bool {
			return d.Add(word, score)
		})
	case FormatText:
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("failed to open word list %s: %w", path, err)
		}
		defer f.Close()
		return d.LoadText(f)
	}
	return 0, fmt.Errorf("unsupported dictionary format for %s", path)
}

// Contains reports whether word (case-insensitive) is a known word.
func (d *Dictionary) Contains(word string) bool {
	w := strings.ToLower(word)
	if w == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.trie.Get(patricia.Prefix(w)) != nil
}

// Score returns the frequency score of word, 0 when unknown.
func (d *Dictionary) Score(word string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if item := d.trie.Get(patricia.Prefix(strings.ToLower(word))); item != nil {
		if score, ok := item.(int); ok {
			return score
		}
	}
	return 0
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

// WithPrefix returns the known words starting with prefix, in trie order.
func (d *Dictionary) WithPrefix(prefix string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var words []string
	_ = d.trie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		words = append(words, string(p))
		return nil
	})
	return words
}

// RandomWords draws up to n distinct words whose length is in [minLen,maxLen]. A non-empty
// prefix restricts the draw to words starting with it. The draw only depends on rng and
// the dictionary contents.
func (d *Dictionary) RandomWords(rng *rand.Rand, n, minLen, maxLen int, prefix string) []string {
	if n <= 0 || minLen > maxLen {
		return nil
	}

	var pool []string
	if prefix != "" {
		for _, w := range d.WithPrefix(prefix) {
			if len(w) >= minLen && len(w) <= maxLen {
				pool = append(pool, w)
			}
		}
	} else {
		d.mu.RLock()
		lengths := make([]int, 0, len(d.byLen))
		for l := range d.byLen {
			if l >= minLen && l <= maxLen {
				lengths = append(lengths, l)
			}
		}
		sort.Ints(lengths)
		for _, l := range lengths {
			pool = append(pool, d.byLen[l]...)
		}
		d.mu.RUnlock()
	}

	if n > len(pool) {
		n = len(pool)
	}
	// partial Fisher-Yates over the private copy
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func isWord(w string) bool {
	if w == "" {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// rankScore converts a 1-based rank into a score where rank 1 is the highest.
func rankScore(rank int) int {
	if rank > 65535 {
		return 1
	}
	return 65535 - rank + 1
}
