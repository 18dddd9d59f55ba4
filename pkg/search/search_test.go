package search

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/bastiangx/wordhunt/internal/logger"
	"github.com/bastiangx/wordhunt/pkg/crawler"
	"github.com/bastiangx/wordhunt/pkg/dictionary"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/session"
	"github.com/bastiangx/wordhunt/pkg/speed"
	"github.com/bastiangx/wordhunt/pkg/validator"
)

var embedded = dictionary.Embedded()

type staticFetcher map[string]string

func (s staticFetcher) Fetch(ctx context.Context, src crawler.Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, ok := s[src.URL]
	if !ok {
		return "", &crawler.FetchError{URL: src.URL, Err: errors.New("not found")}
	}
	return body, nil
}

func newTestOrchestrator(t *testing.T, timeout time.Duration) (*Orchestrator, *session.Store) {
	t.Helper()
	store := session.New(session.Options{Logger: logger.Discard()})
	val := validator.New(embedded)
	learning := filters.NewLearning()
	o := New(Options{
		Speed: speed.New(speed.Options{
			Dictionary: embedded,
			Validator:  val,
			Session:    store,
			Rand:       rand.New(rand.NewSource(42)),
			Logger:     logger.Discard(),
		}),
		Crawler: crawler.New(crawler.Options{
			Fetcher:   staticFetcher{"mem://words": "quixotic\nkumquat\nvoltrix\ncat\n"},
			Validator: val,
			Session:   store,
			Sources:   []crawler.Source{{URL: "mem://words", Type: crawler.TypeWordlist, Priority: 1}},
			Learning:  learning,
			Logger:    logger.Discard(),
		}),
		Session:   store,
		Validator: val,
		Learning:  learning,
		Timeout:   timeout,
		Logger:    logger.Discard(),
	})
	return o, store
}

func TestSearchRejectsBadRequests(t *testing.T) {
	o, _ := newTestOrchestrator(t, 0)

	testCases := []struct {
		description string
		req         Request
		want        []string
	}{
		{
			description: "bad shape",
			req:         Request{Mode: "turbo", MaxResults: 5, Depth: 9},
			want:        []string{"mode:", "maxResults:", "depth:"},
		},
		{
			description: "inverted length",
			req:         Request{Mode: model.ModeSpeed, MaxResults: 50, Filters: filters.Spec{Length: &filters.Length{Min: 5, Max: 3}}},
			want:        []string{"min greater than max"},
		},
		{
			description: "advanced thresholds out of range",
			req: Request{Mode: model.ModeHyper, MaxResults: 50, Filters: filters.Spec{
				Rarity: &filters.Range{Min: 1.5, Max: 2},
			}},
			want: []string{"rarity"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := o.Search(context.Background(), tc.req)
			var ve *filters.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *filters.ValidationError", err)
			}
			c := Classify(err)
			if c.Category != CategoryValidation || c.Status != 400 {
				t.Errorf("classified as %+v", c)
			}
			for _, w := range tc.want {
				if !strings.Contains(c.Message, w) {
					t.Errorf("message %q missing %q", c.Message, w)
				}
			}
		})
	}
}

func TestSearchSpeedEndToEnd(t *testing.T) {
	o, store := newTestOrchestrator(t, 0)
	req := Request{Mode: model.ModeSpeed, MaxResults: 50, Filters: filters.Spec{Length: &filters.Length{Min: 4, Max: 6}}}

	first, err := o.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Words) > 50 {
		t.Fatalf("%d results, want at most 50", len(first.Words))
	}
	for _, w := range first.Words {
		if len(w.Word) < 4 || len(w.Word) > 6 || !w.Metadata.Validation.IsValid {
			t.Errorf("bad result %+v", w)
		}
	}
	if first.Plan.Mode != model.ModeSpeed || len(first.Plan.Steps) == 0 {
		t.Errorf("plan = %+v", first.Plan)
	}
	if first.Crawl != nil {
		t.Error("speed search carries crawl stats")
	}

	second, err := o.Search(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	earlier := make(map[string]bool)
	for _, w := range first.Words {
		earlier[w.Word] = true
	}
	for _, w := range second.Words {
		if earlier[w.Word] {
			t.Errorf("%q repeated across searches", w.Word)
		}
	}
	if got := o.Stats().TotalSearches; got != 2 {
		t.Errorf("session searches = %d, want 2", got)
	}

	o.Reset()
	if store.Stats().UniqueWords != 0 {
		t.Error("reset kept returned words")
	}
}

func TestSearchHyper(t *testing.T) {
	o, _ := newTestOrchestrator(t, 0)

	resp, err := o.Search(context.Background(), Request{Mode: model.ModeHyper, MaxResults: 10, Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Crawl == nil || len(resp.Crawl.Sources) != 1 {
		t.Fatalf("crawl stats = %+v", resp.Crawl)
	}
	words := model.Words(resp.Words)
	for _, w := range words {
		if w == "cat" {
			t.Error("common word survived hyper filters")
		}
	}
	if len(words) != 3 {
		t.Errorf("words = %v, want quixotic, kumquat and voltrix", words)
	}
}

func TestSearchBothSharesHistory(t *testing.T) {
	o, _ := newTestOrchestrator(t, 0)

	resp, err := o.SearchBoth(context.Background(), Request{MaxResults: 10, Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hyper) == 0 {
		t.Fatal("hyper side returned nothing")
	}
	if len(resp.Combined) < len(resp.Hyper) || len(resp.Combined) < len(resp.Speed) {
		t.Errorf("combined %d shorter than a side (speed %d, hyper %d)", len(resp.Combined), len(resp.Speed), len(resp.Hyper))
	}
	for i := 1; i < len(resp.Combined); i++ {
		if resp.Combined[i-1].Scores.Overall < resp.Combined[i].Scores.Overall {
			t.Fatalf("combined not sorted at %d", i)
		}
	}
}

func TestSearchTimeout(t *testing.T) {
	o, _ := newTestOrchestrator(t, time.Nanosecond)

	_, err := o.Search(context.Background(), Request{Mode: model.ModeSpeed, MaxResults: 20})
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TimeoutError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("timeout does not unwrap to context.DeadlineExceeded")
	}
	if c := Classify(err); c.Category != CategoryTimeout || c.Status != 408 {
		t.Errorf("classified as %+v", c)
	}
}

func TestClassifyUnexpected(t *testing.T) {
	err := &UnexpectedError{Err: errors.New("db password is hunter2")}
	c := Classify(err)
	if c.Category != CategoryUnexpected || c.Status != 500 {
		t.Errorf("classified as %+v", c)
	}
	if strings.Contains(c.Message, "hunter2") || strings.Contains(err.Error(), "hunter2") {
		t.Error("unexpected error leaks its cause")
	}
	if Classify(nil).Status != 200 {
		t.Error("nil error not classified as success")
	}
}

func wr(word string, overall, rarity float64, sources ...string) model.WordResult {
	return model.WordResult{
		Word:     word,
		Scores:   model.Scores{Overall: overall, Rarity: rarity},
		Metadata: model.Metadata{Sources: sources},
	}
}

func TestMerge(t *testing.T) {
	speedWords := []model.WordResult{
		wr("alpha", 0.9, 0.2, "internal-generation"),
		wr("bravo", 0.4, 0.7, "internal-generation"),
	}
	hyperWords := []model.WordResult{
		wr("bravo", 0.8, 0.5, "mem://a", "internal-generation"),
		wr("charlie", 0.6, 0.6, "mem://a"),
	}

	got := Merge(speedWords, hyperWords)
	if ws := model.Words(got); len(ws) != 3 || ws[0] != "alpha" || ws[1] != "bravo" || ws[2] != "charlie" {
		t.Fatalf("merged order = %v", ws)
	}
	b := got[1]
	if b.Scores.Overall != 0.8 || b.Scores.Rarity != 0.7 {
		t.Errorf("bravo scores = %+v, want max of both", b.Scores)
	}
	if len(b.Metadata.Sources) != 2 || b.Metadata.Sources[0] != "internal-generation" || b.Metadata.Sources[1] != "mem://a" {
		t.Errorf("bravo sources = %v", b.Metadata.Sources)
	}
	if len(speedWords[1].Metadata.Sources) != 1 {
		t.Error("merge mutated its input")
	}
}

// TestMergeTakesMax checks that a word present in both lists carries the larger overall score.
func TestMergeTakesMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{3,6}`), func(s string) string { return s }).Draw(rt, "words")
		speedWords := make([]model.WordResult, 0, len(words))
		hyperWords := make([]model.WordResult, 0, len(words))
		want := make(map[string]float64)
		for _, w := range words {
			s := rapid.Float64Range(0, 1).Draw(rt, "speed")
			h := rapid.Float64Range(0, 1).Draw(rt, "hyper")
			inSpeed := rapid.Bool().Draw(rt, "inSpeed")
			inHyper := rapid.Bool().Draw(rt, "inHyper")
			switch {
			case inSpeed && inHyper:
				want[w] = max(s, h)
			case inSpeed:
				want[w] = s
			case inHyper:
				want[w] = h
			}
			if inSpeed {
				speedWords = append(speedWords, wr(w, s, 0))
			}
			if inHyper {
				hyperWords = append(hyperWords, wr(w, h, 0))
			}
		}

		got := Merge(speedWords, hyperWords)
		if len(got) != len(want) {
			rt.Fatalf("merged %d words, want %d", len(got), len(want))
		}
		for i, r := range got {
			if r.Scores.Overall != want[r.Word] {
				rt.Fatalf("%s overall = %v, want %v", r.Word, r.Scores.Overall, want[r.Word])
			}
			if i > 0 && got[i-1].Scores.Overall < r.Scores.Overall {
				rt.Fatalf("not sorted at %d", i)
			}
		}
	})
}

func TestValidateWords(t *testing.T) {
	o, _ := newTestOrchestrator(t, 0)
	got := o.Validate([]string{"quixotic", "ab3d"})
	if len(got) != 2 || got[0].Word != "quixotic" || !got[0].Result.IsValid || got[1].Result.IsValid {
		t.Errorf("Validate = %+v", got)
	}
}

func TestFeedback(t *testing.T) {
	o, store := newTestOrchestrator(t, 0)
	spec := filters.Spec{Length: &filters.Length{Min: 4, Max: 8}}

	snap := o.Feedback(Feedback{Word: "voltrix", Positive: false, Filters: &spec})
	if snap.Samples != 1 || len(snap.Blacklist) != 1 || snap.Blacklist[0] != "voltrix" {
		t.Errorf("snapshot = %+v", snap)
	}
	if store.Stats().TotalSearches != 0 {
		t.Error("feedback recorded a search")
	}

	// the blacklist reaches the crawler through the shared learning state
	resp, err := o.Search(context.Background(), Request{Mode: model.ModeHyper, MaxResults: 10, Depth: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range resp.Words {
		if w.Word == "voltrix" {
			t.Error("blacklisted word returned")
		}
	}
}
