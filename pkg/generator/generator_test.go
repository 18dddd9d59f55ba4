package generator

import (
	"math/rand"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestBuildWordTruncatesToMax(t *testing.T) {
	g := New(rand.New(rand.NewSource(3)))
	for i := 0; i < 100; i++ {
		if w := g.BuildWord("CCVCCVCVC", 2, 5); len(w) != 5 {
			t.Fatalf("BuildWord = %q, want exactly 5 letters", w)
		}
	}
}

func TestBuildWordPadsToMin(t *testing.T) {
	g := New(rand.New(rand.NewSource(4)))
	w := g.BuildWord("CV", 7, 12)
	if len(w) != 7 {
		t.Fatalf("BuildWord = %q, want 7 letters", w)
	}
	for _, c := range w {
		if !strings.ContainsRune(Consonants+Vowels, c) {
			t.Errorf("unexpected letter %q in %q", c, w)
		}
	}
}

func TestBuildWordFollowsTemplate(t *testing.T) {
	g := New(rand.New(rand.NewSource(5)))
	w := g.BuildWord("CVCV", 1, 10)
	for i, c := range "CVCV" {
		alphabet := Vowels
		if c == 'C' {
			alphabet = Consonants
		}
		if strings.IndexByte(alphabet, w[i]) < 0 {
			t.Errorf("letter %d of %q does not match template symbol %c", i, w, c)
		}
	}
}

func TestSelectTemplate(t *testing.T) {
	g := New(rand.New(rand.NewSource(6)))
	known := map[string]bool{}
	for _, tpl := range DefaultTemplates {
		known[tpl.Pattern] = true
	}
	for i := 0; i < 500; i++ {
		if p := g.SelectTemplate(0); !known[p] {
			t.Fatalf("unknown template %q", p)
		}
	}
	// bias beyond the table falls back to CVC
	if p := g.SelectTemplate(10); p != "CVC" {
		t.Errorf("SelectTemplate(10) = %q, want CVC", p)
	}
}

func TestLengthBoundsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		minLen := rapid.IntRange(1, 10).Draw(rt, "min")
		maxLen := rapid.IntRange(minLen, 14).Draw(rt, "max")
		tpl := rapid.StringMatching(`[CV]{1,12}`).Draw(rt, "template")

		g := New(rand.New(rand.NewSource(seed)))
		w := g.BuildWord(tpl, minLen, maxLen)
		if len(w) < minLen || len(w) > maxLen {
			rt.Fatalf("BuildWord(%q,%d,%d) = %q", tpl, minLen, maxLen, w)
		}
		for _, word := range g.Generate(20, minLen, maxLen, g.Float64()) {
			if len(word) < minLen || len(word) > maxLen {
				rt.Fatalf("Generate produced %q outside [%d,%d]", word, minLen, maxLen)
			}
		}
	})
}
