package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bastiangx/wordhunt/internal/utils"
	"github.com/bastiangx/wordhunt/pkg/config"
	"github.com/bastiangx/wordhunt/pkg/filters"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/search"
	"github.com/bastiangx/wordhunt/pkg/session"
)

func TestFilterFlags(t *testing.T) {
	dir := t.TempDir()
	specFile := filepath.Join(dir, "brand.yaml")
	content := "length:\n  min: 5\n  max: 9\npattern:\n  endsWith: ly\nrarity:\n  min: 0.4\n  max: 0.9\n"
	if err := os.WriteFile(specFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		description string
		args        []string
		check       func(t *testing.T, spec filters.Spec)
	}{
		{"no flags leave the filters empty", nil, func(t *testing.T, spec filters.Spec) {
			if spec.Length != nil || spec.Pattern != nil || spec.Rarity != nil {
				t.Errorf("spec = %+v", spec)
			}
		}},
		{"one length bound keeps the default other bound", []string{"--max-length", "7"}, func(t *testing.T, spec filters.Spec) {
			if spec.Length == nil || spec.Length.Min != 3 || spec.Length.Max != 7 {
				t.Errorf("length = %+v", spec.Length)
			}
		}},
		{"pattern flags", []string{"--starts-with", "ka", "--excludes", "z"}, func(t *testing.T, spec filters.Spec) {
			if spec.Pattern == nil || spec.Pattern.StartsWith != "ka" || spec.Pattern.Excludes != "z" {
				t.Errorf("pattern = %+v", spec.Pattern)
			}
		}},
		{"flags override the file", []string{"--filters", specFile, "--min-length", "6", "--rarity", "0.5"}, func(t *testing.T, spec filters.Spec) {
			if spec.Length.Min != 6 || spec.Length.Max != 9 {
				t.Errorf("length = %+v", spec.Length)
			}
			if spec.Pattern.EndsWith != "ly" {
				t.Errorf("pattern = %+v", spec.Pattern)
			}
			if spec.Rarity.Min != 0.5 || spec.Rarity.Max != 0.9 {
				t.Errorf("rarity = %+v", spec.Rarity)
			}
		}},
		{"difficulty", []string{"--difficulty", "easy"}, func(t *testing.T, spec filters.Spec) {
			if spec.Pronunciation == nil || spec.Pronunciation.Difficulty != "easy" {
				t.Errorf("pronunciation = %+v", spec.Pronunciation)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			var ff filterFlags
			cmd := &cobra.Command{Use: "x"}
			ff.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			spec, err := ff.spec(cmd)
			if err != nil {
				t.Fatal(err)
			}
			if got := ff.set(cmd); got != (len(tt.args) > 0) {
				t.Errorf("set() = %v", got)
			}
			tt.check(t, spec)
		})
	}
}

func TestLoadSpecFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"f.json": `{"length": {"min": 4, "max": 6}, "pattern": {"contains": "or"}}`,
		"f.toml": "[length]\nmin = 4\nmax = 6\n\n[pattern]\ncontains = \"or\"\n",
		"f.yml":  "length: {min: 4, max: 6}\npattern: {contains: or}\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			spec, err := loadSpec(path)
			if err != nil {
				t.Fatal(err)
			}
			if spec.Length == nil || spec.Length.Min != 4 || spec.Length.Max != 6 {
				t.Errorf("length = %+v", spec.Length)
			}
			if spec.Pattern == nil || spec.Pattern.Contains != "or" {
				t.Errorf("pattern = %+v", spec.Pattern)
			}
		})
	}

	if _, err := loadSpec(filepath.Join(dir, "f.ini")); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}

func sampleWords(n int) []model.WordResult {
	words := make([]model.WordResult, n)
	for i := range words {
		words[i] = model.WordResult{
			Word:   strings.Repeat("q", i+1) + "uill",
			Source: model.OriginGenerated,
			Scores: model.Scores{Overall: 0.8, Rarity: 0.5},
		}
	}
	return words
}

func TestPrinterFormats(t *testing.T) {
	resp := search.Response{Words: sampleWords(3)}

	t.Run("text truncates to rows", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, config.FormatText, 2).Search(resp); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "quill") || !strings.Contains(out, "qquill") {
			t.Errorf("missing words in:\n%s", out)
		}
		if strings.Contains(out, "qqquill") {
			t.Errorf("third word shown despite rows=2:\n%s", out)
		}
		if !strings.Contains(out, "1 more") {
			t.Errorf("missing truncation note:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, config.FormatJSON, 1).Search(resp); err != nil {
			t.Fatal(err)
		}
		var got search.Response
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if len(got.Words) != 3 {
			t.Errorf("json carried %d words, expected all 3", len(got.Words))
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		stats := session.Stats{SessionID: "session_x", TotalSearches: 2}
		if err := NewPrinter(&buf, config.FormatYAML, 0).Stats(stats); err != nil {
			t.Fatal(err)
		}
		var got map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got["sessionId"] != "session_x" || got["totalSearches"] != 2 {
			t.Errorf("yaml = %v", got)
		}
	})

	t.Run("empty results", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, config.FormatText, 0).Search(search.Response{}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No new words found.") {
			t.Errorf("output:\n%s", buf.String())
		}
	})
}

func TestCrawlProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := newCrawlProgress(&buf, true)
	for i := 1; i <= 3; i++ {
		progress(i, 3, "https://example.com/lists/words.txt")
	}
	progress(1, 2, "file:///tmp/words.txt")
	if buf.Len() == 0 {
		t.Error("progress bar wrote nothing")
	}
	if newCrawlProgress(&buf, false) != nil {
		t.Error("disabled progress should be nil")
	}
	if got := sourceLabelFor("https://example.com/lists/words.txt"); got != "example.com/words.txt" {
		t.Errorf("sourceLabelFor() = %q", got)
	}
}

func TestInputHandler(t *testing.T) {
	var calls [][]string
	validate := func(words []string) []search.WordValidation {
		calls = append(calls, words)
		out := make([]search.WordValidation, len(words))
		for i, w := range words {
			out[i] = search.WordValidation{Word: w}
		}
		return out
	}
	var out, prompt bytes.Buffer
	h := NewInputHandler(validate, NewPrinter(&out, config.FormatText, 0), strings.NewReader("kumquat xqzv\n\n  voltrix \n"), &prompt)
	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || len(calls[0]) != 2 || calls[1][0] != "voltrix" {
		t.Errorf("calls = %v", calls)
	}
	if !strings.Contains(out.String(), "xqzv") {
		t.Errorf("output:\n%s", out.String())
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[session]\nbackend = \"memory\"\n\n[cli]\nprogress = false\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return runCLIWith(t, cfgPath, args...)
}

func runCLIWith(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCommand("test")
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("wordhunt %v: %v", args, err)
	}
	return out.String()
}

func TestCommands(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		var got []search.WordValidation
		if err := json.Unmarshal([]byte(runCLI(t, "validate", "kumquat", "zzzq", "-f", "json")), &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].Word != "kumquat" || got[1].Result.IsValid {
			t.Errorf("validations = %+v", got)
		}
	})

	t.Run("speed search", func(t *testing.T) {
		var got search.Response
		out := runCLI(t, "search", "-n", "10", "--min-length", "4", "--max-length", "7", "-f", "json")
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatal(err)
		}
		if len(got.Words) > 10 {
			t.Errorf("got %d words, expected at most 10", len(got.Words))
		}
		if got.Plan.Mode != model.ModeSpeed {
			t.Errorf("plan mode = %q", got.Plan.Mode)
		}
		for _, w := range got.Words {
			if len(w.Word) < 4 || len(w.Word) > 7 {
				t.Errorf("%q outside length filter", w.Word)
			}
		}
	})

	t.Run("session stats", func(t *testing.T) {
		var got session.Stats
		if err := yaml.Unmarshal([]byte(runCLI(t, "session", "stats", "-f", "yaml")), &got); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(got.SessionID, "session_") || len(got.Strategies) != 5 {
			t.Errorf("stats = %+v", got)
		}
	})

	t.Run("config", func(t *testing.T) {
		out := runCLI(t, "config")
		if !strings.Contains(out, `backend = "memory"`) {
			t.Errorf("config output:\n%s", out)
		}
	})

	t.Run("config paths", func(t *testing.T) {
		var got utils.Runtime
		if err := json.Unmarshal([]byte(runCLI(t, "config", "--paths", "-f", "json")), &got); err != nil {
			t.Fatal(err)
		}
		if got.ConfigDir == "" || got.ExecutableDir == "" || got.OS == "" {
			t.Errorf("runtime = %+v", got)
		}
	})

	t.Run("empty session history", func(t *testing.T) {
		if out := runCLI(t, "session", "history"); !strings.Contains(out, "No searches recorded yet.") {
			t.Errorf("history output:\n%s", out)
		}
	})
}

func TestSessionHistoryAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := "[session]\nbackend = \"file\"\npath = \"" + filepath.ToSlash(filepath.Join(dir, "sessions")) + "\"\n\n[cli]\nprogress = false\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	runCLIWith(t, cfgPath, "search", "-n", "10", "-f", "json")
	runCLIWith(t, cfgPath, "search", "-n", "10", "-f", "json")

	var got []session.SearchHistory
	if err := json.Unmarshal([]byte(runCLIWith(t, cfgPath, "session", "history", "-f", "json")), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("history has %d entries, want 2", len(got))
	}
	for _, h := range got {
		if h.Mode != model.ModeSpeed {
			t.Errorf("mode = %q", h.Mode)
		}
	}

	runCLIWith(t, cfgPath, "session", "reset")
	if out := runCLIWith(t, cfgPath, "session", "history"); !strings.Contains(out, "No searches recorded yet.") {
		t.Errorf("history after reset:\n%s", out)
	}
}

func TestPrinterHistory(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	searches := []session.SearchHistory{
		{Timestamp: base, Mode: model.ModeSpeed, ResultsCount: 12, Sources: []string{"internal-generation"}},
		{Timestamp: base.Add(time.Minute), Mode: model.ModeHyper, ResultsCount: 3, Sources: []string{"mem://a", "mem://b"}},
		{Timestamp: base.Add(2 * time.Minute), Mode: model.ModeSpeed, ResultsCount: 7},
	}

	tests := []struct {
		description string
		searches    []session.SearchHistory
		rows        int
		contains    []string
		missing     []string
	}{
		{"empty", nil, 0, []string{"No searches recorded yet."}, nil},
		{"all rows", searches, 0, []string{"2025-06-01 12:00:00", "mem://a, mem://b", "hyper"}, nil},
		{"rows keeps the latest", searches, 2, []string{"12:01:00", "12:02:00"}, []string{"12:00:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewPrinter(&buf, config.FormatText, tt.rows).History(tt.searches); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("missing %q in:\n%s", s, out)
				}
			}
			for _, s := range tt.missing {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q in:\n%s", s, out)
				}
			}
		})
	}

	t.Run("json carries every search", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, config.FormatJSON, 1).History(searches); err != nil {
			t.Fatal(err)
		}
		var got []session.SearchHistory
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 || got[1].ResultsCount != 3 {
			t.Errorf("json = %+v", got)
		}
	})
}

func TestPrinterRuntime(t *testing.T) {
	r := utils.Runtime{
		ExecutableDir: "/opt/wordhunt",
		WorkingDir:    "/work",
		HomeDir:       "/home/ada",
		ConfigDir:     "/home/ada/.config/wordhunt",
		OS:            "linux",
		Arch:          "amd64",
	}
	var buf bytes.Buffer
	if err := NewPrinter(&buf, config.FormatText, 0).Runtime(r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"/opt/wordhunt", "/home/ada/.config/wordhunt", "linux/amd64"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in:\n%s", s, out)
		}
	}
	if strings.Contains(out, "dictionary") {
		t.Errorf("empty dictionary dir was printed:\n%s", out)
	}

	buf.Reset()
	if err := NewPrinter(&buf, config.FormatYAML, 0).Runtime(r); err != nil {
		t.Fatal(err)
	}
	var got utils.Runtime
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != r {
		t.Errorf("yaml round trip = %+v", got)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		description string
		args        []string
		expected    string
	}{
		{"bad max results", []string{"search", "-n", "5"}, "maxResults: must be between 10 and 10000"},
		{"bad mode", []string{"search", "-m", "turbo"}, "mode:"},
		{"validate without words", []string{"validate"}, "no words given"},
		{"bad format", []string{"validate", "x", "-f", "xml"}, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			root := NewRootCommand("test")
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			cfgPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(cfgPath, []byte("[session]\nbackend = \"memory\"\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			root.SetArgs(append([]string{"--config", cfgPath}, tt.args...))
			err := root.ExecuteContext(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("error = %v, expected it to contain %q", err, tt.expected)
			}
		})
	}
}
