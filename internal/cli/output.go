package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/bastiangx/wordhunt/internal/utils"
	"github.com/bastiangx/wordhunt/pkg/analyzer"
	"github.com/bastiangx/wordhunt/pkg/config"
	"github.com/bastiangx/wordhunt/pkg/crawler"
	"github.com/bastiangx/wordhunt/pkg/model"
	"github.com/bastiangx/wordhunt/pkg/search"
	"github.com/bastiangx/wordhunt/pkg/session"
)

var (
	textColor   = lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}
	accentColor = lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}
	warnColor   = lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(textColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(textColor).Padding(0, 1)
	wordStyle   = cellStyle.Foreground(accentColor)
	badStyle    = cellStyle.Foreground(warnColor)
)

// Printer writes command results as styled text, JSON or YAML.
type Printer struct {
	w      io.Writer
	format string
	rows   int
}

// NewPrinter returns a Printer. rows caps text tables; 0 shows everything.
func NewPrinter(w io.Writer, format string, rows int) *Printer {
	return &Printer{w: w, format: format, rows: rows}
}

// print encodes v for the machine formats and calls text otherwise.
func (p *Printer) print(v any, text func() string) error {
	switch p.format {
	case config.FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := fmt.Fprintln(p.w, text())
	return err
}

// Search prints one mode's results with a plan summary.
func (p *Printer) Search(resp search.Response) error {
	return p.print(resp, func() string {
		parts := []string{planSummary(resp.Plan)}
		if resp.Crawl != nil {
			parts = append(parts, crawlSummary(*resp.Crawl))
		}
		parts = append(parts, p.wordTable(resp.Words))
		return strings.Join(parts, "\n\n")
	})
}

// Both prints the merged list and per-mode counts.
func (p *Printer) Both(resp search.BothResponse) error {
	return p.print(resp, func() string {
		head := titleStyle.Render("Combined results") + " " +
			mutedStyle.Render(fmt.Sprintf("(speed %d, hyper %d, combined %d)", len(resp.Speed), len(resp.Hyper), len(resp.Combined)))
		parts := []string{head}
		if resp.Crawl != nil {
			parts = append(parts, crawlSummary(*resp.Crawl))
		}
		parts = append(parts, p.wordTable(resp.Combined))
		return strings.Join(parts, "\n\n")
	})
}

// Validations prints one row per word.
func (p *Printer) Validations(vs []search.WordValidation) error {
	return p.print(vs, func() string {
		t := newTable("Word", "Valid", "Confidence", "Rarity", "Market", "Issues")
		for _, v := range vs {
			t.Row(v.Word, yesNo(v.Result.IsValid), score(v.Result.Confidence),
				score(v.Result.RarityScore), score(v.Result.MarketPotential), strings.Join(v.Result.Issues, "; "))
		}
		t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(vs) && !vs[row].Result.IsValid {
				return badStyle
			}
			return cellStyle
		})
		return t.Render()
	})
}

// Stats prints the session summary and strategy table.
func (p *Printer) Stats(s session.Stats) error {
	return p.print(s, func() string {
		head := titleStyle.Render("Session "+s.SessionID) + "\n" + mutedStyle.Render(fmt.Sprintf(
			"age %s, %d searches, %d unique words, %d sources", s.Duration.Round(time.Second), s.TotalSearches, s.UniqueWords, s.SourcesUsed))
		t := newTable("Strategy", "Priority", "Success", "Last used")
		for _, st := range s.Strategies {
			last := "never"
			if !st.LastUsed.IsZero() {
				last = st.LastUsed.Format("2006-01-02 15:04:05")
			}
			t.Row(st.Name, strconv.Itoa(st.Priority), score(st.SuccessRate), last)
		}
		return head + "\n\n" + t.Render()
	})
}

// History prints one row per recorded search, oldest first.
func (p *Printer) History(searches []session.SearchHistory) error {
	return p.print(searches, func() string {
		if len(searches) == 0 {
			return mutedStyle.Render("No searches recorded yet.")
		}
		shown := searches
		if p.rows > 0 && len(shown) > p.rows {
			shown = shown[len(shown)-p.rows:]
		}
		t := newTable("When", "Mode", "Results", "Sources")
		for _, h := range shown {
			t.Row(h.Timestamp.Format("2006-01-02 15:04:05"), string(h.Mode),
				strconv.Itoa(h.ResultsCount), strings.Join(h.Sources, ", "))
		}
		return t.Render()
	})
}

// Runtime prints the resolved locations as a two column table.
func (p *Printer) Runtime(r utils.Runtime) error {
	return p.print(r, func() string {
		t := newTable("Location", "Path")
		rows := [][2]string{
			{"executable", r.ExecutableDir},
			{"working dir", r.WorkingDir},
			{"home", r.HomeDir},
			{"config", r.ConfigDir},
			{"dictionary", r.DictDir},
			{"platform", r.OS + "/" + r.Arch},
		}
		for _, row := range rows {
			if row[1] != "" {
				t.Row(row[0], row[1])
			}
		}
		return t.Render()
	})
}

// Value prints anything with a one line text form.
func (p *Printer) Value(v any, text string) error {
	return p.print(v, func() string { return text })
}

func (p *Printer) wordTable(words []model.WordResult) string {
	if len(words) == 0 {
		return mutedStyle.Render("No new words found.")
	}
	shown := words
	if p.rows > 0 && len(shown) > p.rows {
		shown = shown[:p.rows]
	}

	t := newTable("#", "Word", "Overall", "Rarity", "Market", "Confidence", "Patterns", "Sources")
	for i, w := range shown {
		t.Row(strconv.Itoa(i+1), w.Word, score(w.Scores.Overall), score(w.Scores.Rarity),
			score(w.Scores.MarketPotential), score(w.Scores.Confidence),
			strings.Join(w.Metadata.Patterns, ","), sourceLabel(w))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 1:
			return wordStyle
		}
		return cellStyle
	})

	out := t.Render()
	if len(shown) < len(words) {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("... %d more (use --rows 0 or --format json)", len(words)-len(shown)))
	}
	return out
}

func planSummary(plan analyzer.Plan) string {
	a := plan.Analysis
	line := fmt.Sprintf("%s mode, %s filters (score %d), ~%d results, %s",
		plan.Mode, a.Complexity, a.Score, a.EstimatedResults, a.ProcessingTime)
	out := titleStyle.Render("Plan") + " " + mutedStyle.Render(line)
	for _, r := range a.Recommendations {
		out += "\n  " + mutedStyle.Render("• "+r)
	}
	return out
}

func crawlSummary(s crawler.Stats) string {
	return titleStyle.Render("Crawl") + " " + mutedStyle.Render(fmt.Sprintf(
		"%d lines, %d valid words from %d sources in %s", s.TotalCrawled, s.ValidWords, len(s.Sources), s.Duration.Round(time.Millisecond)))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)
}

func sourceLabel(w model.WordResult) string {
	if len(w.Metadata.Sources) <= 1 {
		return string(w.Source)
	}
	return fmt.Sprintf("%s x%d", w.Source, len(w.Metadata.Sources))
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
