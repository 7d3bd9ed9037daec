package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/hyperifyio/deepsearch/internal/report"
)

const (
	summaryTopics  = 5
	summaryPhrases = 5
	ruleWidth      = 80
)

// WriteSummary prints the plain-text run summary: insights first, then one
// block per result.
func WriteSummary(w io.Writer, r report.Report) error {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(&b, "\n%s\nQuery: %s\n%s\n\n", rule, r.Query, rule)

	ins := r.Insights
	b.WriteString("INSIGHTS:\n")
	fmt.Fprintf(&b, "  Overall Credibility: %s\n", formatFloat(ins.OverallCredibility))
	fmt.Fprintf(&b, "  Key Topics: %s\n", strings.Join(topicNames(ins.KeyTopics, summaryTopics), ", "))
	fmt.Fprintf(&b, "  Top Sources: %d\n\n", len(ins.TopSources))

	for i, e := range r.Results {
		title := e.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, title)
		fmt.Fprintf(&b, "    URL: %s\n", e.URL)
		if a := e.Analysis; a != nil {
			fmt.Fprintf(&b, "    Credibility: %s | Words: %d\n", formatFloat(a.CredibilityScore), a.WordCount)
			if s := a.Sentiment; s != nil {
				fmt.Fprintf(&b, "    Sentiment: %s (polarity: %s)\n", s.Label, formatFloat(s.Polarity))
			}
			if phrases := firstPhrases(a, summaryPhrases); len(phrases) > 0 {
				fmt.Fprintf(&b, "    Key Phrases: %s\n", strings.Join(phrases, ", "))
			}
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryMarkdown renders the same summary as Markdown for terminal styling.
func SummaryMarkdown(r report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Query)
	ins := r.Insights
	b.WriteString("## Insights\n\n")
	fmt.Fprintf(&b, "- **Overall credibility:** %s\n", formatFloat(ins.OverallCredibility))
	fmt.Fprintf(&b, "- **Key topics:** %s\n", strings.Join(topicNames(ins.KeyTopics, summaryTopics), ", "))
	fmt.Fprintf(&b, "- **Top sources:** %d\n\n", len(ins.TopSources))
	if len(r.Results) == 0 {
		b.WriteString("_No results._\n")
		return b.String()
	}
	b.WriteString("## Results\n\n")
	for i, e := range r.Results {
		title := e.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&b, "%d. **%s**  \n   %s\n", i+1, title, e.URL)
		if a := e.Analysis; a != nil {
			fmt.Fprintf(&b, "   - credibility %s, %d words\n", formatFloat(a.CredibilityScore), a.WordCount)
			if s := a.Sentiment; s != nil {
				fmt.Fprintf(&b, "   - sentiment %s (polarity %s)\n", s.Label, formatFloat(s.Polarity))
			}
			if phrases := firstPhrases(a, summaryPhrases); len(phrases) > 0 {
				fmt.Fprintf(&b, "   - key phrases: %s\n", strings.Join(phrases, ", "))
			}
		}
	}
	return b.String()
}

// printSummary styles the summary with glamour when out is a colour terminal
// and falls back to plain text otherwise or when rendering fails.
func printSummary(out io.Writer, r report.Report, noColor bool) error {
	f, ok := out.(*os.File)
	if noColor || !ok || !term.IsTerminal(int(f.Fd())) {
		return WriteSummary(out, r)
	}
	width := ruleWidth
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
		width = w
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return WriteSummary(out, r)
	}
	styled, err := renderer.Render(SummaryMarkdown(r))
	if err != nil {
		return WriteSummary(out, r)
	}
	_, err = io.WriteString(out, styled)
	return err
}

func topicNames(t report.Topics, n int) []string {
	names := make([]string, 0, n)
	for _, p := range t {
		if len(names) == n {
			break
		}
		names = append(names, p.Phrase)
	}
	return names
}

func firstPhrases(a *report.PageAnalysis, n int) []string {
	var out []string
	for _, p := range a.Keyphrases {
		if len(out) == n {
			break
		}
		out = append(out, p.Phrase)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
