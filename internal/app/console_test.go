package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hyperifyio/deepsearch/internal/keyphrase"
	"github.com/hyperifyio/deepsearch/internal/nlp"
	"github.com/hyperifyio/deepsearch/internal/report"
)

func sampleReport() report.Report {
	return report.Report{
		Query:     "golang",
		Timestamp: "2024-01-01T00:00:00Z",
		Results: []report.ResultEntry{
			{
				Title: "Go", URL: "https://go.dev", Fetched: true, Status: 200,
				Analysis: &report.PageAnalysis{
					WordCount:        120,
					CredibilityScore: 0.8,
					Sentiment:        &nlp.Sentiment{Label: "positive", Polarity: 0.25, Subjectivity: 0.5},
					Keyphrases: []keyphrase.Phrase{
						{Phrase: "golang", Count: 4}, {Phrase: "compiler", Count: 3}, {Phrase: "types", Count: 2},
						{Phrase: "generics", Count: 2}, {Phrase: "modules", Count: 1}, {Phrase: "tooling", Count: 1},
					},
				},
			},
			{URL: "https://example.com/blocked"},
		},
		Insights: report.Insights{
			OverallCredibility: 0.8,
			KeyTopics:          report.Topics{{Phrase: "golang", Count: 1}, {Phrase: "compiler", Count: 1}},
			TopSources:         []report.TopSource{{Title: "Go", URL: "https://go.dev", Credibility: 0.8}},
		},
	}
}

func TestWriteSummary_Format(t *testing.T) {
	var b bytes.Buffer
	if err := WriteSummary(&b, sampleReport()); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	rule := strings.Repeat("=", 80)
	want := "\n" + rule + "\nQuery: golang\n" + rule + "\n\n" +
		"INSIGHTS:\n" +
		"  Overall Credibility: 0.8\n" +
		"  Key Topics: golang, compiler\n" +
		"  Top Sources: 1\n\n" +
		"[1] Go\n" +
		"    URL: https://go.dev\n" +
		"    Credibility: 0.8 | Words: 120\n" +
		"    Sentiment: positive (polarity: 0.25)\n" +
		"    Key Phrases: golang, compiler, types, generics, modules\n\n" +
		"[2] (no title)\n" +
		"    URL: https://example.com/blocked\n\n"
	if got := b.String(); got != want {
		t.Fatalf("summary mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteSummary_EmptyReport(t *testing.T) {
	var b bytes.Buffer
	if err := WriteSummary(&b, report.Report{Query: "nothing"}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "Overall Credibility: 0\n") || !strings.Contains(out, "Key Topics: \n") {
		t.Fatalf("unexpected empty summary:\n%s", out)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(sampleReport())
	for _, want := range []string{"# golang", "## Insights", "**Top sources:** 1", "1. **Go**", "sentiment positive (polarity 0.25)"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown summary missing %q:\n%s", want, md)
		}
	}
	if !strings.Contains(SummaryMarkdown(report.Report{Query: "x"}), "_No results._") {
		t.Fatalf("expected empty marker")
	}
}

func TestPrintSummary_PlainForNonTerminal(t *testing.T) {
	var b bytes.Buffer
	if err := printSummary(&b, sampleReport(), false); err != nil {
		t.Fatalf("printSummary: %v", err)
	}
	if !strings.HasPrefix(b.String(), "\n"+strings.Repeat("=", 80)) {
		t.Fatalf("non-terminal output should be plain text")
	}
}
