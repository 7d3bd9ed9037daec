// Package analyzer turns extracted page text into a PageAnalysis.
package analyzer

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/deepsearch/internal/credibility"
	"github.com/hyperifyio/deepsearch/internal/keyphrase"
	"github.com/hyperifyio/deepsearch/internal/nlp"
	"github.com/hyperifyio/deepsearch/internal/patterns"
	"github.com/hyperifyio/deepsearch/internal/report"
)

const (
	summaryRunes     = 500
	maxReadability   = 100
	readabilityScale = 0.5
)

var (
	wordRe          = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentenceBreakRe = regexp.MustCompile(`[.!?]+`)
)

// Analyzer composes the per-page analyses. A zero Analyzer is usable: it
// scores with the default credibility table and runs no optional NLP.
type Analyzer struct {
	Scorer *credibility.Scorer
	NLP    *nlp.Context
	// Keyphrases is the number of phrases kept. Zero means keyphrase.DefaultLimit.
	Keyphrases int
}

// New returns an Analyzer over the given scorer and NLP context.
func New(scorer *credibility.Scorer, nlpCtx *nlp.Context) *Analyzer {
	return &Analyzer{Scorer: scorer, NLP: nlpCtx}
}

// Analyze never fails: empty text yields zero counts and empty collections,
// and an optional analysis that fails is left out.
func (a *Analyzer) Analyze(ctx context.Context, text, url, title string) report.PageAnalysis {
	words := len(wordRe.FindAllStringIndex(text, -1))
	chars := utf8.RuneCountInString(text)
	sentences := SentenceCount(text)

	m := patterns.Extract(text)
	out := report.PageAnalysis{
		WordCount:        words,
		CharCount:        chars,
		SentenceCount:    sentences,
		AvgWordLength:    round2(float64(chars) / float64(max(words, 1))),
		ReadabilityScore: math.Min(maxReadability, round2(float64(words)/float64(max(sentences, 1))*readabilityScale)),
		Emails:           m.Emails,
		Phones:           m.Phones,
		URLs:             m.URLs,
		Keyphrases:       keyphrase.Extract(text, a.Keyphrases),
		Language:         a.NLP.Language(text),
		CredibilityScore: round3(a.scorer().Score(url, title, text)),
		Summary:          Summary(text),
	}
	if a.NLP.Capabilities().NER {
		out.NamedEntities = a.NLP.Entities(ctx, text)
	}
	if a.NLP.Capabilities().Sentiment {
		out.Sentiment = a.NLP.Sentiment(ctx, text)
	}
	return out
}

func (a *Analyzer) scorer() *credibility.Scorer {
	if a.Scorer == nil {
		return credibility.Default()
	}
	return a.Scorer
}

// SentenceCount counts the pieces left by splitting on runs of '.', '!' and
// '?'. Text ending in a terminator therefore counts one extra, empty piece.
func SentenceCount(text string) int {
	if text == "" {
		return 0
	}
	return len(sentenceBreakRe.Split(text, -1))
}

// Summary returns the first 500 characters of text, trimmed, with "..."
// appended when text was longer.
func Summary(text string) string {
	if utf8.RuneCountInString(text) <= summaryRunes {
		return strings.TrimSpace(text)
	}
	n := 0
	for i := range text {
		if n == summaryRunes {
			return strings.TrimSpace(text[:i]) + "..."
		}
		n++
	}
	return strings.TrimSpace(text)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
