// Package aggregate reduces a run's result entries into cross-page insights.
package aggregate

import (
	"math"

	"github.com/hyperifyio/deepsearch/internal/keyphrase"
	"github.com/hyperifyio/deepsearch/internal/report"
)

const (
	// TopSourceThreshold is exclusive: sources must score above it.
	TopSourceThreshold = 0.75
	// MaxTopics bounds Insights.KeyTopics.
	MaxTopics = 10
)

// Insights is a pure function of entries. Entries without an analysis add
// nothing to any metric.
func Insights(entries []report.ResultEntry) report.Insights {
	out := report.Insights{
		KeyTopics:            report.Topics{},
		TopSources:           []report.TopSource{},
		LanguageDistribution: map[string]int{},
	}
	var sum float64
	var scored int
	lists := make([][]keyphrase.Phrase, 0, len(entries))
	for _, e := range entries {
		a := e.Analysis
		if a == nil {
			continue
		}
		lists = append(lists, a.Keyphrases)
		sum += a.CredibilityScore
		scored++
		if a.Language != "" {
			out.LanguageDistribution[a.Language]++
		}
		if a.CredibilityScore > TopSourceThreshold {
			out.TopSources = append(out.TopSources, report.TopSource{
				Title:       e.Title,
				URL:         e.URL,
				Credibility: a.CredibilityScore,
			})
		}
	}
	if scored > 0 {
		out.OverallCredibility = math.Round(sum/float64(scored)*1000) / 1000
	}
	if topics := keyphrase.Merge(lists, MaxTopics); len(topics) > 0 {
		out.KeyTopics = topics
	}
	return out
}
