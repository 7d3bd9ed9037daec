// Package report defines the run report and writes it out as JSON, CSV,
// XLSX, Markdown and PDF.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyperifyio/deepsearch/internal/keyphrase"
	"github.com/hyperifyio/deepsearch/internal/nlp"
)

// Report is the single artifact of one run.
type Report struct {
	Query     string        `json:"query"`
	Timestamp string        `json:"timestamp"`
	Results   []ResultEntry `json:"results"`
	Insights  Insights      `json:"insights"`
}

// ResultEntry is one search hit plus what became of it.
type ResultEntry struct {
	Title    string        `json:"title"`
	URL      string        `json:"url"`
	Snippet  string        `json:"snippet"`
	Fetched  bool          `json:"fetched"`
	Status   int           `json:"status,omitempty"`
	Analysis *PageAnalysis `json:"analysis,omitempty"`
}

// PageAnalysis is the per-page analysis record. NamedEntities is nil when
// entity recognition is unavailable, which drops the key from JSON; an active
// recogniser that finds nothing yields an empty object.
type PageAnalysis struct {
	WordCount        int                 `json:"word_count"`
	CharCount        int                 `json:"char_count"`
	SentenceCount    int                 `json:"sentence_count"`
	AvgWordLength    float64             `json:"avg_word_length"`
	ReadabilityScore float64             `json:"readability_score"`
	Emails           []string            `json:"emails"`
	Phones           []string            `json:"phones"`
	URLs             []string            `json:"urls"`
	NamedEntities    map[string][]string `json:"named_entities,omitzero"`
	Keyphrases       []keyphrase.Phrase  `json:"keyphrases"`
	Sentiment        *nlp.Sentiment      `json:"sentiment,omitempty"`
	Language         string              `json:"language"`
	CredibilityScore float64             `json:"credibility_score"`
	Summary          string              `json:"summary"`
}

// Insights are the cross-page metrics derived from all entries.
type Insights struct {
	OverallCredibility   float64        `json:"overall_credibility"`
	KeyTopics            Topics         `json:"key_topics"`
	TopSources           []TopSource    `json:"top_sources"`
	LanguageDistribution map[string]int `json:"language_distribution"`
}

// TopSource is an entry whose credibility clears the top-source threshold.
type TopSource struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Credibility float64 `json:"credibility"`
}

// Topics is a ranked phrase → count mapping. It encodes as a JSON object
// whose keys keep rank order.
type Topics []keyphrase.Phrase

// MarshalJSON implements json.Marshaler.
func (t Topics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Phrase)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", p.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping document order.
func (t *Topics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("key_topics: expected object")
	}
	out := Topics{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("key_topics: expected string key")
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("key_topics[%s]: %w", key, err)
		}
		out = append(out, keyphrase.Phrase{Phrase: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

// Count returns the aggregate count for phrase, or 0.
func (t Topics) Count(phrase string) int {
	for _, p := range t {
		if p.Phrase == phrase {
			return p.Count
		}
	}
	return 0
}

// Timestamp formats now the way reports record their generation time.
func Timestamp(now time.Time) string {
	return now.Format(time.RFC3339)
}

// FetchedCount returns how many entries were fetched.
func (r Report) FetchedCount() int {
	n := 0
	for _, e := range r.Results {
		if e.Fetched {
			n++
		}
	}
	return n
}
