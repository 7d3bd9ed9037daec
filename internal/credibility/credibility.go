// Package credibility scores how trustworthy a fetched page looks, combining
// domain reputation, content length and spam phrase density into [0.1, 1.0].
package credibility

import (
	"net/url"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

const (
	baseline       = 0.5
	minScore       = 0.1
	maxScore       = 1.0
	longBonus      = 0.1
	shortPenalty   = 0.15
	spamPenalty    = 0.05
	longWordCount  = 500
	shortWordCount = 100
)

// DomainRule raises the score of any host containing Match to at least Score.
type DomainRule struct {
	Match string  `yaml:"match" json:"match"`
	Score float64 `yaml:"score" json:"score"`
}

// DefaultDomains is evaluated in order and the first matching rule wins, so a
// broad entry placed early shadows more specific entries after it.
var DefaultDomains = []DomainRule{
	{Match: "wikipedia.org", Score: 0.95},
	{Match: "edu", Score: 0.90},
	{Match: "gov", Score: 0.88},
	{Match: "bbc.com", Score: 0.90},
	{Match: "reuters.com", Score: 0.92},
	{Match: "apnews.com", Score: 0.91},
	{Match: "nature.com", Score: 0.93},
	{Match: "arxiv.org", Score: 0.89},
}

// DefaultSpamPhrases each cost spamPenalty once when present.
var DefaultSpamPhrases = []string{
	"click here",
	"buy now",
	"limited time",
	"act now",
	"must see",
	"fake",
	"scam",
}

// Scorer holds an ordered domain table and a compiled spam phrase matcher.
// It has no mutable state after construction and is safe for concurrent use.
type Scorer struct {
	domains []DomainRule
	spam    []string
	matcher *ahocorasick.Matcher
}

// New builds a Scorer. Nil arguments select the defaults; an empty non-nil
// slice disables that signal.
func New(domains []DomainRule, spam []string) *Scorer {
	if domains == nil {
		domains = DefaultDomains
	}
	if spam == nil {
		spam = DefaultSpamPhrases
	}
	s := &Scorer{
		domains: make([]DomainRule, 0, len(domains)),
		spam:    make([]string, 0, len(spam)),
	}
	for _, d := range domains {
		m := strings.ToLower(strings.TrimSpace(d.Match))
		if m == "" {
			continue
		}
		s.domains = append(s.domains, DomainRule{Match: m, Score: d.Score})
	}
	seen := map[string]struct{}{}
	for _, p := range spam {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		s.spam = append(s.spam, p)
	}
	if len(s.spam) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(s.spam)
	}
	return s
}

// Default returns a Scorer using DefaultDomains and DefaultSpamPhrases.
func Default() *Scorer { return New(nil, nil) }

// Score returns the credibility of a page in [0.1, 1.0]. It is deterministic
// and has no side effects.
func (s *Scorer) Score(rawURL, title, content string) float64 {
	score := baseline
	if v, ok := s.DomainScore(hostOf(rawURL)); ok && v > score {
		score = v
	}

	words := len(strings.Fields(content))
	switch {
	case words > longWordCount:
		score += longBonus
	case words < shortWordCount:
		score -= shortPenalty
	}

	score -= float64(s.SpamHits(title+" "+content)) * spamPenalty

	return clamp(score)
}

// DomainScore returns the score of the first rule whose Match occurs in host.
func (s *Scorer) DomainScore(host string) (float64, bool) {
	host = strings.ToLower(host)
	if host == "" {
		return 0, false
	}
	for _, d := range s.domains {
		if strings.Contains(host, d.Match) {
			return d.Score, true
		}
	}
	return 0, false
}

// SpamHits counts the distinct spam phrases present in text, case-insensitively.
func (s *Scorer) SpamHits(text string) int {
	if s.matcher == nil || text == "" {
		return 0
	}
	hits := s.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	distinct := map[int]struct{}{}
	for _, h := range hits {
		distinct[h] = struct{}{}
	}
	return len(distinct)
}

// Domains returns a copy of the ordered domain table.
func (s *Scorer) Domains() []DomainRule {
	return append([]DomainRule(nil), s.domains...)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u == nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func clamp(v float64) float64 {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
