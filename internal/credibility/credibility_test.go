package credibility

import (
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

func TestScore_Baseline(t *testing.T) {
	s := Default()
	got := s.Score("https://example.com/a", "Title", words(200))
	if !approx(got, 0.5) {
		t.Fatalf("expected baseline 0.5, got %v", got)
	}
}

func TestScore_DomainOverrideAndShortPenalty(t *testing.T) {
	s := Default()
	if v, ok := s.DomainScore("en.wikipedia.org"); !ok || !approx(v, 0.95) {
		t.Fatalf("expected wikipedia override 0.95, got %v ok=%v", v, ok)
	}
	// 5 words: override to 0.95, then the short-content penalty applies.
	got := s.Score("https://en.wikipedia.org/wiki/Wikipedia", "Wikipedia", "Wikipedia is a free encyclopedia.")
	if !approx(got, 0.80) {
		t.Fatalf("expected 0.80, got %v", got)
	}
}

func TestScore_LongContentBonus(t *testing.T) {
	s := Default()
	got := s.Score("https://www.reuters.com/world", "News", words(600))
	if !approx(got, 1.0) {
		t.Fatalf("expected clamp to 1.0, got %v", got)
	}
	got = s.Score("https://example.org", "News", words(501))
	if !approx(got, 0.6) {
		t.Fatalf("expected 0.6, got %v", got)
	}
}

func TestScore_SpamPhrasesCountedOnce(t *testing.T) {
	s := Default()
	content := words(200) + " click here click here CLICK HERE buy now"
	got := s.Score("https://example.com", "Limited time offer", content)
	// click here, buy now, limited time
	if !approx(got, 0.5-3*0.05) {
		t.Fatalf("expected 0.35, got %v", got)
	}
	if n := s.SpamHits("nothing suspicious"); n != 0 {
		t.Fatalf("expected 0 hits, got %d", n)
	}
}

func TestScore_Bounds(t *testing.T) {
	s := Default()
	spam := strings.Join(DefaultSpamPhrases, " ")
	cases := []struct {
		url, title, content string
	}{
		{"", "", ""},
		{"::not a url", spam, spam},
		{"https://scam.example", spam, spam + " " + spam},
		{"https://mit.edu", "", words(10000)},
		{"https://en.wikipedia.org", "", words(700)},
	}
	for _, c := range cases {
		got := s.Score(c.url, c.title, c.content)
		if got < 0.1 || got > 1.0 {
			t.Fatalf("score out of bounds for %+v: %v", c, got)
		}
	}
	if got := s.Score("", spam, ""); !approx(got, 0.1) {
		t.Fatalf("expected floor 0.1, got %v", got)
	}
}

func TestScore_MonotonicInLength(t *testing.T) {
	s := Default()
	prev := -1.0
	for _, n := range []int{0, 50, 99, 100, 250, 500, 501, 900} {
		got := s.Score("https://example.com", "t", words(n))
		if got < prev {
			t.Fatalf("score decreased at %d words: %v < %v", n, got, prev)
		}
		prev = got
	}
	short := s.Score("https://example.com", "t", words(20))
	long := s.Score("https://example.com", "t", words(20)+" "+words(600))
	if !(short < long) {
		t.Fatalf("expected short content to score lower: %v vs %v", short, long)
	}
}

func TestDomainScore_FirstMatchWins(t *testing.T) {
	s := New([]DomainRule{{Match: "edu", Score: 0.9}, {Match: "stanford.edu", Score: 0.99}}, []string{})
	v, ok := s.DomainScore("cs.stanford.edu")
	if !ok || !approx(v, 0.9) {
		t.Fatalf("expected earlier broad rule to win, got %v", v)
	}
	s = New([]DomainRule{{Match: "stanford.edu", Score: 0.99}, {Match: "edu", Score: 0.9}}, []string{})
	v, _ = s.DomainScore("cs.stanford.edu")
	if !approx(v, 0.99) {
		t.Fatalf("expected specific rule first, got %v", v)
	}
}

func TestDomainScore_LowerRuleDoesNotReduce(t *testing.T) {
	s := New([]DomainRule{{Match: "example.com", Score: 0.2}}, []string{})
	got := s.Score("https://example.com", "", words(200))
	if !approx(got, 0.5) {
		t.Fatalf("rule below baseline must not lower score, got %v", got)
	}
}

func TestNew_EmptySpamDisablesPenalty(t *testing.T) {
	s := New(nil, []string{})
	got := s.Score("https://example.com", "scam", words(200)+" scam")
	if !approx(got, 0.5) {
		t.Fatalf("expected no spam penalty, got %v", got)
	}
	if len(s.Domains()) != len(DefaultDomains) {
		t.Fatalf("expected default domains")
	}
}
