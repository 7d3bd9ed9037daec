package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Hit is one title/URL/snippet triple returned for a query.
type Hit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	// Source is the provider name, for logging only.
	Source string `json:"-"`
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
	Name() string
}

// SafeProvider wraps a Provider so that search never fails: a nil provider,
// an error or a panic becomes an empty hit list. Hits are passed through in
// provider order, including duplicates and hits without a URL.
type SafeProvider struct {
	Inner Provider
}

// Safe wraps p; see SafeProvider.
func Safe(p Provider) *SafeProvider { return &SafeProvider{Inner: p} }

func (s *SafeProvider) Name() string {
	if s.Inner == nil {
		return "none"
	}
	return s.Inner.Name()
}

// Search returns at most limit hits. Failures are logged, never returned.
func (s *SafeProvider) Search(ctx context.Context, query string, limit int) (hits []Hit) {
	if s.Inner == nil {
		log.Warn().Msg("no search provider configured")
		return []Hit{}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Str("provider", s.Inner.Name()).Msg("search provider panicked")
			hits = []Hit{}
		}
	}()
	got, err := s.Inner.Search(ctx, query, limit)
	if err != nil {
		log.Warn().Err(err).Str("provider", s.Inner.Name()).Str("query", query).Msg("search failed")
		return []Hit{}
	}
	if got == nil {
		return []Hit{}
	}
	if limit > 0 && len(got) > limit {
		got = got[:limit]
	}
	return got
}

// Dedupe drops hits without a URL and hits whose normalised URL was already
// seen. The first occurrence keeps its position and original URL text.
func Dedupe(hits []Hit) []Hit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if strings.TrimSpace(h.URL) == "" {
			continue
		}
		key := normalizeURL(h.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}

// normalizeURL lowercases the host and drops the fragment and common tracking
// parameters. Unparsable URLs are compared verbatim.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	q := u.Query()
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
