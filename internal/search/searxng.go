package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const searxMaxPages = 3

// SearxNG queries a SearxNG instance's JSON API. SearxNG returns a fixed page
// size regardless of the requested count, so Search walks result pages until
// limit hits are collected, a page adds nothing new, or searxMaxPages is hit.
type SearxNG struct {
	BaseURL    string
	APIKey     string // optional
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
	// Language defaults to "auto"; Categories to "general".
	Language   string
	Categories string
}

func (s *SearxNG) Name() string { return "searxng" }

func (s *SearxNG) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(s.BaseURL) == "" {
		return nil, errors.New("missing searxng base url")
	}
	if limit <= 0 {
		limit = 10
	}
	endpoint, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse searxng url: %w", err)
	}
	if !strings.HasSuffix(endpoint.Path, "/search") {
		endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/search"
	}

	out := make([]Hit, 0, limit)
	seen := map[string]struct{}{}
	for page := 1; page <= searxMaxPages && len(out) < limit; page++ {
		results, err := s.page(ctx, *endpoint, query, page)
		if err != nil {
			if page > 1 {
				// Keep what earlier pages produced.
				break
			}
			return nil, err
		}
		added := 0
		for _, r := range results {
			title, link := strings.TrimSpace(r.Title), strings.TrimSpace(r.URL)
			if link == "" || title == "" {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			out = append(out, Hit{Title: title, URL: link, Snippet: strings.TrimSpace(r.Content), Source: s.Name()})
			added++
			if len(out) >= limit {
				break
			}
		}
		if added == 0 {
			break
		}
	}
	return out, nil
}

func (s *SearxNG) page(ctx context.Context, endpoint url.URL, query string, page int) ([]searxResult, error) {
	q := endpoint.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("language", orDefault(s.Language, "auto"))
	q.Set("categories", orDefault(s.Categories, "general"))
	q.Set("safesearch", "1")
	if page > 1 {
		q.Set("pageno", strconv.Itoa(page))
	}
	if s.APIKey != "" {
		q.Set("apikey", s.APIKey)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("searxng status: %d", resp.StatusCode)
	}
	var sr struct {
		Results []searxResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode searxng response: %w", err)
	}
	return sr.Results, nil
}

type searxResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
