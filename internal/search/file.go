package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileProvider serves hits from a local JSON file for offline runs and tests.
// The file is an array of {"title", "url" (or "href"), "snippet" (or "body")}
// objects. Every entry is returned in file order; the query is ignored unless
// Filter is set.
type FileProvider struct {
	Path string
	// Filter keeps only entries whose title or snippet contains the query.
	Filter bool
}

func (f *FileProvider) Name() string { return "file" }

type fileEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Href    string `json:"href"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
}

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []fileEntry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Hit, 0, len(raw))
	for _, r := range raw {
		h := Hit{Title: strings.TrimSpace(r.Title), URL: firstNonEmpty(r.URL, r.Href), Snippet: firstNonEmpty(r.Snippet, r.Body), Source: f.Name()}
		if h.URL == "" {
			continue
		}
		if f.Filter && q != "" && !strings.Contains(strings.ToLower(h.Title), q) && !strings.Contains(strings.ToLower(h.Snippet), q) {
			continue
		}
		out = append(out, h)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
