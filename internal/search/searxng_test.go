package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearxNG_Search_ParsesResults(t *testing.T) {
	var gotQuery, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Doc", "url": "https://example.com", "content": " snippet "},
				{"title": "Bad", "url": "", "content": "no url"},
			},
		})
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := s.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 valid result, got %d", len(got))
	}
	if got[0].URL != "https://example.com" || got[0].Snippet != "snippet" || got[0].Source != "searxng" {
		t.Fatalf("unexpected hit: %+v", got[0])
	}
	if gotQuery != "query" || gotFormat != "json" {
		t.Fatalf("unexpected request params q=%q format=%q", gotQuery, gotFormat)
	}
}

func TestSearxNG_Search_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL, HTTPClient: srv.Client()}
	if _, err := s.Search(context.Background(), "query", 5); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestSearxNG_Search_WalksPagesUntilLimit(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("pageno")
		pages = append(pages, p)
		results := []map[string]any{
			{"title": "A", "url": "https://a.example/" + p},
			{"title": "B", "url": "https://b.example/" + p},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL + "/", HTTPClient: srv.Client(), Language: "en"}
	got, err := s.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 hits across pages, got %d", len(got))
	}
	if len(pages) != 3 || pages[0] != "" || pages[1] != "2" || pages[2] != "3" {
		t.Fatalf("unexpected page requests %q", pages)
	}
}

func TestSearxNG_Search_LaterPageErrorKeepsEarlierHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageno") != "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{{"title": "A", "url": "https://a.example"}}})
	}))
	defer srv.Close()

	s := &SearxNG{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := s.Search(context.Background(), "query", 5)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected 1 hit and no error, got %d, %v", len(got), err)
	}
}
