package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/hyperifyio/deepsearch/internal/report"
	"github.com/hyperifyio/deepsearch/internal/search"
)

const articleHTML = `<!doctype html><html><head><title>Go generics</title></head><body>
<article><h1>Go generics</h1>
<p>Type parameters let functions and types work with any set of types. The compiler checks constraints at build time.</p>
<p>Generic code in Go keeps the language simple while removing a lot of duplicated container code.</p>
</article></body></html>`

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/page") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(articleHTML))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeHits(t *testing.T, dir string, urls ...string) string {
	t.Helper()
	type hit struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	}
	hits := make([]hit, 0, len(urls))
	for i, u := range urls {
		hits = append(hits, hit{Title: "Result " + string(rune('A'+i)), URL: u, Snippet: "snippet"})
	}
	b, err := json.Marshal(hits)
	if err != nil {
		t.Fatalf("marshal hits: %v", err)
	}
	path := filepath.Join(dir, "hits.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write hits: %v", err)
	}
	return path
}

func offlineConfig(searchFile string) Config {
	cfg := DefaultConfig()
	cfg.Query = "go generics"
	cfg.SearchProvider = ProviderFile
	cfg.SearchFile = searchFile
	cfg.Delay = 0
	cfg.Timeout = 2 * time.Second
	cfg.NERMode = "off"
	cfg.SentimentMode = "local"
	cfg.NoColor = true
	return cfg
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchProvider = "bing"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestRun_BlankQuery(t *testing.T) {
	dir := t.TempDir()
	cfg := offlineConfig(writeHits(t, dir))
	cfg.Query = "   "
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if _, err := a.Run(context.Background()); !errors.Is(err, ErrNoQuery) {
		t.Fatalf("expected ErrNoQuery, got %v", err)
	}
}

func TestRun_FileProviderWritesEveryExport(t *testing.T) {
	srv := pageServer(t)
	dir := t.TempDir()
	cfg := offlineConfig(writeHits(t, dir, srv.URL+"/page", srv.URL+"/missing"))
	cfg.SavePath = filepath.Join(dir, "out.json")
	cfg.CSVPath = filepath.Join(dir, "out.csv")
	cfg.XLSXPath = filepath.Join(dir, "out.xlsx")
	cfg.MarkdownPath = filepath.Join(dir, "out.md")
	cfg.PDFPath = filepath.Join(dir, "out.pdf")

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	a.Out = &out
	rep, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rep.Results))
	}
	if !rep.Results[0].Fetched || rep.Results[0].Analysis == nil {
		t.Fatalf("first hit should be fetched and analyzed: %+v", rep.Results[0])
	}
	if rep.Results[1].Fetched {
		t.Fatalf("404 hit must be unfetched")
	}
	if a := rep.Results[0].Analysis; a.Sentiment == nil || a.NamedEntities != nil {
		t.Fatalf("expected local sentiment and no entities: %+v", a)
	}

	for _, p := range []string{cfg.SavePath, cfg.CSVPath, cfg.XLSXPath, cfg.MarkdownPath, cfg.PDFPath} {
		st, err := os.Stat(p)
		if err != nil || st.Size() == 0 {
			t.Fatalf("expected non-empty export %s, err=%v", p, err)
		}
	}
	f, err := os.Open(cfg.SavePath)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()
	back, err := report.ReadJSON(f)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if back.Query != "go generics" || len(back.Results) != 2 {
		t.Fatalf("unexpected saved report: %+v", back)
	}
	md, _ := os.ReadFile(cfg.MarkdownPath)
	if !strings.Contains(string(md), "provider=file") || !strings.Contains(string(md), "delay=0s") {
		t.Fatalf("markdown footer missing run settings:\n%s", md)
	}

	console := out.String()
	for _, want := range []string{"Query: go generics", "INSIGHTS:", "[1] Result A", "Saved JSON to " + cfg.SavePath, "Saved PDF to "} {
		if !strings.Contains(console, want) {
			t.Fatalf("console output missing %q:\n%s", want, console)
		}
	}
}

func TestRun_ExportFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	cfg := offlineConfig(writeHits(t, dir))
	cfg.SavePath = filepath.Join(dir, "missing-dir", "out.json")
	cfg.CSVPath = filepath.Join(dir, "out.csv")
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Out = &bytes.Buffer{}
	_, err = a.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "save json") {
		t.Fatalf("expected save json error, got %v", err)
	}
	if _, err := os.Stat(cfg.CSVPath); err != nil {
		t.Fatalf("later exports should still be written: %v", err)
	}
}

func TestRun_InterruptStopsBetweenHits(t *testing.T) {
	srv := pageServer(t)
	dir := t.TempDir()
	cfg := offlineConfig(writeHits(t, dir, srv.URL+"/page1", srv.URL+"/page2", srv.URL+"/page3"))
	cfg.Delay = 300 * time.Millisecond

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sigs := make(chan os.Signal, 1)
	sigs <- syscall.SIGINT
	a.Interrupts = sigs
	a.Out = &bytes.Buffer{}

	rep, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Results) != 3 {
		t.Fatalf("stopped run must keep every hit, got %d", len(rep.Results))
	}
	if n := rep.FetchedCount(); n >= 3 {
		t.Fatalf("expected stop before all pages were fetched, fetched %d", n)
	}
}

func TestNewProvider(t *testing.T) {
	client := &http.Client{}
	cases := []struct {
		name     string
		provider string
		want     string
		wantErr  bool
	}{
		{"default", "", "duckduckgo", false},
		{"duckduckgo", " DuckDuckGo ", "duckduckgo", false},
		{"searxng", ProviderSearxNG, "searxng", false},
		{"file", ProviderFile, "file", false},
		{"unknown", "bing", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SearchProvider = tc.provider
			cfg.SearxURL = "http://searx.local"
			cfg.SearchFile = "hits.json"
			p, err := NewProvider(cfg, client)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.provider)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if p.Name() != tc.want {
				t.Fatalf("provider %q, want %q", p.Name(), tc.want)
			}
		})
	}
	cfg := DefaultConfig()
	cfg.SearchProvider = ProviderSearxNG
	cfg.SearxURL = "http://searx.local"
	p, _ := NewProvider(cfg, client)
	if sx, ok := p.(*search.SearxNG); !ok || sx.HTTPClient != client || sx.BaseURL != "http://searx.local" {
		t.Fatalf("searxng not wired to the shared client: %#v", p)
	}
}

func TestClose_ReleasesSharedClients(t *testing.T) {
	dir := t.TempDir()
	cfg := offlineConfig(writeHits(t, dir))
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(a.clients) == 0 {
		t.Fatalf("expected the shared HTTP client to be tracked")
	}
	a.Close()
	a.Close()
}
