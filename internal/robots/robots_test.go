package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func robotsServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGate_AllowsAndDenies(t *testing.T) {
	t.Parallel()
	srv := robotsServer(t, "User-agent: *\nDisallow: /private/\n", nil)
	g := &Gate{HTTPClient: srv.Client(), UserAgent: "deepsearch-test/1.0"}
	ctx := context.Background()

	if !g.Allowed(ctx, srv.URL+"/public/page") {
		t.Fatalf("expected /public/page to be allowed")
	}
	if g.Allowed(ctx, srv.URL+"/private/secret") {
		t.Fatalf("expected /private/secret to be disallowed")
	}
	if d := g.Decision(ctx, srv.URL+"/"); d != DecisionRules {
		t.Fatalf("expected rules decision, got %v", d)
	}
}

func TestGate_AgentSpecificGroup(t *testing.T) {
	t.Parallel()
	body := "User-agent: deepsearch-test\nDisallow: /\n\nUser-agent: *\nDisallow:\n"
	srv := robotsServer(t, body, nil)
	ctx := context.Background()

	blocked := &Gate{HTTPClient: srv.Client(), UserAgent: "deepsearch-test"}
	if blocked.Allowed(ctx, srv.URL+"/page") {
		t.Fatalf("expected named agent to be blocked")
	}
	other := &Gate{HTTPClient: srv.Client(), UserAgent: "otherbot"}
	if !other.Allowed(ctx, srv.URL+"/page") {
		t.Fatalf("expected other agents to be allowed")
	}
}

func TestGate_FetchesOncePerOrigin(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := robotsServer(t, "User-agent: *\nDisallow: /x\n", &hits)
	g := &Gate{HTTPClient: srv.Client(), UserAgent: "deepsearch-test"}
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = g.Allowed(ctx, srv.URL+"/page")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected 1 robots fetch, got %d", got)
	}
}

func TestGate_FailOpenOnMissing(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	g := &Gate{HTTPClient: srv.Client(), UserAgent: "deepsearch-test"}
	if !g.Allowed(context.Background(), srv.URL+"/any") {
		t.Fatalf("expected allow when robots.txt is missing")
	}
	if d := g.Decision(context.Background(), srv.URL+"/any"); d != DecisionFailOpen {
		t.Fatalf("expected fail-open decision, got %v", d)
	}
}

func TestGate_FailOpenOnServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	g := &Gate{HTTPClient: srv.Client(), UserAgent: "deepsearch-test"}
	if !g.Allowed(context.Background(), srv.URL+"/any") {
		t.Fatalf("expected allow when robots.txt errors")
	}
}

func TestGate_FailOpenOnTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	g := &Gate{HTTPClient: srv.Client(), UserAgent: "deepsearch-test", Timeout: 50 * time.Millisecond}

	start := time.Now()
	if !g.Allowed(context.Background(), srv.URL+"/page") {
		t.Fatalf("expected allow when robots.txt times out")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("gate did not honour timeout: %v", elapsed)
	}
}

func TestGate_FailOpenOnUnreachableHost(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	g := &Gate{UserAgent: "deepsearch-test", Timeout: time.Second}
	if !g.Allowed(context.Background(), addr+"/page") {
		t.Fatalf("expected allow when host is unreachable")
	}
}

func TestGate_NonHTTPURLAllowed(t *testing.T) {
	t.Parallel()
	g := &Gate{UserAgent: "deepsearch-test"}
	if !g.Allowed(context.Background(), "ftp://example.com/file") {
		t.Fatalf("non-http urls are not the gate's concern")
	}
	if d := g.Decision(context.Background(), "%%%"); d != DecisionFailOpen {
		t.Fatalf("expected fail-open for malformed url")
	}
}
