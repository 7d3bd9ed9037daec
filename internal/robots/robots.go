// Package robots gates fetches on the origin's robots.txt. Any failure to
// obtain or parse the file allows the fetch (fail-open), so an unreachable
// robots file never blocks a run.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

const (
	robotsPath     = "/robots.txt"
	defaultTimeout = 5 * time.Second
	maxRobotsBytes = 512 * 1024
)

// Decision records how an origin's rules were resolved.
type Decision int

const (
	// DecisionRules means a robots.txt was fetched and parsed.
	DecisionRules Decision = iota
	// DecisionFailOpen means retrieval or parsing failed and everything is allowed.
	DecisionFailOpen
)

func (d Decision) String() string {
	if d == DecisionRules {
		return "rules"
	}
	return "fail-open"
}

// Gate evaluates robots rules per origin. Each Gate owns its origin cache, so
// separate runs using separate Gates share nothing.
type Gate struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each robots.txt request. Zero means 5s.
	Timeout time.Duration

	mu     sync.Mutex
	origin map[string]entry
}

type entry struct {
	data     *robotstxt.RobotsData
	decision Decision
}

// Allowed reports whether rawURL may be fetched by the configured user agent.
func (g *Gate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || !isHTTPScheme(u) {
		return true
	}
	e := g.lookup(ctx, u)
	if e.data == nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return e.data.TestAgent(path, g.UserAgent)
}

// Decision returns how rules for the origin of rawURL were resolved, fetching
// them if this Gate has not seen the origin yet.
func (g *Gate) Decision(ctx context.Context, rawURL string) Decision {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || !isHTTPScheme(u) {
		return DecisionFailOpen
	}
	return g.lookup(ctx, u).decision
}

func (g *Gate) lookup(ctx context.Context, u *url.URL) entry {
	key := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)

	g.mu.Lock()
	if g.origin == nil {
		g.origin = make(map[string]entry)
	}
	if e, ok := g.origin[key]; ok {
		g.mu.Unlock()
		return e
	}
	g.mu.Unlock()

	e := g.fetch(ctx, key+robotsPath)

	g.mu.Lock()
	g.origin[key] = e
	g.mu.Unlock()
	return e
}

func (g *Gate) fetch(ctx context.Context, robotsURL string) entry {
	body, status, err := g.get(ctx, robotsURL)
	if err != nil {
		log.Debug().Err(err).Str("robots", robotsURL).Msg("robots unavailable; allowing")
		return entry{decision: DecisionFailOpen}
	}
	if status < 200 || status > 299 {
		log.Debug().Int("status", status).Str("robots", robotsURL).Msg("robots status not 2xx; allowing")
		return entry{decision: DecisionFailOpen}
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		log.Debug().Err(err).Str("robots", robotsURL).Msg("robots parse failed; allowing")
		return entry{decision: DecisionFailOpen}
	}
	return entry{data: data, decision: DecisionRules}
}

func (g *Gate) get(ctx context.Context, robotsURL string) ([]byte, int, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read robots: %w", err)
	}
	return data, resp.StatusCode, nil
}

func isHTTPScheme(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
