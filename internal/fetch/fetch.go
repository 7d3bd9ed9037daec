package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultUserAgent is a realistic browser UA; many origins reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 5 << 20
	defaultRedirect = 5
)

// ErrRobotsDenied is returned by Get when the robots gate refuses the URL.
var ErrRobotsDenied = errors.New("blocked by robots.txt")

// Gate decides whether a URL may be fetched. *robots.Gate implements it.
type Gate interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status: %d", e.Code) }

// Page is a successfully fetched HTML document.
type Page struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

// Client issues one robots-gated GET per URL with a hard timeout.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Robots is consulted before every request when set.
	Robots Gate
	// Timeout bounds each request including body read. Zero means 10s.
	Timeout time.Duration
	// MaxBytes caps the body size. Zero means 5 MiB.
	MaxBytes int64
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
}

// Fetch returns the page and true on success. Every failure (unsupported
// scheme, robots denial, network error, timeout, non-2xx) is logged at debug
// level and reported only as false.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Page, bool) {
	p, err := c.Get(ctx, rawURL)
	if err != nil {
		if errors.Is(err, ErrRobotsDenied) {
			log.Info().Str("url", rawURL).Msg("blocked by robots.txt")
		} else {
			log.Debug().Err(err).Str("url", rawURL).Msg("fetch failed")
		}
		return Page{}, false
	}
	return p, true
}

// Get is the error-returning form of Fetch.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) || u.Host == "" {
		return Page{}, fmt.Errorf("unsupported URL: %q", rawURL)
	}
	if c.Robots != nil && !c.Robots.Allowed(ctx, u.String()) {
		return Page{}, ErrRobotsDenied
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return Page{}, fmt.Errorf("new request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := c.httpClient(timeout).Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &StatusError{Code: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(contentType) {
		return Page{}, fmt.Errorf("unsupported content type: %s", contentType)
	}
	limit := c.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}
	return Page{URL: u.String(), Status: resp.StatusCode, ContentType: contentType, Body: body}, nil
}

func (c *Client) httpClient(timeout time.Duration) *http.Client {
	if c.HTTPClient != nil {
		// Copy so the redirect policy does not mutate the caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: timeout, CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = defaultRedirect
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts HTML variants and responses without a
// declared type.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
