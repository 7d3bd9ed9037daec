package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the client shared by the search provider, robots
// gate, page fetcher and LLM backend of one App. Fetches are sequential, so
// the pool stays small; timeout bounds every request end to end.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// newLLMHTTPClient allows slower responses than page fetches since model
// completions can take a while.
func newLLMHTTPClient(timeout time.Duration) *http.Client {
	c := newHTTPClient(timeout)
	if c.Timeout < 60*time.Second {
		c.Timeout = 60 * time.Second
	}
	if tr, ok := c.Transport.(*http.Transport); ok {
		tr.ResponseHeaderTimeout = c.Timeout
	}
	return c
}
