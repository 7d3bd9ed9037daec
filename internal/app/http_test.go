package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient(3 * time.Second)
	if c.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if tr.ResponseHeaderTimeout != 3*time.Second {
		t.Fatalf("header timeout should follow the client timeout, got %v", tr.ResponseHeaderTimeout)
	}
	// Ensure we didn't return the default client's transport
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
	if d := newHTTPClient(0); d.Timeout != defaultTimeout {
		t.Fatalf("zero timeout should select the default, got %v", d.Timeout)
	}
}

func TestNewLLMHTTPClient_AllowsSlowCompletions(t *testing.T) {
	c := newLLMHTTPClient(2 * time.Second)
	if c.Timeout < 60*time.Second {
		t.Fatalf("expected at least 60s for completions, got %v", c.Timeout)
	}
}
