package app

import (
	"time"

	"github.com/hyperifyio/deepsearch/internal/credibility"
	"github.com/hyperifyio/deepsearch/internal/fetch"
	"github.com/hyperifyio/deepsearch/internal/orchestrator"
)

// Search provider names accepted by Config.SearchProvider.
const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderSearxNG    = "searxng"
	ProviderFile       = "file"
)

const defaultTimeout = 10 * time.Second

// Config holds runtime configuration for the application.
type Config struct {
	Query string

	// Run limits
	MaxResults int
	MaxFetch   int
	Delay      time.Duration

	// Exports; empty paths are skipped
	SavePath     string
	CSVPath      string
	XLSXPath     string
	MarkdownPath string
	PDFPath      string

	// Search
	SearchProvider string
	SearxURL       string
	SearxKey       string
	SearchFile     string

	// Fetch
	Timeout   time.Duration
	UserAgent string

	// NLP modes are auto, llm, local or off.
	NERMode         string
	SentimentMode   string
	LanguageEnabled bool

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Credibility overrides; nil keeps the built-in tables.
	CredibilityDomains []credibility.DomainRule
	CredibilitySpam    []string

	// Behavior
	Verbose bool
	NoColor bool
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		MaxResults:      orchestrator.DefaultMaxResults,
		MaxFetch:        orchestrator.DefaultMaxFetch,
		Delay:           orchestrator.DefaultDelay,
		SearchProvider:  ProviderDuckDuckGo,
		Timeout:         defaultTimeout,
		UserAgent:       fetch.DefaultUserAgent,
		NERMode:         "auto",
		SentimentMode:   "auto",
		LanguageEnabled: true,
	}
}
