// Package orchestrator runs one search: query the provider once, fetch and
// analyze up to a cap of hits in order with a minimum spacing between fetch
// attempts, then aggregate insights into a Report.
package orchestrator

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/deepsearch/internal/aggregate"
	"github.com/hyperifyio/deepsearch/internal/analyzer"
	"github.com/hyperifyio/deepsearch/internal/extract"
	"github.com/hyperifyio/deepsearch/internal/fetch"
	"github.com/hyperifyio/deepsearch/internal/report"
	"github.com/hyperifyio/deepsearch/internal/robots"
	"github.com/hyperifyio/deepsearch/internal/search"
)

// Defaults mirror the CLI defaults.
const (
	DefaultMaxResults = 15
	DefaultMaxFetch   = 5
	DefaultDelay      = time.Second
)

// State is the pipeline phase reported through OnProgress.
type State int

const (
	Idle State = iota
	Searching
	Fetching
	RateLimitWait
	Aggregating
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Fetching:
		return "fetching"
	case RateLimitWait:
		return "rate-limit-wait"
	case Aggregating:
		return "aggregating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Progress is one state transition. Index is 1-based while iterating hits.
type Progress struct {
	State   State
	Index   int
	Total   int
	URL     string
	Fetched int
}

// Request parameterises one run.
type Request struct {
	Query      string
	MaxResults int
	// MaxFetch caps successful fetches. Zero fetches nothing.
	MaxFetch int
	// Delay is the pause between the end of one fetch attempt and the start
	// of the next, successful or not.
	Delay time.Duration
}

// Fetcher retrieves one page. *fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Page, bool)
}

// PageAnalyzer turns page text into an analysis. *analyzer.Analyzer implements it.
type PageAnalyzer interface {
	Analyze(ctx context.Context, text, url, title string) report.PageAnalysis
}

// Orchestrator holds the collaborators of a run. Fields left nil get
// defaults; in particular a nil Fetcher means each run builds its own
// robots-gated client so robots rules are never shared between runs.
type Orchestrator struct {
	Provider  search.Provider
	Fetcher   Fetcher
	Extractor extract.Extractor
	Analyzer  PageAnalyzer

	// Used only when Fetcher is nil.
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration

	// OnProgress, when set, is called synchronously on every transition.
	OnProgress func(Progress)
	// Now overrides the report timestamp clock.
	Now func() time.Time

	stop atomic.Bool
}

// Stop asks the active run, or the next one if none is active, to record the
// remaining hits as unfetched. It takes effect between hits, never during a
// fetch.
func (o *Orchestrator) Stop() { o.stop.Store(true) }

// Run executes the pipeline. It always returns a Report: a failing provider
// yields empty results and a failing page yields an unfetched entry.
func (o *Orchestrator) Run(ctx context.Context, req Request) report.Report {
	defer o.stop.Store(false)
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	o.emit(Progress{State: Idle})
	limit := req.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	o.emit(Progress{State: Searching})
	provider := search.Safe(o.Provider)
	hits := provider.Search(ctx, req.Query, limit)
	logger.Info().Str("provider", provider.Name()).Int("hits", len(hits)).Int("requested", limit).Msg("search complete")

	results := o.iterate(ctx, &logger, hits, req)

	o.emit(Progress{State: Aggregating, Total: len(hits)})
	rep := report.Report{
		Query:     req.Query,
		Timestamp: report.Timestamp(o.now()),
		Results:   results,
		Insights:  aggregate.Insights(results),
	}
	o.emit(Progress{State: Done, Total: len(hits), Fetched: rep.FetchedCount()})
	logger.Info().Int("results", len(results)).Int("fetched", rep.FetchedCount()).Msg("run complete")
	return rep
}

func (o *Orchestrator) iterate(ctx context.Context, logger *zerolog.Logger, hits []search.Hit, req Request) []report.ResultEntry {
	fetcher := o.fetcher()
	extractor := o.extractor()
	pageAnalyzer := o.analyzer()

	pace := &pacer{delay: req.Delay}

	results := make([]report.ResultEntry, 0, len(hits))
	fetched := 0
	stopped := false
	for i, hit := range hits {
		entry := report.ResultEntry{Title: hit.Title, URL: hit.URL, Snippet: hit.Snippet}
		if !stopped && (o.stop.Load() || ctx.Err() != nil) {
			stopped = true
			logger.Info().Int("remaining", len(hits)-i).Msg("stop requested; recording remaining hits unfetched")
		}
		if stopped || fetched >= req.MaxFetch || hit.URL == "" {
			results = append(results, entry)
			continue
		}

		if pace.pending() {
			o.emit(Progress{State: RateLimitWait, Index: i + 1, Total: len(hits), URL: hit.URL, Fetched: fetched})
			if err := pace.wait(ctx); err != nil {
				stopped = true
				results = append(results, entry)
				continue
			}
		}
		o.emit(Progress{State: Fetching, Index: i + 1, Total: len(hits), URL: hit.URL, Fetched: fetched})

		page, ok := fetcher.Fetch(ctx, hit.URL)
		if !ok {
			pace.arm()
			logger.Debug().Str("url", hit.URL).Msg("hit not fetched")
			results = append(results, entry)
			continue
		}
		text := extractor.Text(page.Body, hit.URL)
		analysis := pageAnalyzer.Analyze(ctx, text, hit.URL, hit.Title)
		entry.Fetched = true
		entry.Status = page.Status
		entry.Analysis = &analysis
		fetched++
		pace.arm()
		logger.Debug().Str("url", hit.URL).Int("status", page.Status).Int("words", analysis.WordCount).Msg("page analyzed")
		results = append(results, entry)
	}
	return results
}

// pacer holds the wait between fetch attempts. Each attempt arms a fresh
// single-token limiter with its token already spent, so the next Wait blocks
// for the full delay measured from the moment the attempt finished.
type pacer struct {
	delay time.Duration
	gap   *rate.Limiter
}

func (p *pacer) arm() {
	if p.delay <= 0 {
		return
	}
	p.gap = rate.NewLimiter(rate.Every(p.delay), 1)
	p.gap.Allow()
}

func (p *pacer) pending() bool { return p.gap != nil }

func (p *pacer) wait(ctx context.Context) error {
	err := p.gap.Wait(ctx)
	p.gap = nil
	return err
}

func (o *Orchestrator) emit(p Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) fetcher() Fetcher {
	if o.Fetcher != nil {
		return o.Fetcher
	}
	ua := o.UserAgent
	if ua == "" {
		ua = fetch.DefaultUserAgent
	}
	return &fetch.Client{
		HTTPClient: o.HTTPClient,
		UserAgent:  ua,
		Timeout:    o.Timeout,
		Robots:     &robots.Gate{HTTPClient: o.HTTPClient, UserAgent: ua},
	}
}

func (o *Orchestrator) extractor() extract.Extractor {
	if o.Extractor != nil {
		return o.Extractor
	}
	return extract.ReadabilityExtractor{}
}

func (o *Orchestrator) analyzer() PageAnalyzer {
	if o.Analyzer != nil {
		return o.Analyzer
	}
	return &analyzer.Analyzer{}
}
