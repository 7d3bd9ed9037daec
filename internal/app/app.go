package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/deepsearch/internal/analyzer"
	"github.com/hyperifyio/deepsearch/internal/credibility"
	"github.com/hyperifyio/deepsearch/internal/llm"
	"github.com/hyperifyio/deepsearch/internal/nlp"
	"github.com/hyperifyio/deepsearch/internal/orchestrator"
	"github.com/hyperifyio/deepsearch/internal/report"
	"github.com/hyperifyio/deepsearch/internal/search"
)

// ErrNoQuery is returned by Run when the configured query is blank.
var ErrNoQuery = errors.New("no query provided")

// App wires one configured pipeline. It can run several queries, one at a time.
type App struct {
	cfg    Config
	nlp    *nlp.Context
	search search.Provider
	runner *orchestrator.Runner
	// clients are closed by Close.
	clients []*http.Client

	// Out receives the console summary and export notices. Nil means stdout.
	Out io.Writer
	// Interrupts delivers stop requests. Nil means SIGINT.
	Interrupts <-chan os.Signal
}

// New validates cfg, builds the search provider and probes the NLP backends
// once. An unreachable LLM endpoint is not an error; affected analyses fall
// back to local backends or are disabled.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	httpClient := newHTTPClient(cfg.Timeout)

	provider, err := NewProvider(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	nerMode, _ := nlp.ParseMode(cfg.NERMode)
	sentMode, _ := nlp.ParseMode(cfg.SentimentMode)
	opts := nlp.Options{NER: nerMode, Sentiment: sentMode, Language: cfg.LanguageEnabled, Model: cfg.LLMModel}
	clients := []*http.Client{httpClient}
	if strings.TrimSpace(cfg.LLMModel) != "" {
		llmClient := newLLMHTTPClient(cfg.Timeout)
		clients = append(clients, llmClient)
		opts.Client = llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, llmClient)
	}
	nlpCtx := nlp.Probe(ctx, opts)
	caps := nlpCtx.Capabilities()
	log.Info().
		Str("provider", provider.Name()).
		Bool("ner", caps.NER).
		Bool("sentiment", caps.Sentiment).
		Bool("language", caps.Language).
		Msg("deepsearch ready")

	scorer := credibility.New(cfg.CredibilityDomains, cfg.CredibilitySpam)
	orch := &orchestrator.Orchestrator{
		Provider:   provider,
		Analyzer:   analyzer.New(scorer, nlpCtx),
		HTTPClient: httpClient,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		OnProgress: logProgress,
	}
	return &App{
		cfg:     cfg,
		nlp:     nlpCtx,
		search:  provider,
		runner:  &orchestrator.Runner{Orchestrator: orch},
		clients: clients,
	}, nil
}

// NewProvider builds the search provider named by cfg.SearchProvider. An
// empty name selects DuckDuckGo.
func NewProvider(cfg Config, httpClient *http.Client) (search.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.SearchProvider)) {
	case ProviderSearxNG:
		return &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: httpClient, UserAgent: cfg.UserAgent}, nil
	case ProviderFile:
		return &search.FileProvider{Path: cfg.SearchFile}, nil
	case ProviderDuckDuckGo, "":
		return &search.DuckDuckGo{HTTPClient: httpClient, UserAgent: cfg.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
	}
}

// Close drops idle keep-alive connections held by the App's HTTP clients.
func (a *App) Close() {
	for _, c := range a.clients {
		c.CloseIdleConnections()
	}
}

// Capabilities reports the NLP backends resolved at startup.
func (a *App) Capabilities() nlp.Capabilities { return a.nlp.Capabilities() }

// Run executes the configured query, prints the summary and writes every
// configured export. An interrupt stops the run between hits and the partial
// Report is still printed and exported; a second interrupt cancels ctx for
// in-flight requests. Export failures are returned after all exports were tried.
func (a *App) Run(ctx context.Context) (report.Report, error) {
	query := strings.TrimSpace(a.cfg.Query)
	if query == "" {
		return report.Report{}, ErrNoQuery
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := orchestrator.Request{
		Query:      query,
		MaxResults: a.cfg.MaxResults,
		MaxFetch:   a.cfg.MaxFetch,
		Delay:      a.cfg.Delay,
	}
	if err := a.runner.Start(ctx, req); err != nil {
		return report.Report{}, fmt.Errorf("start run: %w", err)
	}
	stopWatch := a.watchInterrupts(cancel)
	rep, _ := a.runner.Wait()
	stopWatch()

	out := a.out()
	if err := printSummary(out, rep, a.cfg.NoColor); err != nil {
		log.Warn().Err(err).Msg("print summary failed")
	}
	return rep, a.export(out, rep)
}

func (a *App) watchInterrupts(cancel context.CancelFunc) func() {
	sigs := a.Interrupts
	var owned chan os.Signal
	if sigs == nil {
		owned = make(chan os.Signal, 2)
		signal.Notify(owned, os.Interrupt)
		sigs = owned
	}
	done := make(chan struct{})
	go func() {
		stopped := false
		for {
			select {
			case <-done:
				return
			case <-sigs:
				if stopped {
					log.Warn().Msg("second interrupt; cancelling requests")
					cancel()
					continue
				}
				stopped = true
				log.Warn().Msg("interrupt received; stopping after the current page")
				a.runner.Stop()
			}
		}
	}()
	return func() {
		close(done)
		if owned != nil {
			signal.Stop(owned)
		}
	}
}

func (a *App) export(out io.Writer, rep report.Report) error {
	footer := report.Footer{
		Provider:     a.search.Name(),
		MaxFetch:     a.cfg.MaxFetch,
		Delay:        formatDelay(a.cfg.Delay) + "s",
		Capabilities: a.nlp.Capabilities(),
	}
	exports := []struct {
		kind string
		path string
		save func(string) error
	}{
		{"JSON", a.cfg.SavePath, func(p string) error { return report.SaveJSON(p, rep) }},
		{"CSV", a.cfg.CSVPath, func(p string) error { return report.SaveCSV(p, rep) }},
		{"XLSX", a.cfg.XLSXPath, func(p string) error { return report.SaveXLSX(p, rep) }},
		{"Markdown", a.cfg.MarkdownPath, func(p string) error { return report.SaveMarkdown(p, rep, footer) }},
		{"PDF", a.cfg.PDFPath, func(p string) error { return report.SavePDF(p, rep, footer) }},
	}
	var errs []error
	for _, e := range exports {
		if strings.TrimSpace(e.path) == "" {
			continue
		}
		if err := e.save(e.path); err != nil {
			log.Error().Err(err).Str("path", e.path).Msg("export failed")
			errs = append(errs, fmt.Errorf("save %s: %w", strings.ToLower(e.kind), err))
			continue
		}
		fmt.Fprintf(out, "Saved %s to %s\n", e.kind, e.path)
	}
	return errors.Join(errs...)
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func logProgress(p orchestrator.Progress) {
	ev := log.Debug().Str("state", p.State.String())
	if p.Total > 0 {
		ev = ev.Int("index", p.Index).Int("total", p.Total)
	}
	if p.URL != "" {
		ev = ev.Str("url", p.URL)
	}
	ev.Int("fetched", p.Fetched).Msg("progress")
}

// formatDelay prints a delay the way --delay accepts it.
func formatDelay(d time.Duration) string {
	return formatFloat(d.Seconds())
}
