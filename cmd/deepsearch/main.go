package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/deepsearch/internal/app"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cliFlags mirrors the command line. Only flags the user actually passed are
// copied onto the merged Config, so flags beat env, which beats the file.
type cliFlags struct {
	maxResults     int
	maxFetch       int
	delay          float64
	save           string
	csv            string
	xlsx           string
	markdown       string
	pdf            string
	configPath     string
	envFile        string
	searchProvider string
	searxURL       string
	searxKey       string
	searchFile     string
	timeout        time.Duration
	userAgent      string
	ner            string
	sentiment      string
	language       bool
	llmBase        string
	llmModel       string
	llmKey         string
	verbose        bool
	version        bool
	noColor        bool
}

func newFlagSet(f *cliFlags, stderr io.Writer) *flag.FlagSet {
	def := app.DefaultConfig()
	fs := flag.NewFlagSet("deepsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: deepsearch [flags] [query]")
		fs.PrintDefaults()
	}
	fs.IntVar(&f.maxResults, "max-results", def.MaxResults, "Maximum search hits")
	fs.IntVar(&f.maxFetch, "max-fetch", def.MaxFetch, "Maximum pages to fetch successfully")
	fs.Float64Var(&f.delay, "delay", def.Delay.Seconds(), "Minimum seconds between fetch attempts")
	fs.StringVar(&f.save, "save", "", "Save the report as pretty JSON to this path")
	fs.StringVar(&f.csv, "csv", "", "Export the results table as CSV")
	fs.StringVar(&f.xlsx, "xlsx", "", "Export results and insights as an XLSX workbook")
	fs.StringVar(&f.markdown, "markdown", "", "Export a Markdown report")
	fs.StringVar(&f.pdf, "pdf", "", "Export a PDF report")
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&f.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	fs.StringVar(&f.searchProvider, "search.provider", def.SearchProvider, "Search provider: duckduckgo, searxng or file")
	fs.StringVar(&f.searxURL, "searx.url", "", "SearxNG base URL")
	fs.StringVar(&f.searxKey, "searx.key", "", "SearxNG API key (optional)")
	fs.StringVar(&f.searchFile, "search.file", "", "Path to JSON file for the offline file provider")
	fs.DurationVar(&f.timeout, "timeout", def.Timeout, "Per-request timeout for search, robots and page fetches")
	fs.StringVar(&f.userAgent, "user-agent", def.UserAgent, "User-Agent for outbound requests")
	fs.StringVar(&f.ner, "nlp.ner", def.NERMode, "Entity recognition: auto, llm, local or off")
	fs.StringVar(&f.sentiment, "nlp.sentiment", def.SentimentMode, "Sentiment scoring: auto, llm, local or off")
	fs.BoolVar(&f.language, "nlp.language", def.LanguageEnabled, "Detect page language")
	fs.StringVar(&f.llmBase, "llm.base", "", "OpenAI-compatible base URL for LLM analyses")
	fs.StringVar(&f.llmModel, "llm.model", "", "Model name; empty disables the LLM backend")
	fs.StringVar(&f.llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	return fs
}

func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet(&f, stderr)
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.version {
		fmt.Fprintln(stdout, app.VersionString())
		return 0
	}

	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: f.noColor})

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	cfg, err := buildConfig(f, set)
	if err != nil {
		log.Error().Err(err).Msg("configuration failed")
		return 1
	}
	if q := strings.TrimSpace(strings.Join(fs.Args(), " ")); q != "" {
		cfg.Query = q
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if cfg.NoColor {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: true})
	}

	if strings.TrimSpace(cfg.Query) == "" {
		q, ok := promptQuery(stdin, stdout)
		if !ok || q == "" {
			fmt.Fprintln(stdout, "No query provided. Exiting.")
			return 0
		}
		cfg.Query = q
	}

	if err := run(context.Background(), cfg, stdout); err != nil {
		log.Error().Err(err).Msg("run failed")
		return 1
	}
	return 0
}

// buildConfig layers defaults, the config file, the environment and finally
// the flags that were explicitly set.
func buildConfig(f cliFlags, set map[string]bool) (app.Config, error) {
	if err := app.LoadEnvFiles(f.envFile); err != nil {
		return app.Config{}, fmt.Errorf("load env file: %w", err)
	}
	cfg := app.DefaultConfig()
	if strings.TrimSpace(f.configPath) != "" {
		fc, err := app.LoadConfigFile(f.configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	if err := applyFlags(&cfg, f, set); err != nil {
		return app.Config{}, err
	}
	return cfg, app.ValidateConfig(cfg)
}

func applyFlags(cfg *app.Config, f cliFlags, set map[string]bool) error {
	if set["max-results"] {
		cfg.MaxResults = f.maxResults
	}
	if set["max-fetch"] {
		cfg.MaxFetch = f.maxFetch
	}
	if set["delay"] {
		if f.delay < 0 {
			return fmt.Errorf("--delay must not be negative, got %v", f.delay)
		}
		cfg.Delay = app.SecondsToDuration(f.delay)
	}
	if set["save"] {
		cfg.SavePath = f.save
	}
	if set["csv"] {
		cfg.CSVPath = f.csv
	}
	if set["xlsx"] {
		cfg.XLSXPath = f.xlsx
	}
	if set["markdown"] {
		cfg.MarkdownPath = f.markdown
	}
	if set["pdf"] {
		cfg.PDFPath = f.pdf
	}
	if set["search.provider"] {
		cfg.SearchProvider = f.searchProvider
	}
	if set["searx.url"] {
		cfg.SearxURL = f.searxURL
	}
	if set["searx.key"] {
		cfg.SearxKey = f.searxKey
	}
	if set["search.file"] {
		cfg.SearchFile = f.searchFile
	}
	if set["timeout"] {
		cfg.Timeout = f.timeout
	}
	if set["user-agent"] {
		cfg.UserAgent = f.userAgent
	}
	if set["nlp.ner"] {
		cfg.NERMode = f.ner
	}
	if set["nlp.sentiment"] {
		cfg.SentimentMode = f.sentiment
	}
	if set["nlp.language"] {
		cfg.LanguageEnabled = f.language
	}
	if set["llm.base"] {
		cfg.LLMBaseURL = f.llmBase
	}
	if set["llm.model"] {
		cfg.LLMModel = f.llmModel
	}
	if set["llm.key"] {
		cfg.LLMAPIKey = f.llmKey
	}
	if set["v"] {
		cfg.Verbose = f.verbose
	}
	if set["no-color"] {
		cfg.NoColor = f.noColor
	}
	return nil
}

// reorderArgs moves positional arguments behind the flags so flags may follow
// the query. Everything after "--" stays positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		fl := fs.Lookup(name)
		if fl == nil || isBoolFlag(fl) {
			continue
		}
		if i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

func isBoolFlag(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// promptQuery asks for a query on stdin. ok is false when input ended before
// a line was read.
func promptQuery(stdin io.Reader, stdout io.Writer) (string, bool) {
	fmt.Fprint(stdout, "Enter search query: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(stdout)
		return "", false
	}
	return strings.TrimSpace(line), true
}

func run(ctx context.Context, cfg app.Config, stdout io.Writer) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.Out = stdout

	_, err = a.Run(ctx)
	return err
}
