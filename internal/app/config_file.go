package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/deepsearch/internal/credibility"
	"github.com/hyperifyio/deepsearch/internal/nlp"
)

// FileConfig represents the single-file configuration schema.
// Durations are float seconds so YAML and JSON read them the same way.
type FileConfig struct {
	Query      string  `yaml:"query" json:"query"`
	MaxResults int     `yaml:"maxResults" json:"maxResults"`
	MaxFetch   *int    `yaml:"maxFetch" json:"maxFetch"`
	Delay      float64 `yaml:"delay" json:"delay"`

	Save struct {
		JSON     string `yaml:"json" json:"json"`
		CSV      string `yaml:"csv" json:"csv"`
		XLSX     string `yaml:"xlsx" json:"xlsx"`
		Markdown string `yaml:"markdown" json:"markdown"`
		PDF      string `yaml:"pdf" json:"pdf"`
	} `yaml:"save" json:"save"`

	Search struct {
		Provider string `yaml:"provider" json:"provider"`
		File     string `yaml:"file" json:"file"`
	} `yaml:"search" json:"search"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
	} `yaml:"searx" json:"searx"`

	Fetch struct {
		Timeout   float64 `yaml:"timeout" json:"timeout"`
		UserAgent string  `yaml:"userAgent" json:"userAgent"`
	} `yaml:"fetch" json:"fetch"`

	NLP struct {
		NER       string `yaml:"ner" json:"ner"`
		Sentiment string `yaml:"sentiment" json:"sentiment"`
		Language  *bool  `yaml:"language" json:"language"`
	} `yaml:"nlp" json:"nlp"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Credibility struct {
		Domains []credibility.DomainRule `yaml:"domains" json:"domains"`
		Spam    []string                 `yaml:"spam" json:"spam"`
	} `yaml:"credibility" json:"credibility"`

	Verbose bool `yaml:"verbose" json:"verbose"`
	NoColor bool `yaml:"noColor" json:"noColor"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are still unset or at their default. Flags applied afterwards keep the
// highest precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()

	if cfg.Query == "" && fc.Query != "" { cfg.Query = fc.Query }
	if (cfg.MaxResults == 0 || cfg.MaxResults == def.MaxResults) && fc.MaxResults > 0 { cfg.MaxResults = fc.MaxResults }
	if (cfg.MaxFetch == 0 || cfg.MaxFetch == def.MaxFetch) && fc.MaxFetch != nil && *fc.MaxFetch >= 0 { cfg.MaxFetch = *fc.MaxFetch }
	if (cfg.Delay == 0 || cfg.Delay == def.Delay) && fc.Delay > 0 { cfg.Delay = SecondsToDuration(fc.Delay) }

	if cfg.SavePath == "" && fc.Save.JSON != "" { cfg.SavePath = fc.Save.JSON }
	if cfg.CSVPath == "" && fc.Save.CSV != "" { cfg.CSVPath = fc.Save.CSV }
	if cfg.XLSXPath == "" && fc.Save.XLSX != "" { cfg.XLSXPath = fc.Save.XLSX }
	if cfg.MarkdownPath == "" && fc.Save.Markdown != "" { cfg.MarkdownPath = fc.Save.Markdown }
	if cfg.PDFPath == "" && fc.Save.PDF != "" { cfg.PDFPath = fc.Save.PDF }

	if (cfg.SearchProvider == "" || cfg.SearchProvider == def.SearchProvider) && fc.Search.Provider != "" { cfg.SearchProvider = fc.Search.Provider }
	if cfg.SearchFile == "" && fc.Search.File != "" { cfg.SearchFile = fc.Search.File }
	if cfg.SearxURL == "" && fc.Searx.URL != "" { cfg.SearxURL = fc.Searx.URL }
	if cfg.SearxKey == "" && fc.Searx.Key != "" { cfg.SearxKey = fc.Searx.Key }

	if (cfg.Timeout == 0 || cfg.Timeout == def.Timeout) && fc.Fetch.Timeout > 0 { cfg.Timeout = SecondsToDuration(fc.Fetch.Timeout) }
	if (cfg.UserAgent == "" || cfg.UserAgent == def.UserAgent) && fc.Fetch.UserAgent != "" { cfg.UserAgent = fc.Fetch.UserAgent }

	if (cfg.NERMode == "" || cfg.NERMode == def.NERMode) && fc.NLP.NER != "" { cfg.NERMode = fc.NLP.NER }
	if (cfg.SentimentMode == "" || cfg.SentimentMode == def.SentimentMode) && fc.NLP.Sentiment != "" { cfg.SentimentMode = fc.NLP.Sentiment }
	if fc.NLP.Language != nil { cfg.LanguageEnabled = *fc.NLP.Language }

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
	if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }

	if cfg.CredibilityDomains == nil && fc.Credibility.Domains != nil { cfg.CredibilityDomains = append([]credibility.DomainRule{}, fc.Credibility.Domains...) }
	if cfg.CredibilitySpam == nil && fc.Credibility.Spam != nil { cfg.CredibilitySpam = append([]string{}, fc.Credibility.Spam...) }

	if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
	if !cfg.NoColor && fc.NoColor { cfg.NoColor = true }
}

// ValidateConfig rejects settings a run cannot start with. The query is not
// checked here because the CLI may still prompt for it.
func ValidateConfig(cfg Config) error {
	if cfg.MaxResults < 0 || cfg.MaxFetch < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Delay < 0 {
		return errors.New("config: delay must not be negative")
	}
	if cfg.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.SearchProvider)) {
	case ProviderDuckDuckGo, "":
	case ProviderSearxNG:
		if strings.TrimSpace(cfg.SearxURL) == "" {
			return errors.New("config: searx.url is required for the searxng provider (or set SEARX_URL)")
		}
	case ProviderFile:
		if strings.TrimSpace(cfg.SearchFile) == "" {
			return errors.New("config: search.file is required for the file provider")
		}
	default:
		return fmt.Errorf("config: unknown search provider %q (want duckduckgo, searxng or file)", cfg.SearchProvider)
	}
	if _, err := nlp.ParseMode(cfg.NERMode); err != nil {
		return fmt.Errorf("config: ner: %w", err)
	}
	if _, err := nlp.ParseMode(cfg.SentimentMode); err != nil {
		return fmt.Errorf("config: sentiment: %w", err)
	}
	for _, d := range cfg.CredibilityDomains {
		if d.Score < 0 || d.Score > 1 {
			return fmt.Errorf("config: credibility score for %q must be within [0, 1]", d.Match)
		}
	}
	return nil
}
