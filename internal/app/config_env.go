package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.SearchProvider, "DEEPSEARCH_SEARCH_PROVIDER")
	// Support both SEARX_URL and SEARXNG_URL; prefer SEARX_URL if set
	setString(&cfg.SearxURL, "SEARX_URL", "SEARXNG_URL")
	setString(&cfg.SearxKey, "SEARX_KEY", "SEARXNG_KEY")
	setString(&cfg.SearchFile, "DEEPSEARCH_SEARCH_FILE", "SEARCH_FILE")
	setString(&cfg.UserAgent, "DEEPSEARCH_USER_AGENT")
	setString(&cfg.NERMode, "DEEPSEARCH_NER")
	setString(&cfg.SentimentMode, "DEEPSEARCH_SENTIMENT")
	setString(&cfg.SavePath, "DEEPSEARCH_SAVE")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")

	if cfg.MaxResults == 0 {
		if n, ok := envInt("DEEPSEARCH_MAX_RESULTS"); ok {
			cfg.MaxResults = n
		}
	}
	if cfg.MaxFetch == 0 {
		if n, ok := envInt("DEEPSEARCH_MAX_FETCH"); ok {
			cfg.MaxFetch = n
		}
	}
	if cfg.Delay == 0 {
		if d, ok := envSeconds("DEEPSEARCH_DELAY"); ok {
			cfg.Delay = d
		}
	}
	if cfg.Timeout == 0 {
		if d, ok := envDuration("DEEPSEARCH_TIMEOUT"); ok {
			cfg.Timeout = d
		}
	}

	// Booleans
	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			if s == "1" || s == "true" || s == "yes" || s == "on" {
				*dst = true
			}
		}
	}
	setBool(&cfg.LanguageEnabled, "DEEPSEARCH_LANGUAGE")
	setBool(&cfg.Verbose, "VERBOSE")
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This is used to let env take
// precedence over values coming from a config file while still allowing flags
// to remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("DEEPSEARCH_SEARCH_PROVIDER"); v != "" { cfg.SearchProvider = v }
	if v := os.Getenv("SEARX_URL"); v != "" { cfg.SearxURL = v }
	if v := os.Getenv("SEARXNG_URL"); v != "" && os.Getenv("SEARX_URL") == "" { cfg.SearxURL = v }
	if v := os.Getenv("SEARX_KEY"); v != "" { cfg.SearxKey = v }
	if v := os.Getenv("DEEPSEARCH_SEARCH_FILE"); v != "" { cfg.SearchFile = v }
	if v := os.Getenv("DEEPSEARCH_USER_AGENT"); v != "" { cfg.UserAgent = v }
	if v := os.Getenv("DEEPSEARCH_NER"); v != "" { cfg.NERMode = v }
	if v := os.Getenv("DEEPSEARCH_SENTIMENT"); v != "" { cfg.SentimentMode = v }
	if v := os.Getenv("DEEPSEARCH_SAVE"); v != "" { cfg.SavePath = v }

	if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
	if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
	if v := os.Getenv("LLM_API_KEY"); v != "" { cfg.LLMAPIKey = v }

	if n, ok := envInt("DEEPSEARCH_MAX_RESULTS"); ok { cfg.MaxResults = n }
	if n, ok := envInt("DEEPSEARCH_MAX_FETCH"); ok { cfg.MaxFetch = n }
	if d, ok := envSeconds("DEEPSEARCH_DELAY"); ok { cfg.Delay = d }
	if d, ok := envDuration("DEEPSEARCH_TIMEOUT"); ok { cfg.Timeout = d }

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.LanguageEnabled, "DEEPSEARCH_LANGUAGE")
	setBool(&cfg.Verbose, "VERBOSE")
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// envSeconds reads a float number of seconds, the unit of --delay.
func envSeconds(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	return ParseSeconds(s)
}

// envDuration accepts Go durations ("15s") and bare seconds ("15").
func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return ParseSeconds(s)
}

// ParseSeconds converts a non-negative float number of seconds to a Duration.
func ParseSeconds(s string) (time.Duration, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return SecondsToDuration(f), true
}

// SecondsToDuration converts float seconds to a Duration, rounding to the
// nearest millisecond.
func SecondsToDuration(f float64) time.Duration {
	return time.Duration(f*1000+0.5) * time.Millisecond
}
