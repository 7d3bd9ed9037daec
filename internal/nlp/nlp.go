// Package nlp provides the optional language analyses of a page: named
// entities, sentiment and language. Backend availability is resolved once by
// Probe into a Context; every later call branches on that result and a failing
// backend only degrades the field it produces.
package nlp

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/deepsearch/internal/llm"
)

// Mode selects a backend for one capability.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeLLM   Mode = "llm"
	ModeLocal Mode = "local"
	ModeOff   Mode = "off"
)

// ParseMode accepts the textual modes; empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeLLM, ModeLocal, ModeOff:
		return m, nil
	default:
		return "", fmt.Errorf("unknown nlp mode %q (want auto, llm, local or off)", s)
	}
}

const (
	// MaxEntityChars bounds the text handed to entity recognition.
	MaxEntityChars = 50000
	// MaxSentimentChars bounds the text handed to sentiment scoring.
	MaxSentimentChars = 1000
	// MaxEntitiesPerKind caps each entity list.
	MaxEntitiesPerKind = 5

	probeTimeout = 5 * time.Second
	// Unknown is the language reported when detection is unavailable or fails.
	Unknown = "unknown"
)

// EntityKinds are the entity labels kept, in output order.
var EntityKinds = []string{"PERSON", "ORG", "GPE", "PRODUCT"}

// Sentiment is the scored tone of a text.
type Sentiment struct {
	Label        string  `json:"label"`
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// EntityRecognizer finds named entities. The returned map is keyed by label.
type EntityRecognizer interface {
	Entities(ctx context.Context, text string) (map[string][]string, error)
	Name() string
}

// SentimentScorer returns polarity in [-1, 1] and subjectivity in [0, 1].
type SentimentScorer interface {
	Score(ctx context.Context, text string) (polarity, subjectivity float64, err error)
	Name() string
}

// Capabilities records which analyses are active and which backend serves them.
type Capabilities struct {
	NER              bool   `json:"ner"`
	Sentiment        bool   `json:"sentiment"`
	Language         bool   `json:"language"`
	NERBackend       string `json:"ner_backend,omitempty"`
	SentimentBackend string `json:"sentiment_backend,omitempty"`
}

// Options configure Probe.
type Options struct {
	NER       Mode
	Sentiment Mode
	// Language enables language detection.
	Language bool
	// Client and Model configure the LLM backend. Client may also implement
	// llm.ModelLister, in which case the probe lists models first.
	Client llm.Client
	Model  string
}

// Context owns the resolved backends. A nil *Context disables every analysis
// except that Language still reports Unknown.
type Context struct {
	caps      Capabilities
	ner       EntityRecognizer
	sentiment SentimentScorer
}

// New builds a Context from explicit backends; nil disables a capability.
func New(ner EntityRecognizer, sentiment SentimentScorer, language bool) *Context {
	c := &Context{ner: ner, sentiment: sentiment}
	c.caps.Language = language
	if ner != nil {
		c.caps.NER = true
		c.caps.NERBackend = ner.Name()
	}
	if sentiment != nil {
		c.caps.Sentiment = true
		c.caps.SentimentBackend = sentiment.Name()
	}
	return c
}

// Probe resolves every capability once. The LLM endpoint is contacted only
// when a capability could use it.
func Probe(ctx context.Context, opts Options) *Context {
	ner, sent := opts.NER, opts.Sentiment
	if ner == "" {
		ner = ModeAuto
	}
	if sent == "" {
		sent = ModeAuto
	}

	var chat *LLMBackend
	if wantsLLM(ner) || wantsLLM(sent) {
		if probeLLM(ctx, opts.Client, opts.Model) {
			chat = &LLMBackend{Client: opts.Client, Model: opts.Model}
		} else if ner == ModeLLM || sent == ModeLLM {
			log.Warn().Str("model", opts.Model).Msg("LLM backend unavailable; llm-only analyses disabled")
		}
	}

	var recognizer EntityRecognizer
	switch {
	case ner == ModeOff:
	case chat != nil && ner != ModeLocal:
		recognizer = chat
	case ner == ModeLocal || ner == ModeAuto:
		recognizer = ProseRecognizer{}
	}

	var scorer SentimentScorer
	switch {
	case sent == ModeOff:
	case chat != nil && sent != ModeLocal:
		scorer = chat
	case sent == ModeLocal || sent == ModeAuto:
		scorer = Lexicon{}
	}

	c := New(recognizer, scorer, opts.Language)
	log.Debug().
		Bool("ner", c.caps.NER).Str("ner_backend", c.caps.NERBackend).
		Bool("sentiment", c.caps.Sentiment).Str("sentiment_backend", c.caps.SentimentBackend).
		Bool("language", c.caps.Language).
		Msg("nlp capabilities")
	return c
}

func wantsLLM(m Mode) bool { return m == ModeLLM || m == ModeAuto }

func probeLLM(ctx context.Context, client llm.Client, model string) bool {
	if client == nil || strings.TrimSpace(model) == "" {
		return false
	}
	lister, ok := client.(llm.ModelLister)
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed")
		return false
	}
	for _, m := range models.Models {
		if m.ID == model {
			return true
		}
	}
	if len(models.Models) > 0 {
		log.Warn().Str("model", model).Int("count", len(models.Models)).Msg("configured model not listed; trying it anyway")
	}
	return true
}

// Capabilities returns the resolved capability set.
func (c *Context) Capabilities() Capabilities {
	if c == nil {
		return Capabilities{}
	}
	return c.caps
}

// Entities returns up to MaxEntitiesPerKind distinct entities per kind, in
// first-seen order, considering only the first MaxEntityChars characters.
// Kinds without entities are absent. The result is nil when NER is disabled
// or the backend fails.
func (c *Context) Entities(ctx context.Context, text string) (out map[string][]string) {
	if c == nil || c.ner == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Str("backend", c.ner.Name()).Msg("entity recognition panicked")
			out = nil
		}
	}()
	found, err := c.ner.Entities(ctx, truncateRunes(text, MaxEntityChars))
	if err != nil {
		log.Debug().Err(err).Str("backend", c.ner.Name()).Msg("entity recognition failed")
		return nil
	}
	out = make(map[string][]string)
	for _, kind := range EntityKinds {
		var list []string
		seen := make(map[string]struct{})
		for _, e := range found[kind] {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			list = append(list, e)
			if len(list) == MaxEntitiesPerKind {
				break
			}
		}
		if len(list) > 0 {
			out[kind] = list
		}
	}
	return out
}

// Sentiment scores the first MaxSentimentChars characters of text. It returns
// nil when sentiment is disabled or the backend fails.
func (c *Context) Sentiment(ctx context.Context, text string) (out *Sentiment) {
	if c == nil || c.sentiment == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Str("backend", c.sentiment.Name()).Msg("sentiment scoring panicked")
			out = nil
		}
	}()
	polarity, subjectivity, err := c.sentiment.Score(ctx, truncateRunes(text, MaxSentimentChars))
	if err != nil {
		log.Debug().Err(err).Str("backend", c.sentiment.Name()).Msg("sentiment scoring failed")
		return nil
	}
	if math.IsNaN(polarity) || math.IsNaN(subjectivity) {
		return nil
	}
	polarity = round3(clamp(polarity, -1, 1))
	subjectivity = round3(clamp(subjectivity, 0, 1))
	return &Sentiment{Label: Label(polarity), Polarity: polarity, Subjectivity: subjectivity}
}

// Language detects the language of text, or returns Unknown.
func (c *Context) Language(text string) string {
	if c == nil || !c.caps.Language {
		return Unknown
	}
	return DetectLanguage(text)
}

// Label maps polarity to Positive, Negative or Neutral.
func Label(polarity float64) string {
	switch {
	case polarity > 0.1:
		return "Positive"
	case polarity < -0.1:
		return "Negative"
	default:
		return "Neutral"
	}
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
