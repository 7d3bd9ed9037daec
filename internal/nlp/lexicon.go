package nlp

import (
	"context"
	"regexp"
	"strings"
)

// Lexicon scores sentiment from a small built-in word list. Each known word
// carries a polarity and subjectivity; a preceding negation flips and damps
// polarity, a preceding intensifier scales it. The text's score is the mean
// over known words, or zero when none occur.
type Lexicon struct{}

func (Lexicon) Name() string { return "lexicon" }

type lexEntry struct {
	polarity     float64
	subjectivity float64
}

var lexiconWords = map[string]lexEntry{
	"good": {0.7, 0.6}, "great": {0.8, 0.75}, "excellent": {1.0, 1.0}, "best": {1.0, 0.3},
	"better": {0.5, 0.5}, "amazing": {0.6, 0.9}, "awesome": {1.0, 1.0}, "wonderful": {1.0, 1.0},
	"love": {0.5, 0.6}, "like": {0.2, 0.3}, "happy": {0.8, 1.0}, "nice": {0.6, 1.0},
	"free": {0.4, 0.8}, "useful": {0.3, 0.0}, "helpful": {0.5, 0.5}, "reliable": {0.5, 0.5},
	"accurate": {0.4, 0.6}, "clear": {0.1, 0.4}, "easy": {0.43, 0.83}, "fast": {0.2, 0.6},
	"success": {0.3, 0.0}, "successful": {0.75, 0.95}, "important": {0.4, 1.0}, "popular": {0.6, 0.8},
	"beautiful": {0.85, 1.0}, "fantastic": {0.4, 0.9}, "perfect": {1.0, 1.0}, "positive": {0.23, 0.55},
	"safe": {0.5, 0.5}, "strong": {0.43, 0.73}, "trusted": {0.5, 0.5}, "win": {0.8, 0.4},
	"bad": {-0.7, 0.67}, "worse": {-0.4, 0.6}, "worst": {-1.0, 1.0}, "terrible": {-1.0, 1.0},
	"awful": {-1.0, 1.0}, "horrible": {-1.0, 1.0}, "poor": {-0.4, 0.6}, "hate": {-0.8, 0.9},
	"sad": {-0.5, 1.0}, "angry": {-0.5, 1.0}, "wrong": {-0.5, 0.9}, "fail": {-0.5, 0.3},
	"failed": {-0.5, 0.3}, "failure": {-0.32, 0.3}, "problem": {-0.2, 0.4}, "difficult": {-0.5, 1.0},
	"hard": {-0.29, 0.54}, "slow": {-0.3, 0.39}, "dangerous": {-0.6, 0.9}, "broken": {-0.4, 0.4},
	"fake": {-0.5, 1.0}, "scam": {-0.8, 0.8}, "false": {-0.35, 0.65}, "negative": {-0.3, 0.4},
	"crisis": {-0.5, 0.6}, "risk": {-0.2, 0.4}, "ugly": {-0.7, 1.0}, "boring": {-1.0, 1.0},
	"weak": {-0.38, 0.63}, "lose": {-0.4, 0.4}, "loss": {-0.4, 0.4}, "war": {-0.4, 0.3},
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {}, "neither": {}, "nor": {},
	"isn't": {}, "aren't": {}, "wasn't": {}, "weren't": {}, "don't": {}, "doesn't": {}, "didn't": {},
	"can't": {}, "cannot": {}, "won't": {}, "shouldn't": {}, "wouldn't": {},
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "incredibly": 1.5, "so": 1.2, "too": 1.2,
	"quite": 1.1, "highly": 1.3, "absolutely": 1.5, "slightly": 0.5, "somewhat": 0.7,
}

const negationFactor = -0.5

var lexTokenRe = regexp.MustCompile(`[\p{L}']+`)

// Score implements SentimentScorer.
func (Lexicon) Score(_ context.Context, text string) (float64, float64, error) {
	tokens := lexTokenRe.FindAllString(strings.ToLower(text), -1)
	var polSum, subSum float64
	var n int
	for i, tok := range tokens {
		e, ok := lexiconWords[tok]
		if !ok {
			continue
		}
		pol, sub := e.polarity, e.subjectivity
		// Look back over at most two modifiers: "not very good".
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			prev := tokens[j]
			if f, ok := intensifiers[prev]; ok {
				pol *= f
				sub *= f
				continue
			}
			if _, ok := negations[prev]; ok {
				pol *= negationFactor
			}
			break
		}
		polSum += clamp(pol, -1, 1)
		subSum += clamp(sub, 0, 1)
		n++
	}
	if n == 0 {
		return 0, 0, nil
	}
	return polSum / float64(n), subSum / float64(n), nil
}
