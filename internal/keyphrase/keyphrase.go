// Package keyphrase ranks content words by frequency.
package keyphrase

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultLimit is the number of phrases returned when n <= 0.
const DefaultLimit = 10

// minRunes is exclusive: tokens must be longer than this.
const minRunes = 3

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopwords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "from": {},
	"have": {}, "been": {}, "more": {}, "than": {},
}

// Phrase is one ranked token with its frequency.
type Phrase struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Extract returns the n most frequent tokens of text, highest count first.
// Ties keep the order in which the tokens first appeared.
func Extract(text string, n int) []Phrase {
	return rank(Tokens(text), n)
}

// Tokens returns the filtered, normalised tokens of text in order.
func Tokens(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	raw := tokenRe.FindAllString(text, -1)
	out := raw[:0]
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) <= minRunes {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Merge counts how many of the given lists name each phrase and returns the
// top n, with the same tie rule as Extract.
func Merge(lists [][]Phrase, n int) []Phrase {
	var all []string
	for _, list := range lists {
		for _, p := range list {
			all = append(all, p.Phrase)
		}
	}
	return rank(all, n)
}

func rank(tokens []string, n int) []Phrase {
	if n <= 0 {
		n = DefaultLimit
	}
	index := make(map[string]int, len(tokens))
	counted := make([]Phrase, 0, len(tokens))
	for _, tok := range tokens {
		if i, ok := index[tok]; ok {
			counted[i].Count++
			continue
		}
		index[tok] = len(counted)
		counted = append(counted, Phrase{Phrase: tok, Count: 1})
	}
	sort.SliceStable(counted, func(i, j int) bool { return counted[i].Count > counted[j].Count })
	if len(counted) > n {
		counted = counted[:n]
	}
	return counted
}
