package keyphrase

import (
	"reflect"
	"testing"
)

func TestExtract_RanksByCountThenFirstSeen(t *testing.T) {
	t.Parallel()
	text := "Gopher tools love gopher code. Tools that build code: tools, code, gopher!"
	got := Extract(text, 3)
	want := []Phrase{{"gopher", 3}, {"tools", 3}, {"code", 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestExtract_FiltersShortTokensAndStopwords(t *testing.T) {
	t.Parallel()
	got := Extract("This is that and the with from have been more than", 10)
	if len(got) != 0 {
		t.Fatalf("expected nothing to survive filtering, got %v", got)
	}
}

func TestExtract_DefaultLimit(t *testing.T) {
	t.Parallel()
	text := "alpha bravo charlie delta echoes foxtrot golf hotel india juliet kilo lima"
	got := Extract(text, 0)
	if len(got) != DefaultLimit {
		t.Fatalf("expected %d phrases, got %d", DefaultLimit, len(got))
	}
	if got[0].Phrase != "alpha" || got[DefaultLimit-1].Phrase != "juliet" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()
	text := "Search engines index pages. Pages link pages. Engines rank pages and index links."
	a := Extract(text, 5)
	b := Extract(text, 5)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("non-deterministic output: %v vs %v", a, b)
	}
}

func TestTokens_NormalisesUnicode(t *testing.T) {
	t.Parallel()
	// "café" written with a combining accent and precomposed must count as one token.
	got := Extract("cafe\u0301 Caf\u00e9 CAF\u00c9", 5)
	want := []Phrase{{"caf\u00e9", 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMerge_CountsListsNamingPhrase(t *testing.T) {
	t.Parallel()
	lists := [][]Phrase{
		{{"golang", 9}, {"search", 2}},
		{{"search", 4}, {"index", 1}},
		{{"search", 1}},
	}
	got := Merge(lists, 10)
	want := []Phrase{{"search", 3}, {"golang", 1}, {"index", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
