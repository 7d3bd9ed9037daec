// Package patterns pulls contact details and links out of plain text.
package patterns

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\(\d{1,4}\)[-.\s]?|\d{1,4}[-.\s]?)\d{1,4}[-.\s]?\d{1,9}`)
	urlRe   = regexp.MustCompile(`https?://[^\s'"<>]+`)
)

// minPhoneDigits filters out years, prices and other short numbers the phone
// pattern also accepts.
const minPhoneDigits = 7

// Matches holds deduplicated, sorted matches. Slices are never nil.
type Matches struct {
	Emails []string
	Phones []string
	URLs   []string
}

// Extract scans text for email addresses, phone numbers and absolute http(s) URLs.
func Extract(text string) Matches {
	return Matches{
		Emails: Emails(text),
		Phones: Phones(text),
		URLs:   URLs(text),
	}
}

// Emails returns the distinct email addresses in text.
func Emails(text string) []string {
	return collect(emailRe.FindAllString(text, -1), nil)
}

// Phones returns the distinct phone-like numbers in text with at least seven digits.
func Phones(text string) []string {
	return collect(phoneRe.FindAllString(text, -1), func(s string) string {
		s = strings.TrimSpace(s)
		if countDigits(s) < minPhoneDigits {
			return ""
		}
		return s
	})
}

// URLs returns the distinct absolute URLs in text. Sentence punctuation
// directly after a link is not part of it.
func URLs(text string) []string {
	return collect(urlRe.FindAllString(text, -1), func(s string) string {
		s = strings.TrimRight(s, ".,;:!?)]}")
		if s == "http://" || s == "https://" {
			return ""
		}
		return s
	})
}

func collect(found []string, clean func(string) string) []string {
	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, s := range found {
		if clean != nil {
			s = clean(s)
		}
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
