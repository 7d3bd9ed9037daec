package nlp

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// minLanguageConfidence is the whatlanggo confidence below which detection
// is reported as Unknown.
const minLanguageConfidence = 0.5

// DetectLanguage returns the ISO 639-1 base tag of the text's language, or
// Unknown for empty text and unreliable or failed detection.
func DetectLanguage(text string) (tag string) {
	defer func() {
		if r := recover(); r != nil {
			tag = Unknown
		}
	}()
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	info := whatlanggo.Detect(text)
	if info.Confidence < minLanguageConfidence {
		return Unknown
	}
	code := info.Lang.Iso6391()
	if code == "" {
		code = info.Lang.Iso6393()
	}
	return Canonical(code)
}

// Canonical normalises a language code to its BCP 47 base, e.g. "eng" and
// "en-US" become "en". Unparsable codes yield Unknown.
func Canonical(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return Unknown
	}
	t, err := language.Parse(code)
	if err != nil {
		return Unknown
	}
	base, conf := t.Base()
	if conf == language.No {
		return Unknown
	}
	return base.String()
}
