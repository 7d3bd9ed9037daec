package extract

// Extractor converts raw HTML into plain text. Implementations must not panic
// and return "" when nothing can be extracted.
type Extractor interface {
	Text(input []byte, sourceURL string) string
}

// ReadabilityExtractor prefers readability main-content extraction and falls
// back to whole-document text.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Text(input []byte, sourceURL string) string {
	return FromHTML(input, sourceURL).Text
}

// FallbackExtractor always uses the whole-document path. Useful for pages
// where readability discards too much.
type FallbackExtractor struct{}

func (FallbackExtractor) Text(input []byte, _ string) string {
	return Fallback(input)
}
