package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
	// Method is "readability" or "fallback", or empty when nothing was extracted.
	Method string
}

var errNoContent = errors.New("readability produced no text")

// FromHTML returns the page's main text. It prefers a readability extraction
// and falls back to the whole document with non-content tags removed when the
// primary path fails or yields nothing. It never panics.
func FromHTML(input []byte, sourceURL string) Document {
	title, text, err := mainContent(input, sourceURL)
	if err == nil {
		return Document{Title: title, Text: text, Method: "readability"}
	}
	log.Debug().Err(err).Str("url", sourceURL).Msg("readability failed; using fallback extraction")

	text = Fallback(input)
	if text == "" {
		return Document{Title: Title(input)}
	}
	return Document{Title: Title(input), Text: text, Method: "fallback"}
}

func mainContent(input []byte, sourceURL string) (title, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("readability panic: %v", r)
		}
	}()
	if len(bytes.TrimSpace(input)) == 0 {
		return "", "", errNoContent
	}
	pageURL, perr := url.Parse(strings.TrimSpace(sourceURL))
	if perr != nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(input), pageURL)
	if err != nil {
		return "", "", err
	}
	text = renderText(article.Content)
	if text == "" {
		text = normalizeWhitespace(article.TextContent)
	}
	if text == "" {
		return "", "", errNoContent
	}
	return strings.TrimSpace(article.Title), text, nil
}

// renderText converts a readability HTML fragment into text, keeping block
// boundaries as line breaks.
func renderText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil || node == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, node, false)
	return normalizeWhitespace(b.String())
}

var blankRun = regexp.MustCompile(`\n\s*\n+`)

// Fallback extracts all document text except script, style, noscript, meta and
// link content. Text nodes are joined by newlines and runs of blank lines are
// collapsed to a single empty line. Returns "" when the input cannot be parsed.
func Fallback(input []byte) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript", "meta", "link":
				return
			}
		}
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	text := strings.Join(parts, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Title returns the document <title>, or "".
func Title(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	head := findFirst(node, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		if isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "div", "section", "blockquote", "tr":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
			data = strings.ReplaceAll(data, "\n", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
			b.WriteString("\n\n")
		case "div", "section", "tr", "pre":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

// normalizeWhitespace collapses spaces within lines and keeps at most one
// blank line between paragraphs.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if len(out) == 0 || out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
