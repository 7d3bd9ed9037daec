package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/hyperifyio/deepsearch/internal/nlp"
)

// Footer records the run configuration at the end of Markdown and PDF exports.
type Footer struct {
	Provider     string
	MaxFetch     int
	Delay        string
	Capabilities nlp.Capabilities
}

// String renders a single deterministic line.
func (f Footer) String() string {
	var b strings.Builder
	b.WriteString("Reproducibility: provider=")
	b.WriteString(strings.TrimSpace(f.Provider))
	b.WriteString("; max_fetch=")
	b.WriteString(strconv.Itoa(f.MaxFetch))
	b.WriteString("; delay=")
	b.WriteString(strings.TrimSpace(f.Delay))
	b.WriteString("; ner=")
	b.WriteString(backendLabel(f.Capabilities.NER, f.Capabilities.NERBackend))
	b.WriteString("; sentiment=")
	b.WriteString(backendLabel(f.Capabilities.Sentiment, f.Capabilities.SentimentBackend))
	b.WriteString("; language=")
	b.WriteString(strconv.FormatBool(f.Capabilities.Language))
	return b.String()
}

func backendLabel(on bool, name string) string {
	if !on {
		return "off"
	}
	return name
}

// keyphrasesShown is how many phrases each result lists.
const keyphrasesShown = 5

// WriteMarkdown renders r as a Markdown document.
func WriteMarkdown(w io.Writer, r Report, footer Footer) error {
	md := markdown.NewMarkdown(w)

	md.H1("DeepSearch report: " + oneLine(r.Query))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", cell(r.Query)},
			{"Generated", r.Timestamp},
			{"Results", strconv.Itoa(len(r.Results))},
			{"Fetched", strconv.Itoa(r.FetchedCount())},
			{"Overall credibility", strconv.FormatFloat(r.Insights.OverallCredibility, 'f', -1, 64)},
		},
	})
	md.PlainText("")

	md.H2("Key topics")
	md.PlainText("")
	if len(r.Insights.KeyTopics) == 0 {
		md.PlainText("No key topics.")
	} else {
		items := make([]string, 0, len(r.Insights.KeyTopics))
		for _, p := range r.Insights.KeyTopics {
			items = append(items, fmt.Sprintf("%s (%d)", p.Phrase, p.Count))
		}
		md.BulletList(items...)
	}
	md.PlainText("")

	md.H2("Top sources")
	md.PlainText("")
	if len(r.Insights.TopSources) == 0 {
		md.PlainText("No sources above the credibility threshold.")
	} else {
		items := make([]string, 0, len(r.Insights.TopSources))
		for _, s := range r.Insights.TopSources {
			items = append(items, fmt.Sprintf("%s (%s)", link(s.Title, s.URL), strconv.FormatFloat(s.Credibility, 'f', -1, 64)))
		}
		md.BulletList(items...)
	}
	md.PlainText("")

	if len(r.Insights.LanguageDistribution) > 0 {
		md.H2("Languages")
		md.PlainText("")
		rows := make([][]string, 0, len(r.Insights.LanguageDistribution))
		for _, lang := range sortedKeys(r.Insights.LanguageDistribution) {
			rows = append(rows, []string{lang, strconv.Itoa(r.Insights.LanguageDistribution[lang])})
		}
		md.Table(markdown.TableSet{Header: []string{"Language", "Pages"}, Rows: rows})
		md.PlainText("")
	}

	md.H2("Results")
	md.PlainText("")
	if len(r.Results) == 0 {
		md.PlainText("The search returned no results.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(r.Results))
		for _, row := range Rows(r) {
			cols := row.Strings()
			for i := range cols {
				cols[i] = cell(cols[i])
			}
			rows = append(rows, cols)
		}
		md.Table(markdown.TableSet{Header: TableHeader, Rows: rows})
		md.PlainText("")
		for i, e := range r.Results {
			if e.Analysis == nil {
				continue
			}
			writeResultDetail(md, i+1, e)
		}
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(footer.String())
	return md.Build()
}

// SaveMarkdown writes the Markdown export to path.
func SaveMarkdown(path string, r Report, footer Footer) error {
	return writeFile(path, func(w io.Writer) error { return WriteMarkdown(w, r, footer) })
}

func writeResultDetail(md *markdown.Markdown, index int, e ResultEntry) {
	a := e.Analysis
	md.H3(fmt.Sprintf("[%d] %s", index, oneLine(orDefault(e.Title, "(no title)"))))
	md.PlainText("")
	items := []string{
		"URL: " + e.URL,
		fmt.Sprintf("Credibility: %s | Words: %d | Language: %s",
			strconv.FormatFloat(a.CredibilityScore, 'f', -1, 64), a.WordCount, a.Language),
	}
	if a.Sentiment != nil {
		items = append(items, fmt.Sprintf("Sentiment: %s (polarity: %s)",
			a.Sentiment.Label, strconv.FormatFloat(a.Sentiment.Polarity, 'f', -1, 64)))
	}
	if len(a.Keyphrases) > 0 {
		items = append(items, "Key phrases: "+strings.Join(phraseNames(a, keyphrasesShown), ", "))
	}
	for _, kind := range nlp.EntityKinds {
		if ents := a.NamedEntities[kind]; len(ents) > 0 {
			items = append(items, kind+": "+strings.Join(ents, ", "))
		}
	}
	md.BulletList(items...)
	md.PlainText("")
	if a.Summary != "" {
		md.PlainText("> " + oneLine(a.Summary))
		md.PlainText("")
	}
}

func phraseNames(a *PageAnalysis, n int) []string {
	out := make([]string, 0, n)
	for _, p := range a.Keyphrases {
		if len(out) == n {
			break
		}
		out = append(out, p.Phrase)
	}
	return out
}

func link(text, url string) string {
	text = strings.NewReplacer("[", "(", "]", ")").Replace(oneLine(orDefault(text, url)))
	return fmt.Sprintf("[%s](%s)", text, url)
}

// cell makes s safe inside a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
