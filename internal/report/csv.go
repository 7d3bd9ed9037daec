package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// TableHeader is the column set shared by the CSV, XLSX and Markdown exports.
var TableHeader = []string{"Index", "Title", "URL", "Credibility", "Words", "Sentiment", "Language"}

// Row is one ResultEntry flattened to the TableHeader columns.
type Row struct {
	Index       int
	Title       string
	URL         string
	Credibility float64
	Words       int
	Sentiment   string
	Language    string
}

// Rows flattens the results. Entries without an analysis report zero
// credibility and words, sentiment "N/A" and language "unknown".
func Rows(r Report) []Row {
	out := make([]Row, 0, len(r.Results))
	for i, e := range r.Results {
		row := Row{Index: i + 1, Title: e.Title, URL: e.URL, Sentiment: "N/A", Language: "unknown"}
		if a := e.Analysis; a != nil {
			row.Credibility = a.CredibilityScore
			row.Words = a.WordCount
			if a.Sentiment != nil {
				row.Sentiment = a.Sentiment.Label
			}
			if a.Language != "" {
				row.Language = a.Language
			}
		}
		out = append(out, row)
	}
	return out
}

// Strings renders the row in TableHeader order.
func (r Row) Strings() []string {
	return []string{
		strconv.Itoa(r.Index),
		r.Title,
		r.URL,
		strconv.FormatFloat(r.Credibility, 'f', -1, 64),
		strconv.Itoa(r.Words),
		r.Sentiment,
		r.Language,
	}
}

// WriteCSV writes a header line and one row per result entry.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(r) {
		if err := cw.Write(row.Strings()); err != nil {
			return fmt.Errorf("write csv row %d: %w", row.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the CSV export to path.
func SaveCSV(path string, r Report) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, r) })
}
