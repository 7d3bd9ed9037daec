package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet  = "Results"
	insightsSheet = "Insights"
)

// WriteXLSX writes a workbook with a Results sheet (the TableHeader columns)
// and an Insights sheet.
func WriteXLSX(w io.Writer, r Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(TableHeader))
	for i, h := range TableHeader {
		header[i] = h
	}
	if err := setRow(f, resultsSheet, 1, header); err != nil {
		return err
	}
	for i, row := range Rows(r) {
		values := []any{row.Index, row.Title, row.URL, row.Credibility, row.Words, row.Sentiment, row.Language}
		if err := setRow(f, resultsSheet, i+2, values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(insightsSheet); err != nil {
		return fmt.Errorf("create insights sheet: %w", err)
	}
	lines := [][]any{
		{"Query", r.Query},
		{"Timestamp", r.Timestamp},
		{"Overall credibility", r.Insights.OverallCredibility},
		{"Top sources", len(r.Insights.TopSources)},
		{},
		{"Key topic", "Count"},
	}
	for _, p := range r.Insights.KeyTopics {
		lines = append(lines, []any{p.Phrase, p.Count})
	}
	lines = append(lines, []any{}, []any{"Language", "Count"})
	for _, lang := range sortedKeys(r.Insights.LanguageDistribution) {
		lines = append(lines, []any{lang, r.Insights.LanguageDistribution[lang]})
	}
	for i, values := range lines {
		if err := setRow(f, insightsSheet, i+1, values); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, r Report) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, r) })
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
