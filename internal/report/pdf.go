package report

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var mdLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// WritePDF renders the Markdown export as a simple PDF: headings get a
// larger bold font, tables are set in a monospace font and Markdown links
// become clickable. It does not attempt full Markdown layout.
func WritePDF(w io.Writer, r Report, footer Footer) error {
	var md bytes.Buffer
	if err := WriteMarkdown(&md, r, footer); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(&md)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(4)
		case strings.HasPrefix(s, "#"):
			level := 0
			for level < len(s) && s[level] == '#' {
				level++
			}
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 16.0
			switch {
			case level == 2:
				size = 13
			case level > 2:
				size = 11.5
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 7, tr(text), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		case isTableSeparator(s) || s == "---" || s == "***":
			continue
		case strings.HasPrefix(s, "|"):
			pdf.SetFont("Courier", "", 8)
			pdf.MultiCell(0, 4, tr(s), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		default:
			if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "* ") {
				s = "• " + s[2:]
			}
			writeLinkedLine(pdf, tr, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// SavePDF writes the PDF export to path.
func SavePDF(path string, r Report, footer Footer) error {
	return writeFile(path, func(w io.Writer) error { return WritePDF(w, r, footer) })
}

func writeLinkedLine(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
	parts := mdLinkRe.FindAllStringSubmatchIndex(s, -1)
	if len(parts) == 0 {
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
		return
	}
	pos := 0
	for _, m := range parts {
		// m: [fullStart, fullEnd, textStart, textEnd, urlStart, urlEnd]
		if m[0] > pos {
			pdf.Write(5, tr(s[pos:m[0]]))
		}
		pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
		pos = m[1]
	}
	if pos < len(s) {
		pdf.Write(5, tr(s[pos:]))
	}
	pdf.Ln(6)
}

func isTableSeparator(s string) bool {
	if !strings.HasPrefix(s, "|") {
		return false
	}
	return strings.Trim(s, "|-: ") == ""
}
