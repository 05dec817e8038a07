package importer

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// parsePDF extracts the plain text of every readable page. A page that
// fails to decode is noted inline and skipped.
func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			fmt.Fprintf(&sb, "[page %d unreadable: %v]\n\n", i, err)
			continue
		}
		if text = cleanText(text); text != "" {
			fmt.Fprintf(&sb, "%s\n\n", text)
		}
	}
	return sb.String(), nil
}

// parseExcel renders every non-empty sheet as a Markdown table under a
// heading with the sheet name.
func parseExcel(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", sheet)
		sb.WriteString(rowsToMarkdown(rows))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// rowsToMarkdown renders rows as a Markdown table; the first row is the
// header. Short rows are padded and cell pipes escaped.
func rowsToMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		cells := make([]string, cols)
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.ReplaceAll(strings.ReplaceAll(row[j], "|", "\\|"), "\n", " ")
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return sb.String()
}
