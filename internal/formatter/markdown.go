// Package formatter renders dataset summaries as aligned markdown tables for
// the terminal and for pasting into reports.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps separator rows valid markdown ("---").
const minColumnWidth = 3

// FormatMarkdown realigns every pipe table in content so that columns line up
// by display width. Other lines are left untouched.
func FormatMarkdown(content string) string {
	lines := strings.Split(content, "\n")

	var (
		out   []string
		table []string
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, line)
			continue
		}

		if len(table) > 0 {
			out = append(out, alignTable(table)...)
			table = nil
		}

		out = append(out, line)
	}

	if len(table) > 0 {
		out = append(out, alignTable(table)...)
	}

	return strings.Join(out, "\n")
}

// Table builds an aligned markdown table from a header and rows. Pipes inside
// cells are escaped.
func Table(header []string, rows [][]string) string {
	cells := make([][]string, 0, len(rows)+2)
	cells = append(cells, escapeCells(header), nil)

	for _, row := range rows {
		cells = append(cells, escapeCells(row))
	}

	return strings.Join(renderTable(cells, 1), "\n")
}

func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ReplaceAll(strings.TrimSpace(c), "|", `\|`)
	}

	return out
}

func alignTable(rows []string) []string {
	// A table needs at least a header and a separator.
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, splitRow(row))
	}

	sep := -1
	if isSeparator(cells[1]) {
		sep = 1
	}

	return renderTable(cells, sep)
}

// splitRow splits "| a | b |" into trimmed cells, honouring escaped pipes.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")

	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = row[:len(row)-1]
	}

	var (
		cells []string
		cell  strings.Builder
	)

	for i := 0; i < len(row); i++ {
		switch {
		case row[i] == '\\' && i+1 < len(row) && row[i+1] == '|':
			cell.WriteString(`\|`)
			i++
		case row[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(row[i])
		}
	}

	return append(cells, strings.TrimSpace(cell.String()))
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}

	return len(cells) > 0
}

// renderTable pads cells to the widest value per column. Row sep, if not -1,
// is drawn as dashes.
func renderTable(cells [][]string, sep int) []string {
	cols := 0
	for _, row := range cells {
		cols = max(cols, len(row))
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	for r, row := range cells {
		if r == sep {
			continue
		}

		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, 0, len(cells))

	for r, row := range cells {
		var sb strings.Builder

		sb.WriteString("|")

		for c := range cols {
			sb.WriteString(" ")

			if r == sep {
				sb.WriteString(strings.Repeat("-", widths[c]))
			} else {
				cell := ""
				if c < len(row) {
					cell = row[c]
				}

				sb.WriteString(runewidth.FillRight(cell, widths[c]))
			}

			sb.WriteString(" |")
		}

		out = append(out, sb.String())
	}

	return out
}
