package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table is a grid of text cells with an optional header row. Cells may
// contain newlines; a row is as tall as its tallest cell.
type Table struct {
	Header []string
	Rows   [][]string
}

// layout holds the computed geometry of a table, separated from rendering.
type layout struct {
	cols       int
	colWidths  []int        // content width for each column
	rowHeights []int        // display line count for each row, header first
	lines      [][][]string // lines[row][col] = cell text split by newlines
	header     bool
}

// Render renders the table as an ASCII grid.
func (t *Table) Render() string {
	l := t.buildLayout()
	return l.render()
}

func (t *Table) buildLayout() *layout {
	l := &layout{header: len(t.Header) > 0}

	rows := t.Rows
	if l.header {
		rows = append([][]string{t.Header}, rows...)
	}
	for _, row := range rows {
		l.cols = max(l.cols, len(row))
	}

	l.colWidths = make([]int, l.cols)
	l.rowHeights = make([]int, len(rows))
	l.lines = make([][][]string, len(rows))

	for r, row := range rows {
		l.lines[r] = make([][]string, l.cols)
		l.rowHeights[r] = 1
		for c := range l.cols {
			var text string
			if c < len(row) {
				text = row[c]
			}
			cell := strings.Split(text, "\n")
			l.lines[r][c] = cell
			l.rowHeights[r] = max(l.rowHeights[r], len(cell))
		}
	}

	l.computeColWidths()
	return l
}

func (l *layout) computeColWidths() {
	for c := range l.colWidths {
		l.colWidths[c] = 1
	}
	for _, row := range l.lines {
		for c, cell := range row {
			for _, line := range cell {
				l.colWidths[c] = max(l.colWidths[c], displayWidth(line))
			}
		}
	}
}

func (l *layout) render() string {
	if l.cols == 0 {
		return ""
	}

	var sb strings.Builder
	border := l.borderLine()

	sb.WriteString(border)
	sb.WriteString("\n")
	for r := range l.lines {
		for line := range l.rowHeights[r] {
			sb.WriteString(l.contentLine(r, line))
			sb.WriteString("\n")
		}
		// The header gets its own rule; body rows share the bottom border.
		if (l.header && r == 0) || r == len(l.lines)-1 {
			sb.WriteString(border)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (l *layout) borderLine() string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, w := range l.colWidths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	return sb.String()
}

// contentLine renders display line n of row r.
func (l *layout) contentLine(r, n int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for c, cell := range l.lines[r] {
		var text string
		if n < len(cell) {
			text = cell[n]
		}
		sb.WriteString(" ")
		sb.WriteString(text)
		sb.WriteString(strings.Repeat(" ", max(0, l.colWidths[c]-displayWidth(text))))
		sb.WriteString(" |")
	}
	return sb.String()
}

// displayWidth returns the terminal column width of s. Hangul syllables and
// other East Asian wide characters take two columns.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
