package inspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// SimpleTable provides basic table formatting without external dependencies
type SimpleTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a new table writer
func NewTable(w io.Writer) *SimpleTable {
	return &SimpleTable{
		writer: w,
		rows:   make([][]string, 0),
	}
}

// Header sets the table headers
func (t *SimpleTable) Header(headers []string) {
	t.headers = headers
}

// Row adds a single row
func (t *SimpleTable) Row(row []string) {
	t.rows = append(t.rows, row)
}

// Bulk adds multiple rows
func (t *SimpleTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

// Render outputs the formatted table
func (t *SimpleTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	colWidths := t.calculateWidths()
	separator := t.buildSeparator(colWidths)

	fmt.Fprintln(t.writer, separator)

	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, t.formatRow(t.headers, colWidths))
		fmt.Fprintln(t.writer, separator)
	}

	for _, row := range t.rows {
		fmt.Fprintln(t.writer, t.formatRow(row, colWidths))
	}

	fmt.Fprintln(t.writer, separator)
}

// calculateWidths determines the width needed for each column
func (t *SimpleTable) calculateWidths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	widths := make([]int, numCols)

	for i, h := range t.headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}

	return widths
}

// buildSeparator creates the horizontal line
func (t *SimpleTable) buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

// formatRow formats a single row with proper padding
func (t *SimpleTable) formatRow(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", w-len(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// Render writes the documentation as a sequence of text tables.
func (d *Documentation) Render(w io.Writer) {
	fmt.Fprintf(w, "Database: %s\n", d.Database)
	fmt.Fprintf(w, "Generated: %s\n\n", d.GeneratedAt.Format(time.RFC3339))

	for _, table := range d.Tables {
		fmt.Fprintf(w, "Table %s (%d rows)\n", table.Name, table.RowCount)

		t := NewTable(w)
		t.Header([]string{"#", "Column", "Type", "Null", "Default", "PK"})
		for _, col := range table.Columns {
			nullable := "YES"
			if col.NotNull {
				nullable = "NO"
			}
			pk := ""
			if col.PrimaryKey {
				pk = "PK"
			}
			t.Row([]string{
				strconv.FormatInt(col.Position, 10),
				col.Name,
				col.Type,
				nullable,
				col.Default,
				pk,
			})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if len(d.Views) > 0 {
		fmt.Fprintln(w, "Views")
		t := NewTable(w)
		t.Header([]string{"Name"})
		for _, view := range d.Views {
			t.Row([]string{view})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if len(d.Indexes) > 0 {
		fmt.Fprintln(w, "Indexes")
		t := NewTable(w)
		t.Header([]string{"Name", "Table", "Unique"})
		for _, idx := range d.Indexes {
			unique := ""
			if idx.Unique {
				unique = "UNIQUE"
			}
			t.Row([]string{idx.Name, idx.Table, unique})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if len(d.Hooks) > 0 {
		fmt.Fprintln(w, "Write hooks")
		t := NewTable(w)
		t.Header([]string{"Name", "Table", "Event", "Purpose"})
		for _, hook := range d.Hooks {
			t.Row([]string{hook.Name, hook.Table, hook.Event, hook.Purpose})
		}
		t.Render()
		fmt.Fprintln(w)
	}
}
