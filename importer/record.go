package importer

import "strings"

// Row is one data row of a source sheet. Number is the 1-based row number
// in the sheet so messages can point users at the spreadsheet line.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the trimmed cell at the zero-based index, or "" when the
// index is unmapped (-1) or past the end of the row.
func (r Row) Cell(index int) string {
	if index < 0 || index >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[index])
}

func (r Row) IsBlank() bool {
	for _, cell := range r.Cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Table is a source sheet split into its detected header row and the data
// rows below it.
type Table struct {
	Path      string
	Sheet     string
	HeaderRow int
	Headers   []string
	Rows      []Row
}

// Width is the widest row seen, header included.
func (t *Table) Width() int {
	width := len(t.Headers)
	for _, row := range t.Rows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}
	return width
}

// NewTable detects the header as the first row with at least one non-empty
// cell; every following row is data. A sheet without any content yields a
// table with no headers and no rows.
func NewTable(path, sheet string, rows [][]string) *Table {
	table := &Table{Path: path, Sheet: sheet}

	header := -1
	for i, cells := range rows {
		if (Row{Cells: cells}).IsBlank() {
			continue
		}
		header = i
		break
	}
	if header < 0 {
		return table
	}

	table.HeaderRow = header + 1
	table.Headers = trimAll(rows[header])
	table.Rows = make([]Row, 0, len(rows)-header-1)
	for i := header + 1; i < len(rows); i++ {
		table.Rows = append(table.Rows, Row{Number: i + 1, Cells: rows[i]})
	}
	return table
}

func trimAll(values []string) []string {
	trimmed := make([]string, len(values))
	for i, value := range values {
		trimmed[i] = strings.TrimSpace(value)
	}
	return trimmed
}
