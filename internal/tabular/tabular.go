package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Source is anything that exposes a header row and data rows.
type Source interface {
	Header() []string
	Rows() [][]string
}

// Grid is a rectangular value addressed by row and column, such as a
// numeric matrix. Grids have no header of their own.
type Grid interface {
	Dims() (rows, cols int)
	Cell(row, col int) string
}

// Table is a concrete Source.
type Table struct {
	header []string
	rows   [][]string
}

// New builds a Table from a header and rows.
func New(header []string, rows [][]string) Table {
	return Table{header: header, rows: rows}
}

func (t Table) Header() []string { return t.header }
func (t Table) Rows() [][]string { return t.rows }

// FromRecords treats the first record as the header.
func FromRecords(records [][]string) Table {
	if len(records) == 0 {
		return Table{}
	}
	return Table{header: records[0], rows: records[1:]}
}

// FromGrid copies a grid into a Table headed "Column 1", "Column 2", ...
func FromGrid(g Grid) Table {
	nrows, ncols := g.Dims()
	header := make([]string, ncols)
	for c := 0; c < ncols; c++ {
		header[c] = fmt.Sprintf("Column %d", c+1)
	}
	rows := make([][]string, nrows)
	for r := 0; r < nrows; r++ {
		row := make([]string, ncols)
		for c := 0; c < ncols; c++ {
			row[c] = g.Cell(r, c)
		}
		rows[r] = row
	}
	return Table{header: header, rows: rows}
}

// FromFlat reads a row-major list of cells whose first row is the header.
// columns*rows must equal len(cells); rows counts the header row.
func FromFlat(cells []string, columns, rows int) (Table, error) {
	if columns <= 0 || rows <= 0 {
		return Table{}, fmt.Errorf("table dimensions must be positive, got %dx%d", rows, columns)
	}
	if columns*rows != len(cells) {
		return Table{}, fmt.Errorf("table size %dx%d does not match %d cells", rows, columns, len(cells))
	}
	records := make([][]string, rows)
	for r := 0; r < rows; r++ {
		records[r] = cells[r*columns : (r+1)*columns]
	}
	return FromRecords(records), nil
}

// FromCSV reads CSV with the first record as the header.
func FromCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}
	return FromRecords(records), nil
}

// Matrix adapts a float matrix to Grid.
type Matrix [][]float64

func (m Matrix) Dims() (int, int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

func (m Matrix) Cell(row, col int) string {
	if col >= len(m[row]) {
		return ""
	}
	return strconv.FormatFloat(m[row][col], 'g', -1, 64)
}
