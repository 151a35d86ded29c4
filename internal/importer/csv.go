package importer

import (
	"fmt"
	"io"

	"github.com/dgallion1/mdgen/internal/section"
	"github.com/dgallion1/mdgen/internal/tabular"
)

// CSVImporter handles CSV files. The first record is the table header.
type CSVImporter struct {
	// BatchRows, when positive, splits the rows into child sections named
	// after the file rows they hold, each with its own copy of the header.
	BatchRows int
}

func (p *CSVImporter) Import(r io.Reader, filename string, into *section.Node) (Result, error) {
	table, err := tabular.FromCSV(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Title: baseTitle(filename)}
	out := newOutline(into, &res)
	header, rows := table.Header(), table.Rows()
	if header == nil {
		return res, nil
	}

	if p.BatchRows <= 0 || len(rows) <= p.BatchRows {
		out.attach(section.NewTable(header, rows))
		return res, nil
	}

	for i := 0; i < len(rows); i += p.BatchRows {
		end := min(i+p.BatchRows, len(rows))
		// 1-indexed file rows, after the header.
		if err := out.heading(1, fmt.Sprintf("Rows %d-%d", i+2, end+1)); err != nil {
			return Result{}, err
		}
		out.attach(section.NewTable(header, rows[i:end]))
	}
	return res, nil
}
