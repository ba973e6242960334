package report

import (
	"encoding/csv"
	"io"

	"github.com/jdekker/daybook/ledger"
)

// WriteCSV projects the report tree onto flat CSV records. The header row
// carries the column titles after an empty label cell; section titles become
// records with no quantity cells; hidden nodes and spacers are dropped; blank
// cells are written as empty fields.
func WriteCSV(w io.Writer, r *Report, meta ledger.Metadata) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(r.Columns)+1)
	header = append(header, "")
	header = append(header, r.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	if err := writeNodes(cw, r.Nodes, len(r.Columns), meta); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func writeNodes(cw *csv.Writer, nodes []Node, columns int, meta ledger.Metadata) error {
	for _, node := range nodes {
		var err error
		switch n := node.(type) {
		case *Section:
			if !n.Visible {
				continue
			}
			if n.Title != "" {
				err = cw.Write(pad([]string{n.Title}, columns+1))
			}
			if err == nil {
				err = writeNodes(cw, n.Nodes, columns, meta)
			}
		case *Row:
			if !n.Visible {
				continue
			}
			err = cw.Write(record(n.Text, n.Cells, columns, meta))
		case *Subtotal:
			if !n.Visible {
				continue
			}
			err = cw.Write(record(n.Text, n.Cells, columns, meta))
		case *Computed:
			if !n.Visible {
				continue
			}
			err = cw.Write(record(n.Text, n.Cells, columns, meta))
		case *Spacer:
			// Spacers are presentation only.
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func record(text string, cells []Cell, columns int, meta ledger.Metadata) []string {
	fields := make([]string, 0, columns+1)
	fields = append(fields, text)
	for i := 0; i < columns; i++ {
		if i >= len(cells) || cells[i].Blank {
			fields = append(fields, "")
			continue
		}
		fields = append(fields, ledger.FormatQuantity(cells[i].Quantity, meta.DecimalPlaces))
	}
	return fields
}

func pad(fields []string, width int) []string {
	for len(fields) < width {
		fields = append(fields, "")
	}
	return fields
}
