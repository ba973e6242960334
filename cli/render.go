package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jdekker/daybook/ledger"
	"github.com/jdekker/daybook/report"
)

// tableLine is one rendered report line: a label plus one formatted value
// per report column. Cell strings are styled at print time, so widths are
// measured on the plain text here.
type tableLine struct {
	label    string
	cells    []string
	heading  bool
	bordered bool
	spacer   bool
}

const indent = "  "

// renderTable writes the report as an aligned terminal table. Column widths
// use display widths, not byte lengths.
func renderTable(w io.Writer, r *report.Report, meta ledger.Metadata) {
	lines := flatten(r.Nodes, "", meta)

	labelWidth := runewidth.StringWidth(r.Title)
	cellWidths := make([]int, len(r.Columns))
	for i, column := range r.Columns {
		cellWidths[i] = runewidth.StringWidth(column)
	}
	for _, line := range lines {
		if width := runewidth.StringWidth(line.label); width > labelWidth {
			labelWidth = width
		}
		for i, cell := range line.cells {
			if width := runewidth.StringWidth(cell); width > cellWidths[i] {
				cellWidths[i] = width
			}
		}
	}

	// Title and column headers.
	_, _ = fmt.Fprintf(w, "%s\n", headingStyle.Render(r.Title))
	_, _ = fmt.Fprint(w, strings.Repeat(" ", labelWidth))
	for i, column := range r.Columns {
		_, _ = fmt.Fprintf(w, "%s%s", indent, pad(dimStyle.Render(column), column, cellWidths[i]))
	}
	_, _ = fmt.Fprintln(w)

	for _, line := range lines {
		if line.spacer {
			_, _ = fmt.Fprintln(w)
			continue
		}
		if line.bordered {
			printBorder(w, labelWidth, cellWidths)
		}

		label := line.label
		styledLabel := label
		if line.heading {
			styledLabel = headingStyle.Render(label)
		}
		_, _ = fmt.Fprintf(w, "%s%s", styledLabel, strings.Repeat(" ", labelWidth-runewidth.StringWidth(label)))

		for i, cell := range line.cells {
			styled := cell
			if strings.HasPrefix(cell, "-") {
				styled = errorStyle.Render(cell)
			}
			_, _ = fmt.Fprintf(w, "%s%s", indent, pad(styled, cell, cellWidths[i]))
		}
		_, _ = fmt.Fprintln(w)
	}
}

// flatten walks the visible tree into table lines, indenting nested
// sections.
func flatten(nodes []report.Node, prefix string, meta ledger.Metadata) []tableLine {
	var lines []tableLine
	for _, node := range nodes {
		switch n := node.(type) {
		case *report.Section:
			if !n.Visible {
				continue
			}
			if n.Title != "" {
				lines = append(lines, tableLine{label: prefix + n.Title, heading: true})
			}
			lines = append(lines, flatten(n.Nodes, prefix+indent, meta)...)
		case *report.Row:
			if !n.Visible {
				continue
			}
			lines = append(lines, tableLine{
				label:    prefix + n.Text,
				cells:    formatCells(n.Cells, meta),
				heading:  n.Heading,
				bordered: n.Bordered,
			})
		case *report.Subtotal:
			if !n.Visible {
				continue
			}
			lines = append(lines, tableLine{
				label:    prefix + n.Text,
				cells:    formatCells(n.Cells, meta),
				heading:  n.Heading,
				bordered: n.Bordered,
			})
		case *report.Computed:
			if !n.Visible {
				continue
			}
			lines = append(lines, tableLine{
				label:    prefix + n.Text,
				cells:    formatCells(n.Cells, meta),
				heading:  n.Heading,
				bordered: n.Bordered,
			})
		case *report.Spacer:
			lines = append(lines, tableLine{spacer: true})
		}
	}
	return lines
}

func formatCells(cells []report.Cell, meta ledger.Metadata) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		if cell.Blank {
			continue
		}
		out[i] = ledger.FormatQuantity(cell.Quantity, meta.DecimalPlaces)
	}
	return out
}

// pad right-aligns styled text using the display width of its plain form.
func pad(styled, plain string, width int) string {
	return strings.Repeat(" ", width-runewidth.StringWidth(plain)) + styled
}

func printBorder(w io.Writer, labelWidth int, cellWidths []int) {
	_, _ = fmt.Fprint(w, strings.Repeat(" ", labelWidth))
	for _, width := range cellWidths {
		_, _ = fmt.Fprintf(w, "%s%s", indent, dimStyle.Render(strings.Repeat("─", width)))
	}
	_, _ = fmt.Fprintln(w)
}
